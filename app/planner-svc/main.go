package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/nats-io/nats.go"

	"github.com/OpenTransitTools/journeyplanner/app/planner-svc/plannersvc"
	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "PLANNER_SVC : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %+v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Input          string `conf:"default:data/output,help:timetable directory"`
		HTTPPort       int    `conf:"default:8085"`
		DefaultRounds  int    `conf:"default:5,help:round budget when a request does not set one"`
		PublishResults bool   `conf:"default:false,help:publish completed queries over NATS"`
		NATS           struct {
			URL            string `conf:"default:localhost"`
			JourneySubject string `conf:"default:journey-results"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serves Pareto-optimal journey range queries over http"
	const prefix = "PLANNER_SVC"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	tt, err := timetable.ReadTimetable(cfg.Input)
	if err != nil {
		return err
	}
	log.Printf("main: loaded timetable: %s", tt.Counts())

	var publisher *plannersvc.JourneyPublisher
	if cfg.PublishResults {
		log.Printf("main: Connecting to NATS\n")
		natsConnection, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("unable to establish connection to nats server: %w", err)
		}
		defer func() {
			log.Printf("main: closing connection to NATS")
			natsConnection.Close()
		}()
		publisher = plannersvc.MakeNatsJourneyPublisher(log, natsConnection, cfg.NATS.JourneySubject)
	}

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	shutdownWebService := make(chan bool)
	wg := sync.WaitGroup{}
	go plannersvc.RunWebService(log, &wg, tt, cfg.DefaultRounds, publisher, cfg.HTTPPort, shutdownWebService)

	sig := <-shutdown
	log.Printf("main: shutting down on signal %v", sig)
	close(shutdownWebService)
	wg.Wait()
	return nil
}
