package main

import (
	"fmt"
	logger "log"
	"os"
	"strings"

	"github.com/ardanlabs/conf"

	"github.com/OpenTransitTools/journeyplanner/app/timetable-loader/feedmanager"
	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
	"github.com/OpenTransitTools/journeyplanner/business/data/timetabledb"
	"github.com/OpenTransitTools/journeyplanner/foundation/database"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "TIMETABLE_LOADER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Input        string `conf:"default:data/gtfs,help:gtfs feed directory"`
		Output       string `conf:"default:data/output,help:timetable output directory"`
		Date         string `conf:"default:20250403,help:service date (yyyymmdd)"`
		Agencies     string `conf:"help:comma separated agency name allow-list"`
		TransferCost int    `conf:"default:180,help:intra-station transfer layover in seconds"`
		IcdFares     bool   `conf:"default:false,help:apply the intercity-direct fare supplement"`
		DBSave       bool   `conf:"default:false,help:also record the timetable to the database"`
		DB           struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Parse a gtfs feed directory into the planner timetable"
	const prefix = "TIMETABLE_LOADER"
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

	var agencies []string
	if len(cfg.Agencies) > 0 {
		agencies = strings.Split(cfg.Agencies, ",")
	}

	tt, err := feedmanager.LoadFeed(log, cfg.Input, cfg.Date, feedmanager.Options{
		TransferCost: cfg.TransferCost,
		Agencies:     agencies,
		ICDFares:     cfg.IcdFares,
	})
	if err != nil {
		return err
	}

	if err = timetable.WriteTimetable(cfg.Output, tt); err != nil {
		return err
	}
	log.Printf("main: wrote timetable to %s", cfg.Output)

	if cfg.DBSave {
		log.Println("main: Initializing database support")
		db, err := database.Open(database.Config{
			User:       cfg.DB.User,
			Password:   cfg.DB.Password,
			Host:       cfg.DB.Host,
			Name:       cfg.DB.Name,
			DisableTLS: cfg.DB.DisableTLS,
		})
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer func() {
			log.Printf("main: Database Stopping : %s", cfg.DB.Host)
			if err := db.Close(); err != nil {
				log.Printf("main: error closing database: %v", err)
			}
		}()

		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("starting timetable transaction: %w", err)
		}
		if err = timetabledb.Record(tx, tt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording timetable: %w", err)
		}
		if err = tx.Commit(); err != nil {
			return fmt.Errorf("committing timetable: %w", err)
		}
		log.Println("main: recorded timetable to database")
	}
	return nil
}
