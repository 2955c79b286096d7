package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/conf"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
	"github.com/OpenTransitTools/journeyplanner/business/mcraptor"
)

var build = "develop"

// exit codes of the planner query contract
const (
	exitOK            = 0
	exitFailure       = 1
	exitBadArgs       = 2
	exitMissingInput  = 3
	exitUnknownOrigin = 4
)

func main() {
	log := logger.New(os.Stdout, "PLANNER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

// exitCode maps an error chain onto the CLI exit contract.
func exitCode(err error) int {
	switch {
	case errors.Is(err, mcraptor.ErrUnknownStation):
		return exitUnknownOrigin
	case errors.Is(err, timetable.ErrNotFound):
		return exitMissingInput
	case errors.Is(err, mcraptor.ErrInvalidInput):
		return exitBadArgs
	}
	return exitFailure
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Input     string `conf:"default:data/output,help:timetable directory"`
		Output    string `conf:"default:data/output/optimal,help:journey output directory"`
		Origin    string `conf:"default:207310,help:origin station id"`
		StartTime string `conf:"default:08:00:00,help:start departure time (hh:mm:ss)"`
		EndTime   string `conf:"default:08:30:00,help:end departure time (hh:mm:ss)"`
		Rounds    int    `conf:"default:5,help:round budget for the search"`
		Workers   int    `conf:"default:1,help:parallel workers over departure times"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Compute Pareto-optimal journeys from an origin station over a departure window"
	const prefix = "PLANNER"
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
		return fmt.Errorf("parsing config: %v: %w", err, mcraptor.ErrInvalidInput)
	}

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	startSecs, err := timetable.ParseScheduleTime(cfg.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %v: %w", err, mcraptor.ErrInvalidInput)
	}
	endSecs, err := timetable.ParseScheduleTime(cfg.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %v: %w", err, mcraptor.ErrInvalidInput)
	}

	tt, err := timetable.ReadTimetable(cfg.Input)
	if err != nil {
		return err
	}
	log.Printf("main: loaded timetable: %s", tt.Counts())

	var journeys map[string][]mcraptor.Journey
	if cfg.Workers > 1 {
		journeys, err = mcraptor.RunRangeMcRaptorParallel(context.Background(), log, tt,
			cfg.Origin, startSecs, endSecs, cfg.Rounds, cfg.Workers)
	} else {
		journeys, err = mcraptor.RunRangeMcRaptor(context.Background(), log, tt,
			cfg.Origin, startSecs, endSecs, cfg.Rounds)
	}
	if err != nil {
		return err
	}

	return writeJourneys(log, tt, cfg.Output, cfg.Origin, journeys)
}

// writeJourneys dumps every destination's journeys as one json file named
// <origin>_to_<destination>.json under outputDir.
func writeJourneys(log *logger.Logger, tt *timetable.Timetable, outputDir, origin string,
	journeys map[string][]mcraptor.Journey) error {

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	written := 0
	for destination, list := range journeys {
		serialized := make([]mcraptor.SerializedJourney, 0, len(list))
		for _, j := range list {
			serialized = append(serialized, j.Serialize(tt))
		}
		data, err := json.MarshalIndent(serialized, "", "    ")
		if err != nil {
			return fmt.Errorf("marshaling journeys to %s: %w", destination, err)
		}
		name := fmt.Sprintf("%s_to_%s.json", safeFileName(origin), safeFileName(destination))
		if err = os.WriteFile(filepath.Join(outputDir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		written++
	}
	log.Printf("main: wrote %d destination files to %s", written, outputDir)
	return nil
}

// safeFileName keeps station names from escaping the output directory.
func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, name)
}
