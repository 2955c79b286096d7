package main

import (
	"fmt"
	logger "log"
	"os"

	"github.com/ardanlabs/conf"

	"github.com/OpenTransitTools/journeyplanner/app/output-compare/comparison"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "OUTPUT_COMPARE : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	identical, err := run(log)
	if err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(2)
	}
	if !identical {
		os.Exit(1)
	}
}

func run(log *logger.Logger) (bool, error) {
	var cfg struct {
		conf.Version
		LeftDir  string `conf:"default:data/output/optimal,help:first output directory"`
		RightDir string `conf:"default:data/output/unknown_optimal,help:second output directory"`
		Verbose  bool   `conf:"default:false,help:report identical files as well"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Compare two planner output directories journey by journey"
	const prefix = "OUTPUT_COMPARE"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return false, fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return true, nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return false, fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return true, nil
		}
		return false, fmt.Errorf("parsing config: %w", err)
	}

	result, err := comparison.CompareDirectories(cfg.LeftDir, cfg.RightDir)
	if err != nil {
		return false, err
	}

	for _, name := range result.MissingLeft {
		log.Printf("only in %s: %s", cfg.RightDir, name)
	}
	for _, name := range result.MissingRight {
		log.Printf("only in %s: %s", cfg.LeftDir, name)
	}

	differing := 0
	for _, report := range result.Reports {
		if report.Identical() {
			if cfg.Verbose {
				log.Printf("%s: identical (%d journeys)", report.Filename, report.LeftCount)
			}
			continue
		}
		differing++
		log.Printf("%s: left %d journeys, right %d, common %d, only-left %d, only-right %d",
			report.Filename, report.LeftCount, report.RightCount, report.CommonCount,
			len(report.OnlyInLeft), len(report.OnlyInRight))
		for _, k := range report.OnlyInLeft {
			log.Printf("  only in left: %s", k)
		}
		for _, k := range report.OnlyInRight {
			log.Printf("  only in right: %s", k)
		}
	}

	log.Printf("compared %d files, %d identical, %d differing",
		len(result.Reports), len(result.Reports)-differing, differing)
	return result.Identical(), nil
}
