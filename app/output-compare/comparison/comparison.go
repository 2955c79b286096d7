// Package comparison diffs two planner output directories on the
// serialized journey contract, reporting per-file and overall agreement.
package comparison

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// journeyKey is the comparable form of one serialized journey: the contract
// fields that must be identical between two planner implementations.
type journeyKey string

// Report is the comparison result for one destination file present in both
// directories.
type Report struct {
	Filename       string
	LeftCount      int
	RightCount     int
	CommonCount    int
	OnlyInLeft     []string
	OnlyInRight    []string
}

// Identical reports whether the two files agree as journey sets.
func (r Report) Identical() bool {
	return len(r.OnlyInLeft) == 0 && len(r.OnlyInRight) == 0
}

// DirectoryComparison is the outcome over two whole directories.
type DirectoryComparison struct {
	Reports      []Report
	MissingLeft  []string
	MissingRight []string
}

// Identical reports whether every shared file agrees and no file is missing
// on either side.
func (d DirectoryComparison) Identical() bool {
	if len(d.MissingLeft) > 0 || len(d.MissingRight) > 0 {
		return false
	}
	for _, r := range d.Reports {
		if !r.Identical() {
			return false
		}
	}
	return true
}

// CompareDirectories loads every json file from both directories and
// compares the journey sets of the files they share.
func CompareDirectories(leftDir, rightDir string) (DirectoryComparison, error) {
	left, err := jsonFiles(leftDir)
	if err != nil {
		return DirectoryComparison{}, err
	}
	right, err := jsonFiles(rightDir)
	if err != nil {
		return DirectoryComparison{}, err
	}

	var result DirectoryComparison
	for name := range right {
		if _, ok := left[name]; !ok {
			result.MissingLeft = append(result.MissingLeft, name)
		}
	}
	var common []string
	for name := range left {
		if _, ok := right[name]; ok {
			common = append(common, name)
		} else {
			result.MissingRight = append(result.MissingRight, name)
		}
	}
	sort.Strings(common)
	sort.Strings(result.MissingLeft)
	sort.Strings(result.MissingRight)

	for _, name := range common {
		report, err := compareFiles(filepath.Join(leftDir, name), filepath.Join(rightDir, name))
		if err != nil {
			return DirectoryComparison{}, err
		}
		report.Filename = name
		result.Reports = append(result.Reports, report)
	}
	return result, nil
}

func jsonFiles(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory %s: %w", dir, err)
	}
	files := map[string]struct{}{}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			files[entry.Name()] = struct{}{}
		}
	}
	return files, nil
}

func compareFiles(leftPath, rightPath string) (Report, error) {
	leftKeys, err := loadJourneyKeys(leftPath)
	if err != nil {
		return Report{}, err
	}
	rightKeys, err := loadJourneyKeys(rightPath)
	if err != nil {
		return Report{}, err
	}

	report := Report{LeftCount: len(leftKeys), RightCount: len(rightKeys)}
	rightSet := map[journeyKey]struct{}{}
	for _, k := range rightKeys {
		rightSet[k] = struct{}{}
	}
	leftSet := map[journeyKey]struct{}{}
	for _, k := range leftKeys {
		leftSet[k] = struct{}{}
	}
	for k := range leftSet {
		if _, ok := rightSet[k]; ok {
			report.CommonCount++
		} else {
			report.OnlyInLeft = append(report.OnlyInLeft, string(k))
		}
	}
	for k := range rightSet {
		if _, ok := leftSet[k]; !ok {
			report.OnlyInRight = append(report.OnlyInRight, string(k))
		}
	}
	sort.Strings(report.OnlyInLeft)
	sort.Strings(report.OnlyInRight)
	return report, nil
}

// loadJourneyKeys parses a destination file into comparable keys. Journeys
// are decoded generically so extra fields an implementation adds do not
// break the comparison.
func loadJourneyKeys(path string) ([]journeyKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var journeys []map[string]interface{}
	if err = json.Unmarshal(data, &journeys); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	keys := make([]journeyKey, 0, len(journeys))
	for _, j := range journeys {
		keys = append(keys, comparableKey(j))
	}
	return keys, nil
}

// comparableKey flattens the contract fields of one journey, legs included,
// into a stable string.
func comparableKey(journey map[string]interface{}) journeyKey {
	key := fmt.Sprintf("%v|%v|%v|%v",
		journey["departure_time"], journey["arrival_time"],
		journey["total_duration"], journey["num_transfers"])
	legs, _ := journey["legs"].([]interface{})
	for _, raw := range legs {
		leg, _ := raw.(map[string]interface{})
		key += fmt.Sprintf(";%v|%v|%v|%v|%v",
			leg["route_id"], leg["from_stop"], leg["to_stop"],
			leg["departure_time"], leg["arrival_time"])
	}
	return journeyKey(key)
}
