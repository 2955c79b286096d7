// Package feedmanager reads a GTFS feed directory, filters it down to one
// service date and an agency allow-list, and assembles the planner's
// timetable.
package feedmanager

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// feedRowReader reads rows from one gtfs csv file and accumulates the
// records the timetable assembly needs.
type feedRowReader interface {

	// addRow reads the current line from feedFileParser and stores the
	// resulting record
	addRow(parser *feedFileParser) error
}

// feedFileParser holds information about a csv file. Methods read typed
// columns from the current row. Errors while extracting data types are
// stored with the line number they happened on.
type feedFileParser struct {
	Filename       string
	line           int
	csvReader      *csv.Reader
	headers        []string
	currentRecords []string
	errors         []error
}

// makeFeedFileParser creates a feedFileParser from an io.Reader.
func makeFeedFileParser(r io.Reader, filename string) (*feedFileParser, error) {
	csvReader := csv.NewReader(r)
	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to load header in %s: %v", filename, err)
	}
	removeBOMIfPresent(headers)
	return &feedFileParser{
		Filename:       filename,
		line:           1,
		csvReader:      csvReader,
		headers:        headers,
		currentRecords: headers,
	}, nil
}

func removeBOMIfPresent(headers []string) {
	if len(headers) < 1 || len(headers[0]) < 1 {
		return
	}
	runes := []rune(headers[0])
	if runes[0] == '\uFEFF' {
		headers[0] = string(runes[1:])
	}
}

// nextLine moves the reader one row forward.
func (p *feedFileParser) nextLine() error {
	var err error
	p.currentRecords, err = p.csvReader.Read()
	p.line += 1
	return err
}

// getString retrieves a string column, empty when missing and optional.
func (p *feedFileParser) getString(name string, optional bool) string {
	index := indexOf(name, p.headers)
	if index < 0 {
		if !optional {
			p.errors = append(p.errors, fmt.Errorf("unable to find header: %s", name))
		}
		return ""
	}
	if len(p.currentRecords) <= index {
		p.errors = append(p.errors, fmt.Errorf("row too short for header %s at %d", name, index))
		return ""
	}
	value := p.currentRecords[index]
	if len(value) == 0 && !optional {
		p.errors = append(p.errors, fmt.Errorf("missing required value in column %s", name))
	}
	return value
}

// getInt retrieves an int column, zero when missing and optional.
func (p *feedFileParser) getInt(name string, optional bool) int {
	value := p.getString(name, optional)
	if len(value) == 0 {
		return 0
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		p.errors = append(p.errors, fmt.Errorf("unable to parse column %s: %v", name, err))
		return 0
	}
	return result
}

// getScheduleTime retrieves a clock column as seconds of the schedule day.
func (p *feedFileParser) getScheduleTime(name string) int {
	value := p.getString(name, false)
	if len(value) == 0 {
		return 0
	}
	secs, err := timetable.ParseScheduleTime(value)
	if err != nil {
		p.errors = append(p.errors, fmt.Errorf("unable to parse column %s: %v", name, err))
		return 0
	}
	return secs
}

// getError retrieves the errors encountered while parsing the csv file.
func (p *feedFileParser) getError() error {
	if len(p.errors) > 0 {
		return fmt.Errorf("in file %v, line %v: %v", p.Filename, p.line, p.errors)
	}
	return nil
}

func indexOf(name string, elements []string) int {
	for i, value := range elements {
		if name == value {
			return i
		}
	}
	return -1
}

// loadFeedRows iterates over all rows of the parser and feeds them into
// rowReader. Reading halts on the first error.
func loadFeedRows(parser *feedFileParser, rowReader feedRowReader) error {
	for {
		err := parser.nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err = rowReader.addRow(parser); err != nil {
			return err
		}
		if err = parser.getError(); err != nil {
			return err
		}
	}
	return parser.getError()
}

// loadFeedFile opens one csv file in the feed directory and reads it with
// rowReader. The optional flag skips files a feed may legitimately omit.
func loadFeedFile(dir, name string, rowReader feedRowReader, optional bool) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && optional {
			return nil
		}
		return fmt.Errorf("opening feed file %s: %w", path, err)
	}
	defer f.Close()
	parser, err := makeFeedFileParser(f, name)
	if err != nil {
		return err
	}
	return loadFeedRows(parser, rowReader)
}
