package timetable

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

const timetableFilename = "timetable.dat"

// WriteTimetable persists tt under dir, creating the directory if needed.
// ReadTimetable on the same directory returns a field-for-field equal
// timetable.
func WriteTimetable(dir string, tt *Timetable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating timetable directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, timetableFilename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating timetable file %s: %w", path, err)
	}
	if err = gob.NewEncoder(f).Encode(tt); err != nil {
		f.Close()
		return fmt.Errorf("encoding timetable to %s: %w", path, err)
	}
	return f.Close()
}

// ReadTimetable loads the timetable persisted under dir and rebuilds its
// lookup indexes. A missing file wraps ErrNotFound.
func ReadTimetable(dir string) (*Timetable, error) {
	path := filepath.Join(dir, timetableFilename)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no timetable at %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("opening timetable file %s: %w", path, err)
	}
	defer f.Close()
	var tt Timetable
	if err = gob.NewDecoder(f).Decode(&tt); err != nil {
		return nil, fmt.Errorf("decoding timetable from %s: %w", path, err)
	}
	tt.buildIndexes()
	return &tt, nil
}
