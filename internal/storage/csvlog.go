// Package storage persists traffic records in an append-only CSV log.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/naka-gawa/github-traffic/internal/domain"
)

// DefaultPath is the log file used when none is configured.
const DefaultPath = "traffic-log.csv"

// ErrLogNotFound is returned by ReadAll when the log file does not exist.
var ErrLogNotFound = errors.New("traffic log not found")

// CSVLog is a traffic log stored as a CSV file with a fixed header.
// Writes are not locked; concurrent writers may interleave rows.
type CSVLog struct {
	path string
}

// NewCSVLog returns a log backed by the file at path.
// An empty path selects DefaultPath.
func NewCSVLog(path string) *CSVLog {
	if path == "" {
		path = DefaultPath
	}
	return &CSVLog{path: path}
}

// Path returns the file the log is stored in.
func (l *CSVLog) Path() string {
	return l.path
}

// Append writes rec as the next row, preceded by the header if the file
// did not exist before the call.
func (l *CSVLog) Append(rec *domain.TrafficRecord) (err error) {
	writeHeader := false
	if _, statErr := os.Stat(l.path); errors.Is(statErr, os.ErrNotExist) {
		writeHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open traffic log %s: %w", l.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close traffic log %s: %w", l.path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	// Existing logs use CRLF row terminators.
	w.UseCRLF = true
	if writeHeader {
		if err := w.Write(domain.Header); err != nil {
			return fmt.Errorf("failed to write traffic log header: %w", err)
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		return fmt.Errorf("failed to write traffic log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush traffic log %s: %w", l.path, err)
	}
	return nil
}

// ReadAll returns every data row of the log in file order.
func (l *CSVLog) ReadAll() ([]*domain.TrafficRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLogNotFound, l.path)
		}
		return nil, fmt.Errorf("failed to open traffic log %s: %w", l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records := make([]*domain.TrafficRecord, 0)
	for n := 1; ; n++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read traffic log %s: %w", l.path, err)
		}
		if slices.Equal(row, domain.Header) {
			continue
		}
		rec, err := domain.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", l.path, n, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
