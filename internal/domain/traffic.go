// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the layout of the Date column in the traffic log.
const DateLayout = "2006-01-02"

// Header is the fixed first row of a traffic log.
var Header = []string{"Date", "Views", "Unique Views", "Clones", "Unique Clones"}

// TrafficCount holds the totals reported by one traffic endpoint.
// Fields missing from the API response stay zero.
type TrafficCount struct {
	Count   int
	Uniques int
}

// TrafficRecord is one day's traffic counters for a repository.
// It is the core domain entity of this application.
type TrafficRecord struct {
	Date         time.Time `json:"date"`
	Views        int       `json:"views"`
	UniqueViews  int       `json:"unique_views"`
	Clones       int       `json:"clones"`
	UniqueClones int       `json:"unique_clones"`
}

// NewTrafficRecord builds a record for date from the views and clones totals.
func NewTrafficRecord(date time.Time, views, clones TrafficCount) *TrafficRecord {
	return &TrafficRecord{
		Date:         date,
		Views:        views.Count,
		UniqueViews:  views.Uniques,
		Clones:       clones.Count,
		UniqueClones: clones.Uniques,
	}
}

// Row returns the record as CSV fields in Header order.
func (r *TrafficRecord) Row() []string {
	return []string{
		r.Date.Format(DateLayout),
		strconv.Itoa(r.Views),
		strconv.Itoa(r.UniqueViews),
		strconv.Itoa(r.Clones),
		strconv.Itoa(r.UniqueClones),
	}
}

// ParseRow is the inverse of Row.
func ParseRow(row []string) (*TrafficRecord, error) {
	if len(row) != len(Header) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(Header), len(row))
	}
	date, err := time.ParseInLocation(DateLayout, row[0], time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", row[0], err)
	}
	counters := make([]int, 4)
	for i, field := range row[1:] {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", Header[i+1], field, err)
		}
		counters[i] = n
	}
	return &TrafficRecord{
		Date:         date,
		Views:        counters[0],
		UniqueViews:  counters[1],
		Clones:       counters[2],
		UniqueClones: counters[3],
	}, nil
}

// ColumnStats describes one counter column across the whole log.
type ColumnStats struct {
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
}

// TrafficSummary aggregates every record of a traffic log.
type TrafficSummary struct {
	Rows         int         `json:"rows"`
	FirstDate    string      `json:"first_date"`
	LastDate     string      `json:"last_date"`
	Views        ColumnStats `json:"views"`
	UniqueViews  ColumnStats `json:"unique_views"`
	Clones       ColumnStats `json:"clones"`
	UniqueClones ColumnStats `json:"unique_clones"`
}
