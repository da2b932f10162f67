package usecase

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-traffic/internal/domain"
)

// ErrNoRecords is returned when there is nothing to summarize.
var ErrNoRecords = errors.New("no traffic records")

// Summarizer computes aggregate statistics over a traffic log.
type Summarizer struct {
	logger *log.Logger
}

// NewSummarizer creates a new Summarizer instance.
func NewSummarizer(logger *log.Logger) *Summarizer {
	return &Summarizer{logger: logger}
}

// Summarize aggregates records, which are expected in log order.
func (s *Summarizer) Summarize(records []*domain.TrafficRecord) (*domain.TrafficSummary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	s.logger.Debug("Usecase: Summarizing traffic log", "rows", len(records))

	columns := map[string]func(*domain.TrafficRecord) int{
		"views":         func(r *domain.TrafficRecord) int { return r.Views },
		"unique_views":  func(r *domain.TrafficRecord) int { return r.UniqueViews },
		"clones":        func(r *domain.TrafficRecord) int { return r.Clones },
		"unique_clones": func(r *domain.TrafficRecord) int { return r.UniqueClones },
	}
	results := make(map[string]domain.ColumnStats, len(columns))
	for name, get := range columns {
		values := make([]int, len(records))
		for i, rec := range records {
			values[i] = get(rec)
		}
		cs, err := columnStats(values)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", name, err)
		}
		results[name] = cs
	}

	first, last := records[0].Date, records[0].Date
	for _, rec := range records[1:] {
		if rec.Date.Before(first) {
			first = rec.Date
		}
		if rec.Date.After(last) {
			last = rec.Date
		}
	}

	return &domain.TrafficSummary{
		Rows:         len(records),
		FirstDate:    first.Format(domain.DateLayout),
		LastDate:     last.Format(domain.DateLayout),
		Views:        results["views"],
		UniqueViews:  results["unique_views"],
		Clones:       results["clones"],
		UniqueClones: results["unique_clones"],
	}, nil
}

func columnStats(values []int) (domain.ColumnStats, error) {
	data := stats.LoadRawData(values)
	sum, err := stats.Sum(data)
	if err != nil {
		return domain.ColumnStats{}, err
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return domain.ColumnStats{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return domain.ColumnStats{}, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return domain.ColumnStats{}, err
	}
	return domain.ColumnStats{
		Total:  int(sum),
		Mean:   mean,
		Median: median,
		Max:    int(maximum),
	}, nil
}
