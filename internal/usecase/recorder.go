// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/naka-gawa/github-traffic/internal/domain"
	"github.com/naka-gawa/github-traffic/internal/gateway"
)

// Appender persists a single traffic record.
type Appender interface {
	Append(rec *domain.TrafficRecord) error
}

// Recorder is the use case for logging today's traffic of a repository.
// It fetches both counters one after the other and appends a single row.
type Recorder struct {
	fetcher gateway.Fetcher
	store   Appender
	now     func() time.Time
	logger  *log.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock replaces time.Now as the source of the record date.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a new Recorder instance.
func NewRecorder(fetcher gateway.Fetcher, store Appender, logger *log.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record fetches the views and clones of repo and appends them as today's row.
// Any fetch error aborts the run before the store is touched.
func (r *Recorder) Record(ctx context.Context, repo string) (*domain.TrafficRecord, error) {
	r.logger.Debug("Usecase: Recording traffic", "repo", repo)

	views, err := r.fetcher.FetchViews(ctx, repo)
	if err != nil {
		return nil, err
	}
	clones, err := r.fetcher.FetchClones(ctx, repo)
	if err != nil {
		return nil, err
	}

	rec := domain.NewTrafficRecord(r.now(), views, clones)
	if err := r.store.Append(rec); err != nil {
		return nil, fmt.Errorf("failed to append traffic record: %w", err)
	}

	r.logger.Debug("Usecase: Traffic recorded", "row", rec.Row())
	return rec, nil
}
