// Package scheduler drives the periodic sync passes: shows on a daily
// cadence, movies on a weekly one, each with its own ticker so the two
// never wait on each other.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Syncer is the batch surface of the sync engine.
type Syncer interface {
	SyncShows(ctx context.Context) error
	SyncMovies(ctx context.Context) error
}

type Service struct {
	syncer        Syncer
	showInterval  time.Duration
	movieInterval time.Duration
	startupDelay  time.Duration

	showRunning  atomic.Bool
	movieRunning atomic.Bool
	done         chan struct{}
}

func NewService(syncer Syncer, showInterval, movieInterval time.Duration) *Service {
	return &Service{
		syncer:        syncer,
		showInterval:  showInterval,
		movieInterval: movieInterval,
		startupDelay:  30 * time.Second,
		done:          make(chan struct{}),
	}
}

func (s *Service) Start(ctx context.Context) {
	slog.Info("Starting sync scheduler", "show_interval", s.showInterval, "movie_interval", s.movieInterval)
	defer close(s.done)

	showTicker := time.NewTicker(s.showInterval)
	defer showTicker.Stop()

	movieTicker := time.NewTicker(s.movieInterval)
	defer movieTicker.Stop()

	// One show pass shortly after startup so a restart never waits a full
	// interval to catch up.
	startup := time.NewTimer(s.startupDelay)
	defer startup.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sync scheduler stopping")
			return
		case <-startup.C:
			s.RunShowPass(ctx)
		case <-showTicker.C:
			s.RunShowPass(ctx)
		case <-movieTicker.C:
			s.RunMoviePass(ctx)
		}
	}
}

// Done is closed once Start has returned.
func (s *Service) Done() <-chan struct{} { return s.done }

// RunShowPass runs one show pass unless one is already in flight. Also the
// entry point for the manual trigger endpoint.
func (s *Service) RunShowPass(ctx context.Context) {
	if !s.showRunning.CompareAndSwap(false, true) {
		slog.Warn("Show sync pass already running, skipping")
		return
	}
	defer s.showRunning.Store(false)

	if err := s.syncer.SyncShows(ctx); err != nil {
		slog.Error("Show sync pass failed", "error", err)
	}
}

// RunMoviePass runs one movie pass unless one is already in flight.
func (s *Service) RunMoviePass(ctx context.Context) {
	if !s.movieRunning.CompareAndSwap(false, true) {
		slog.Warn("Movie sync pass already running, skipping")
		return
	}
	defer s.movieRunning.Store(false)

	if err := s.syncer.SyncMovies(ctx); err != nil {
		slog.Error("Movie sync pass failed", "error", err)
	}
}
