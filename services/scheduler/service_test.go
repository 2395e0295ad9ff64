package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSyncer struct {
	mu      sync.Mutex
	shows   int
	movies  int
	release chan struct{} // when set, SyncShows blocks until closed
}

func (c *countingSyncer) SyncShows(ctx context.Context) error {
	c.mu.Lock()
	c.shows++
	c.mu.Unlock()
	if c.release != nil {
		<-c.release
	}
	return nil
}

func (c *countingSyncer) SyncMovies(ctx context.Context) error {
	c.mu.Lock()
	c.movies++
	c.mu.Unlock()
	return nil
}

func (c *countingSyncer) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shows, c.movies
}

func TestOverlappingShowPassesAreSkipped(t *testing.T) {
	syncer := &countingSyncer{release: make(chan struct{})}
	s := NewService(syncer, time.Hour, time.Hour)

	go s.RunShowPass(context.Background())

	// Wait for the first pass to be in flight.
	assert.Eventually(t, func() bool {
		shows, _ := syncer.counts()
		return shows == 1
	}, time.Second, 10*time.Millisecond)

	// A second trigger during the first pass is a no-op.
	s.RunShowPass(context.Background())
	shows, _ := syncer.counts()
	assert.Equal(t, 1, shows)

	close(syncer.release)
}

func TestShowAndMoviePassesRunIndependently(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewService(syncer, time.Hour, time.Hour)

	s.RunShowPass(context.Background())
	s.RunMoviePass(context.Background())
	s.RunMoviePass(context.Background())

	shows, movies := syncer.counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 2, movies)
}

func TestStartRunsInitialShowPassAndStops(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewService(syncer, time.Hour, time.Hour)
	s.startupDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)

	assert.Eventually(t, func() bool {
		shows, _ := syncer.counts()
		return shows == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
