// File: /jobs/cache_refresh_job.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"inkwell-api/state"
)

// CacheRefreshJob periodically refetches the posts cache from the store.
// This is the full refresh that re-converges the cached like counters with
// server truth after racing toggles.
type CacheRefreshJob struct {
	posts  *state.Posts
	ticker *time.Ticker
	done   chan bool
}

func NewCacheRefreshJob(posts *state.Posts, interval time.Duration) *CacheRefreshJob {
	return &CacheRefreshJob{
		posts:  posts,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the refresh loop, running once immediately.
func (j *CacheRefreshJob) Start() {
	fmt.Println("Posts cache refresh job started")

	go func() {
		j.refresh()

		for {
			select {
			case <-j.ticker.C:
				j.refresh()
			case <-j.done:
				fmt.Println("Posts cache refresh job stopped")
				return
			}
		}
	}()
}

// Stop stops the refresh loop.
func (j *CacheRefreshJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *CacheRefreshJob) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := j.posts.Refresh(ctx); err != nil {
		fmt.Printf("Error during posts cache refresh: %v\n", err)
	}
}
