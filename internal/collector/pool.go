package collector

import (
	"context"
	"sync"

	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/sirupsen/logrus"
)

// PoolOptions controls a scrape cycle.
type PoolOptions struct {
	Workers  int
	Limit    int
	Keywords []string
}

// RunPool scrapes every target with opts.Workers goroutines and sends one
// result per target to results. It returns once all workers are done;
// results is left open for the caller to close. Targets not yet started
// when ctx is cancelled are skipped.
func RunPool(ctx context.Context, c domain.Collector, targets []domain.Target, opts PoolOptions, results chan<- domain.ScrapeResult, logger *logrus.Logger) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	jobQueue := make(chan domain.Target, len(targets))
	for _, t := range targets {
		jobQueue <- t
	}
	close(jobQueue)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for t := range jobQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res := Scrape(ctx, c, t, opts.Limit, opts.Keywords)
				entry := logger.WithFields(logrus.Fields{"worker": id, "sub": t.Subreddit, "task_id": res.TaskID})
				if res.Success {
					entry.WithField("items", len(res.Data.ContentItems)).Info("scrape complete")
				} else {
					entry.WithField("error", res.Error.Message).Warn("scrape failed")
				}

				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
