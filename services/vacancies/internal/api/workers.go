package api

import (
	"context"
	"sync"

	"vacancyhub/services/vacancies/internal/models"

	"go.uber.org/zap"
)

// fetchRemaining reads pages 1..pages-1 with a fixed pool of workers and
// stores each page's items at its index in results. The first error cancels
// the remaining work and is returned.
func (c *hhClient) fetchRemaining(ctx context.Context, keyword string, pages int, results [][]models.RawVacancy) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := c.config.HHFetchWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if numWorkers > pages-1 {
		numWorkers = pages - 1
	}

	pageChan := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pageChan {
				result, err := c.SearchPage(ctx, keyword, page)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					c.logger.Error("failed to fetch page",
						zap.String("keyword", keyword),
						zap.Int("page", page),
						zap.Error(err))
					continue
				}
				results[page] = result.Items
			}
		}()
	}

feed:
	for page := 1; page < pages; page++ {
		select {
		case <-ctx.Done():
			break feed
		case pageChan <- page:
		}
	}
	close(pageChan)

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
