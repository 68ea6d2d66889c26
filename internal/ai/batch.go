package ai

import (
	"context"
	"fmt"
	"sync"
)

// EmbedBatch embeds all texts concurrently with a bounded worker pool.
// Results are returned in input order. Any text that still fails after
// retries fails the whole batch: a missing or zero vector would silently
// corrupt every distance computed against it downstream.
func EmbedBatch(ctx context.Context, embedder Embedder, cfg *RetryConfig, texts []string, concurrency int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	vectors := make([][]float32, len(texts))
	errChan := make(chan error, len(texts))
	semaphore := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := range texts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			vector, err := EmbedWithRetry(ctx, embedder, cfg, texts[i])
			if err != nil {
				errChan <- fmt.Errorf("failed to embed item %d: %w", i, err)
				return
			}

			mu.Lock()
			vectors[i] = vector
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	return vectors, nil
}
