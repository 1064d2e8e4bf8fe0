package crawler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/bot"
	"github.com/replydesk/replydesk/internal/metrics"
)

// Crawler fans a URL batch out over a bounded pool, extracting each page into
// the knowledge store. Individual fetch or parse failures only increment the
// failed counter; a batch always completes.
type Crawler struct {
	fetcher     bot.Fetcher
	store       bot.KnowledgeStore
	logger      *zap.Logger
	concurrency int
}

// New constructs a Crawler. Concurrency caps simultaneous fetches.
func New(fetcher bot.Fetcher, store bot.KnowledgeStore, logger *zap.Logger, concurrency int) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Crawler{
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run fetches every URL and persists each successful extraction. Completion
// order is not guaranteed.
func (c *Crawler) Run(ctx context.Context, urls []string) bot.CrawlCounters {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		counters bot.CrawlCounters
	)
	sem := make(chan struct{}, c.concurrency)

	for _, u := range urls {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ok := c.crawlOne(ctx, pageURL)
			metrics.ObserveCrawlPage(ok)
			mu.Lock()
			if ok {
				counters.Fetched++
			} else {
				counters.Failed++
			}
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return counters
}

func (c *Crawler) crawlOne(ctx context.Context, pageURL string) bool {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.logger.Debug("fetch skipped", zap.String("url", pageURL), zap.Error(err))
		return false
	}
	page := Extract(pageURL, body)
	if err := c.store.Insert(ctx, page); err != nil {
		c.logger.Error("knowledge insert failed", zap.String("url", pageURL), zap.Error(err))
		return false
	}
	c.logger.Debug("page stored",
		zap.String("url", pageURL),
		zap.Int("content_len", len(page.Content)),
		zap.Int("images", len(page.Images)),
	)
	return true
}
