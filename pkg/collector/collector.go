// Package collector orchestrates one collection run: fan out to the source
// clients for every configured keyword, normalize, aggregate and persist.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/msaleem/trendwatch/pkg/domain"
	"github.com/msaleem/trendwatch/pkg/normalize"
	"github.com/msaleem/trendwatch/pkg/source"
)

// TrendsSource fetches relative search interest for a keyword set at once
type TrendsSource interface {
	InterestOverTime(ctx context.Context, keywords []string) ([]source.TrendPoint, error)
}

// RedditSource searches reddit posts for one keyword
type RedditSource interface {
	Search(ctx context.Context, keyword string) ([]source.RedditPost, error)
}

// YouTubeSource searches videos for one keyword
type YouTubeSource interface {
	Search(ctx context.Context, keyword string) ([]source.Video, error)
}

// TwitterSource searches recent tweets for one keyword
type TwitterSource interface {
	Search(ctx context.Context, keyword string) ([]source.Tweet, error)
}

// UpworkSource searches job postings for one keyword
type UpworkSource interface {
	Search(ctx context.Context, keyword string) ([]source.Job, error)
}

// KeywordProvider supplies the configured keyword list
type KeywordProvider interface {
	All() []string
}

// Aggregator ranks a normalized corpus
type Aggregator interface {
	Aggregate(ctx context.Context, configured []string, items []domain.NormalizedItem) []domain.TrendingKeyword
}

// SnapshotStore persists the outcome of a run
type SnapshotStore interface {
	SaveRun(ctx context.Context, snap *domain.Snapshot, items []domain.NormalizedItem) error
}

// Sources bundles the per-platform clients. A nil client disables the source
// for every run.
type Sources struct {
	Trends  TrendsSource
	Reddit  RedditSource
	YouTube YouTubeSource
	Twitter TwitterSource
	Upwork  UpworkSource
}

// Config holds collector tunables
type Config struct {
	SourceTimeout time.Duration // budget for each source, independent of the others
}

// Collector runs collections. Concurrent Run calls share a single in-flight
// collection instead of hammering the sources twice.
type Collector struct {
	keywords   KeywordProvider
	sources    Sources
	aggregator Aggregator
	store      SnapshotStore
	timeout    time.Duration

	inflight singleflight.Group

	subMu sync.Mutex
	subs  map[int]chan domain.ProgressEvent
	subID int
}

// New creates a collector
func New(keywords KeywordProvider, sources Sources, aggregator Aggregator, store SnapshotStore, cfg Config) *Collector {
	if cfg.SourceTimeout == 0 {
		cfg.SourceTimeout = 30 * time.Second
	}
	return &Collector{
		keywords:   keywords,
		sources:    sources,
		aggregator: aggregator,
		store:      store,
		timeout:    cfg.SourceTimeout,
		subs:       map[int]chan domain.ProgressEvent{},
	}
}

// Run performs one full collection and returns the resulting snapshot.
// Overlapping calls are coalesced, every caller gets the same snapshot.
// A failing source degrades the run instead of aborting it, only a persist
// failure is returned as an error.
func (c *Collector) Run(ctx context.Context) (*domain.Snapshot, error) {
	res, err, _ := c.inflight.Do("collect", func() (any, error) {
		return c.collect(ctx)
	})
	if res == nil {
		return nil, err
	}
	return res.(*domain.Snapshot), err
}

// Subscribe registers a progress listener. The returned cancel func must be
// called when done, it closes the channel. Slow listeners miss events rather
// than stall the run.
func (c *Collector) Subscribe() (<-chan domain.ProgressEvent, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subID++
	id := c.subID
	ch := make(chan domain.ProgressEvent, 32)
	c.subs[id] = ch
	return ch, func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if existing, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(existing)
		}
	}
}

func (c *Collector) publish(evt domain.ProgressEvent) {
	evt.Time = time.Now()
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- evt:
		default: // listener is behind, drop
		}
	}
}

func (c *Collector) collect(ctx context.Context) (*domain.Snapshot, error) {
	runID := uuid.New().String()
	keywords := c.keywords.All()
	started := time.Now()

	lgr.Printf("[INFO] collection %s started for %d keywords", runID, len(keywords))
	c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageStarted})

	items := c.fetchAll(ctx, runID, keywords)

	c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageAggregating, ItemCount: len(items)})
	records := c.aggregator.Aggregate(ctx, keywords, items)

	counts := map[domain.Source]int{}
	for _, item := range items {
		counts[item.Source]++
	}
	snap := &domain.Snapshot{
		RunID:       runID,
		GeneratedAt: time.Now(),
		Keywords:    keywords,
		Records:     records,
		ItemCounts:  counts,
	}

	if err := c.store.SaveRun(ctx, snap, items); err != nil {
		c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageFailed, Error: err.Error()})
		return snap, fmt.Errorf("save run %s: %w", runID, err)
	}
	c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageSaved})

	lgr.Printf("[INFO] collection %s done, %d items, %d trending keywords in %v",
		runID, len(items), len(records), time.Since(started).Round(time.Millisecond))
	c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageDone, ItemCount: len(items)})
	return snap, nil
}

// fetchAll queries every enabled source concurrently, each under its own
// timeout. Source failures are logged and reported as progress events, the
// run continues with whatever arrived.
func (c *Collector) fetchAll(ctx context.Context, runID string, keywords []string) []domain.NormalizedItem {
	var mu sync.Mutex
	var items []domain.NormalizedItem
	var wg sync.WaitGroup

	add := func(src domain.Source, batch []domain.NormalizedItem, err error) {
		if err != nil {
			lgr.Printf("[WARN] collection %s: source %s failed: %v", runID, src, err)
			c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageFetched, Source: src, Error: err.Error()})
			return
		}
		mu.Lock()
		items = append(items, batch...)
		mu.Unlock()
		c.publish(domain.ProgressEvent{RunID: runID, Stage: domain.StageFetched, Source: src, ItemCount: len(batch)})
	}

	if c.sources.Trends != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			points, err := c.sources.Trends.InterestOverTime(fctx, keywords)
			add(domain.SourceGoogleTrends, normalize.TrendPoints(points), err)
		}()
	}
	if c.sources.Reddit != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := perKeyword(ctx, c.timeout, keywords, c.sources.Reddit.Search)
			add(domain.SourceReddit, normalize.RedditPosts(batch), err)
		}()
	}
	if c.sources.YouTube != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := perKeyword(ctx, c.timeout, keywords, c.sources.YouTube.Search)
			add(domain.SourceYouTube, normalize.Videos(batch), err)
		}()
	}
	if c.sources.Twitter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := perKeyword(ctx, c.timeout, keywords, c.sources.Twitter.Search)
			add(domain.SourceTwitter, normalize.Tweets(batch), err)
		}()
	}
	if c.sources.Upwork != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := perKeyword(ctx, c.timeout, keywords, c.sources.Upwork.Search)
			add(domain.SourceUpwork, normalize.Jobs(batch), err)
		}()
	}

	wg.Wait()
	return items
}

// perKeyword runs a single-keyword search for each keyword under one shared
// timeout. Results are combined; an error is returned only when every
// keyword failed, partial results win otherwise.
func perKeyword[T any](ctx context.Context, timeout time.Duration, keywords []string, search func(context.Context, string) ([]T, error)) ([]T, error) {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var combined []T
	var lastErr error
	failures := 0
	for _, kw := range keywords {
		batch, err := search(fctx, kw)
		if err != nil {
			lastErr = fmt.Errorf("keyword %q: %w", kw, err)
			failures++
			continue
		}
		combined = append(combined, batch...)
	}
	if failures > 0 && failures == len(keywords) {
		return nil, lastErr
	}
	return combined, nil
}
