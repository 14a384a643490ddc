package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/time/rate"
)

// CatalogAPI is the read surface of the counter service the refresh engine
// consumes.
type CatalogAPI interface {
	ListItems(ctx context.Context) ([]services.Item, error)
	GetItem(ctx context.Context, itemID string) (*services.Item, error)
	ListTracks(ctx context.Context) ([]services.Track, error)
	GetTrack(ctx context.Context, trackID string) (*services.Track, error)
}

// CounterCache persists refreshed counters. Implemented by
// [repositories.CounterCacheAdapter]. Cache failures are reported per entity;
// a refresh never aborts because the local cache is unwritable.
type CounterCache interface {
	CacheItem(item services.Item) error
	CacheTrack(track services.Track) error
}

// EntityRefreshResult records the outcome of refreshing a single entity.
type EntityRefreshResult struct {
	ID      string
	Title   string
	IsTrack bool
	Error   error
}

// RefreshResult summarizes a full catalog refresh.
type RefreshResult struct {
	TotalItems    int
	TotalTracks   int
	RefreshedOK   int
	Failed        int
	EntityResults []EntityRefreshResult
}

// RefreshOpts configures a catalog refresh.
type RefreshOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
	SkipCache  bool    // When set, counters update only the in-memory store
}

type refreshJob struct {
	id      string
	isTrack bool
}

// RefreshEngine pulls authoritative counters into local state.
type RefreshEngine struct {
	api   CatalogAPI
	cache CounterCache
	store *engage.Store
}

// NewRefreshEngine creates a RefreshEngine. The cache may be nil when no
// persistence is wanted.
func NewRefreshEngine(api CatalogAPI, cache CounterCache, store *engage.Store) *RefreshEngine {
	return &RefreshEngine{api: api, cache: cache, store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *RefreshEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load performs the cheap variant of a refresh: one listing call per
// collection, loaded straight into the engagement store.
func (e *RefreshEngine) Load(ctx context.Context, progress chan<- ProgressUpdate) (*RefreshResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: counter service client not initialized", shared.ErrServiceUnavailable)
	}

	result := &RefreshResult{}

	e.sendProgress(progress, listItemsUpdate(1, 2))
	items, err := e.api.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list items: %v", shared.ErrAPIRequest, err)
	}
	for _, item := range items {
		e.store.LoadItem(item)
	}
	result.TotalItems = len(items)

	e.sendProgress(progress, listTracksUpdate(2, 2))
	tracks, err := e.api.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list tracks: %v", shared.ErrAPIRequest, err)
	}
	for _, track := range tracks {
		e.store.LoadTrack(track)
	}
	result.TotalTracks = len(tracks)
	result.RefreshedOK = result.TotalItems + result.TotalTracks

	return result, nil
}

// Refresh re-fetches authoritative counters for every known entity with a
// rate-limited worker pool and writes them through to the store and the
// cache. Entities that fail to refresh are reported individually; the
// operation continues past them.
func (e *RefreshEngine) Refresh(ctx context.Context, progress chan<- ProgressUpdate, opts RefreshOpts) (*RefreshResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: counter service client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if _, err := e.Load(ctx, progress); err != nil {
		return nil, err
	}

	items := e.store.Items()
	tracks := e.store.Tracks()
	total := len(items) + len(tracks)

	result := &RefreshResult{
		TotalItems:    len(items),
		TotalTracks:   len(tracks),
		EntityResults: make([]EntityRefreshResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan refreshJob, total)
	results := make(chan EntityRefreshResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.refreshWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case jobs <- refreshJob{id: item.ItemID}:
			}
		}
		for _, track := range tracks {
			select {
			case <-ctx.Done():
				return
			case jobs <- refreshJob{id: track.TrackID, isTrack: true}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.EntityResults = append(result.EntityResults, res)

		if res.Error == nil {
			result.RefreshedOK++
			e.sendProgress(progress, entityRefreshedUpdate(completed, total, res))
		} else {
			result.Failed++
			e.sendProgress(progress, entityFailedUpdate(completed, total, res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// refreshWorker drains the jobs channel, one rate-limited fetch per entity.
func (e *RefreshEngine) refreshWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan refreshJob,
	results chan<- EntityRefreshResult,
	opts RefreshOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- EntityRefreshResult{ID: job.id, IsTrack: job.isTrack, Error: err}
			continue
		}
		results <- e.refreshOne(ctx, job, opts)
	}
}

// refreshOne fetches one entity's authoritative state and writes it through.
func (e *RefreshEngine) refreshOne(ctx context.Context, job refreshJob, opts RefreshOpts) EntityRefreshResult {
	result := EntityRefreshResult{ID: job.id, IsTrack: job.isTrack}

	if job.isTrack {
		track, err := e.api.GetTrack(ctx, job.id)
		if err != nil {
			result.Error = err
			return result
		}
		result.Title = track.Title
		e.store.LoadTrack(*track)
		if e.cache != nil && !opts.SkipCache {
			if err := e.cache.CacheTrack(*track); err != nil {
				result.Error = fmt.Errorf("failed to cache track: %w", err)
			}
		}
		return result
	}

	item, err := e.api.GetItem(ctx, job.id)
	if err != nil {
		result.Error = err
		return result
	}
	result.Title = item.Title
	e.store.LoadItem(*item)
	if e.cache != nil && !opts.SkipCache {
		if err := e.cache.CacheItem(*item); err != nil {
			result.Error = fmt.Errorf("failed to cache item: %w", err)
		}
	}
	return result
}
