package ingest

import (
	"context"
	goerrors "errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ytpulse/ytpulse/internal/apikey"
	"github.com/ytpulse/ytpulse/internal/errors"
	"github.com/ytpulse/ytpulse/internal/logger"
	"github.com/ytpulse/ytpulse/internal/model"
	"github.com/ytpulse/ytpulse/internal/repository/video"
	"github.com/ytpulse/ytpulse/internal/service/youtube"
)

var log = logger.New("ingest")

// saveGroupSize bounds write concurrency: one group's items are persisted
// concurrently, groups run strictly sequentially
const saveGroupSize = 10

// State of a pipeline tick, for diagnostics
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateSaving
	StateQuotaRetry
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSaving:
		return "saving"
	case StateQuotaRetry:
		return "quota-retry"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Pipeline
type Options struct {
	// SearchQuery is the fixed query term sent to the metadata source
	SearchQuery string
	// Lookback is the watermark window used when the store is empty
	Lookback time.Duration
}

// Pipeline runs one fetch-and-save cycle per Tick
type Pipeline interface {
	// Tick computes the watermark, fetches new videos and persists them.
	// Returns the count of newly persisted records. Individual save
	// failures are logged and counted but never abort the tick.
	Tick(ctx context.Context) (int, error)

	// State returns the current tick state snapshot
	State() State
}

// pipeline implements Pipeline
type pipeline struct {
	source youtube.Client
	keys   *apikey.Manager
	repo   video.Repository
	opts   Options
	state  atomic.Int32
	now    func() time.Time
}

// NewPipeline creates a Pipeline with explicitly owned collaborators
func NewPipeline(source youtube.Client, keys *apikey.Manager, repo video.Repository, opts Options) Pipeline {
	return &pipeline{
		source: source,
		keys:   keys,
		repo:   repo,
		opts:   opts,
		now:    time.Now,
	}
}

func (p *pipeline) State() State {
	return State(p.state.Load())
}

func (p *pipeline) setState(s State) {
	p.state.Store(int32(s))
}

// Tick runs one fetch-and-save cycle
func (p *pipeline) Tick(ctx context.Context) (int, error) {
	log.Infof("starting video fetch for query %q", p.opts.SearchQuery)
	p.setState(StateFetching)
	defer p.setState(StateIdle)

	publishedAfter, err := p.watermark(ctx)
	if err != nil {
		p.setState(StateFailed)
		return 0, err
	}

	items, err := p.fetchWithRotation(ctx, publishedAfter)
	if err != nil {
		p.setState(StateFailed)
		return 0, err
	}

	if len(items) == 0 {
		log.Info("no new videos found")
		return 0, nil
	}
	log.Infof("found %d new video(s)", len(items))

	// Oldest first, so a partially failed save still leaves the watermark
	// pointing at persisted data
	sort.Slice(items, func(i, j int) bool {
		return items[i].Snippet.PublishedAt.Before(items[j].Snippet.PublishedAt)
	})

	p.setState(StateSaving)
	saved := p.saveAll(ctx, items)
	log.Infof("successfully saved %d new video(s)", saved)

	return saved, nil
}

// watermark computes the lower publish-time bound for the fetch: one second
// past the latest stored publish timestamp, or now minus the lookback window
// when the store is empty.
func (p *pipeline) watermark(ctx context.Context) (time.Time, error) {
	latest, found, err := p.repo.MaxPublishedAt(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if !found {
		return p.now().Add(-p.opts.Lookback), nil
	}

	after := latest.Add(time.Second)
	log.Infof("using latest video timestamp: %s", after.UTC().Format(time.RFC3339))
	return after, nil
}

// fetchWithRotation fetches one page from the source, rotating to the next
// key and retrying on quota failure. Bounded by the pool size: at most one
// full pass over the pool per tick. Non-quota failures abort immediately.
func (p *pipeline) fetchWithRotation(ctx context.Context, publishedAfter time.Time) ([]*youtube.SearchItem, error) {
	poolSize := p.keys.Stats().TotalKeys

	for attempt := 0; attempt < poolSize; attempt++ {
		items, err := p.source.Search(ctx, p.keys.Current(), p.opts.SearchQuery, publishedAfter)
		if err == nil {
			p.keys.RecordUsage()
			return items, nil
		}

		var quotaErr *youtube.QuotaError
		if !goerrors.As(err, &quotaErr) {
			log.Errorf("error fetching videos from YouTube: %v", err)
			return nil, err
		}

		log.Warn("YouTube API quota exceeded, rotating to next key")
		p.setState(StateQuotaRetry)
		if err := p.keys.MarkExhausted(); err != nil {
			log.Error("all API keys exhausted, cannot fetch videos at this time")
			return nil, err
		}
		if p.keys.AvailableCount() == 0 {
			break
		}
		log.Info("retrying with new API key")
		p.setState(StateFetching)
	}

	return nil, errors.New(errors.CodeQuotaExhausted, "no available YouTube API keys, all keys have reached their quota limits")
}

// saveAll persists fetched items in sequential groups. Within a group every
// item is saved concurrently with an independent outcome; one item's failure
// never aborts its group or the tick.
func (p *pipeline) saveAll(ctx context.Context, items []*youtube.SearchItem) int {
	saved := 0

	for start := 0; start < len(items); start += saveGroupSize {
		end := start + saveGroupSize
		if end > len(items) {
			end = len(items)
		}
		group := items[start:end]

		inserted := make([]bool, len(group))
		failures := make([]error, len(group))

		var wg sync.WaitGroup
		for i, item := range group {
			wg.Add(1)
			go func(i int, item *youtube.SearchItem) {
				defer wg.Done()
				inserted[i], failures[i] = p.saveOne(ctx, item)
			}(i, item)
		}
		wg.Wait()

		for i := range group {
			if failures[i] != nil {
				log.Errorf("failed to save video %s: %v", group[i].ID.VideoID, failures[i])
				continue
			}
			if inserted[i] {
				saved++
			}
		}
	}

	return saved
}

// saveOne persists a single fetched item unless a record with its video ID
// already exists. An already-stored ID is a no-op, counted neither as a
// success nor a failure.
func (p *pipeline) saveOne(ctx context.Context, item *youtube.SearchItem) (bool, error) {
	_, err := p.repo.GetByVideoID(ctx, item.ID.VideoID)
	if err == nil {
		return false, nil
	}

	var appErr *errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.CodeNotFound {
		return false, err
	}

	record := toVideo(item)
	inserted, err := p.repo.Create(ctx, record)
	if err != nil {
		return false, err
	}
	if inserted {
		log.Debugf("saved video: %s", record.Title)
	}
	return inserted, nil
}

// toVideo converts a search item into a store record
func toVideo(item *youtube.SearchItem) *model.Video {
	description := item.Snippet.Description
	if description == "" {
		description = model.DefaultDescription
	}

	return &model.Video{
		VideoID:      item.ID.VideoID,
		Title:        item.Snippet.Title,
		Description:  description,
		PublishedAt:  item.Snippet.PublishedAt,
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		Tags:         item.Snippet.Tags,
		Thumbnails: model.ThumbnailSet{
			Default:  toThumbnail(item.Snippet.Thumbnails.Default),
			Medium:   toThumbnail(item.Snippet.Thumbnails.Medium),
			High:     toThumbnail(item.Snippet.Thumbnails.High),
			Standard: toThumbnail(item.Snippet.Thumbnails.Standard),
			Maxres:   toThumbnail(item.Snippet.Thumbnails.Maxres),
		},
	}
}

func toThumbnail(t *youtube.Thumbnail) *model.Thumbnail {
	if t == nil {
		return nil
	}
	return &model.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height}
}
