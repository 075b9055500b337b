package video

import (
	"context"
	"time"

	"github.com/ytpulse/ytpulse/internal/model"
	"github.com/ytpulse/ytpulse/internal/query"
)

// Repository defines operations for video persistence
type Repository interface {
	// Create inserts a video if no record with its video ID exists yet.
	// Returns true when a new record was persisted, false when the ID was
	// already present.
	Create(ctx context.Context, video *model.Video) (bool, error)

	// GetByVideoID retrieves a video by its external YouTube ID
	GetByVideoID(ctx context.Context, videoID string) (*model.Video, error)

	// Search retrieves videos matching the filter, ordered by the resolved
	// sort, with skip/limit paging
	Search(ctx context.Context, filter query.Filter, sort query.SortSpec, skip, limit int) ([]*model.Video, error)

	// Count returns the number of videos matching the filter
	Count(ctx context.Context, filter query.Filter) (int, error)

	// MaxPublishedAt returns the latest publish timestamp in the store.
	// The second return value is false when the store is empty.
	MaxPublishedAt(ctx context.Context) (time.Time, bool, error)
}
