package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ytpulse/ytpulse/internal/apikey"
	apperrors "github.com/ytpulse/ytpulse/internal/errors"
	"github.com/ytpulse/ytpulse/internal/model"
	"github.com/ytpulse/ytpulse/internal/query"
	"github.com/ytpulse/ytpulse/internal/service/youtube"
)

// mockSource is a testify mock for the YouTube client
type mockSource struct {
	mock.Mock
}

func (m *mockSource) Search(ctx context.Context, apiKey, searchQuery string, publishedAfter time.Time) ([]*youtube.SearchItem, error) {
	args := m.Called(ctx, apiKey, searchQuery, publishedAfter)
	if items := args.Get(0); items != nil {
		return items.([]*youtube.SearchItem), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockRepo is a testify mock for the video repository
type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, video *model.Video) (bool, error) {
	args := m.Called(ctx, video)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) GetByVideoID(ctx context.Context, videoID string) (*model.Video, error) {
	args := m.Called(ctx, videoID)
	if video := args.Get(0); video != nil {
		return video.(*model.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Search(ctx context.Context, filter query.Filter, sort query.SortSpec, skip, limit int) ([]*model.Video, error) {
	args := m.Called(ctx, filter, sort, skip, limit)
	return args.Get(0).([]*model.Video), args.Error(1)
}

func (m *mockRepo) Count(ctx context.Context, filter query.Filter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) MaxPublishedAt(ctx context.Context) (time.Time, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func notFound() error {
	return apperrors.New(apperrors.CodeNotFound, "video not found")
}

func searchItem(videoID string, publishedAt time.Time) *youtube.SearchItem {
	item := &youtube.SearchItem{}
	item.ID.VideoID = videoID
	item.Snippet = youtube.Snippet{
		PublishedAt:  publishedAt,
		ChannelID:    "UC123",
		Title:        "Video " + videoID,
		Description:  "Description for " + videoID,
		ChannelTitle: "Test Channel",
	}
	return item
}

func newTestPipeline(t *testing.T, source youtube.Client, repo *mockRepo, poolKeys []string) Pipeline {
	t.Helper()
	keys, err := apikey.NewManager(poolKeys, 50)
	require.NoError(t, err)
	return NewPipeline(source, keys, repo, Options{
		SearchQuery: "cricket",
		Lookback:    10 * time.Second,
	})
}

func TestPipeline_Tick_SavesNewVideos(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	items := []*youtube.SearchItem{
		searchItem("vid-1", base.Add(time.Minute)),
		searchItem("vid-2", base.Add(2*time.Minute)),
	}

	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(base, true, nil)
	// Watermark is one second past the stored maximum
	source.On("Search", mock.Anything, "key-a", "cricket", base.Add(time.Second)).Return(items, nil)
	repo.On("GetByVideoID", mock.Anything, "vid-1").Return(nil, notFound())
	repo.On("GetByVideoID", mock.Anything, "vid-2").Return(nil, notFound())
	repo.On("Create", mock.Anything, mock.Anything).Return(true, nil)

	pipeline := newTestPipeline(t, source, repo, []string{"key-a"})
	saved, err := pipeline.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, StateIdle, pipeline.State())
	source.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestPipeline_Tick_EmptyStoreUsesLookbackWatermark(t *testing.T) {
	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(time.Time{}, false, nil)
	source.On("Search", mock.Anything, "key-a", "cricket", mock.MatchedBy(func(after time.Time) bool {
		// now − lookback, allowing scheduling slack
		return time.Since(after) >= 10*time.Second && time.Since(after) < 15*time.Second
	})).Return([]*youtube.SearchItem{}, nil)

	pipeline := newTestPipeline(t, source, repo, []string{"key-a"})
	saved, err := pipeline.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, saved)
	source.AssertExpectations(t)
}

func TestPipeline_Tick_AlreadyStoredVideoIsSkipped(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	existing := &model.Video{VideoID: "vid-1"}

	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(base, true, nil)
	source.On("Search", mock.Anything, "key-a", "cricket", mock.Anything).
		Return([]*youtube.SearchItem{searchItem("vid-1", base.Add(time.Minute))}, nil)
	repo.On("GetByVideoID", mock.Anything, "vid-1").Return(existing, nil)

	pipeline := newTestPipeline(t, source, repo, []string{"key-a"})
	saved, err := pipeline.Tick(context.Background())

	// Re-ingesting a stored ID is a no-op, neither success nor failure
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPipeline_Tick_PartialSaveFailuresAreIsolated(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	items := make([]*youtube.SearchItem, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, searchItem(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute)))
	}

	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(base, true, nil)
	source.On("Search", mock.Anything, "key-a", "cricket", mock.Anything).Return(items, nil)
	repo.On("GetByVideoID", mock.Anything, mock.Anything).Return(nil, notFound())

	// Two items fail to persist; the other ten are unaffected
	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *model.Video) bool {
		return v.VideoID == "b" || v.VideoID == "e"
	})).Return(false, apperrors.New(apperrors.CodeInternal, "write failed"))
	repo.On("Create", mock.Anything, mock.Anything).Return(true, nil)

	pipeline := newTestPipeline(t, source, repo, []string{"key-a"})
	saved, err := pipeline.Tick(context.Background())

	require.NoError(t, err, "item failures never abort the tick")
	assert.Equal(t, 10, saved)
}

func TestPipeline_Tick_QuotaFailureRotatesAndRetries(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(base, true, nil)
	source.On("Search", mock.Anything, "key-a", "cricket", mock.Anything).
		Return(nil, &youtube.QuotaError{StatusCode: 403}).Once()
	source.On("Search", mock.Anything, "key-b", "cricket", mock.Anything).
		Return([]*youtube.SearchItem{searchItem("vid-1", base.Add(time.Minute))}, nil).Once()
	repo.On("GetByVideoID", mock.Anything, "vid-1").Return(nil, notFound())
	repo.On("Create", mock.Anything, mock.Anything).Return(true, nil)

	pipeline := newTestPipeline(t, source, repo, []string{"key-a", "key-b"})
	saved, err := pipeline.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	source.AssertExpectations(t)
}

func TestPipeline_Tick_QuotaRetryBoundedByPoolSize(t *testing.T) {
	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(time.Time{}, false, nil)
	source.On("Search", mock.Anything, mock.Anything, "cricket", mock.Anything).
		Return(nil, &youtube.QuotaError{StatusCode: 403})

	pipeline := newTestPipeline(t, source, repo, []string{"key-a", "key-b", "key-c"})
	_, err := pipeline.Tick(context.Background())

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeQuotaExhausted, appErr.Code)

	// At most one full pass over the pool per tick
	source.AssertNumberOfCalls(t, "Search", 3)
}

func TestPipeline_Tick_NonQuotaFetchFailureAbortsWithoutRetry(t *testing.T) {
	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(time.Time{}, false, nil)
	source.On("Search", mock.Anything, mock.Anything, "cricket", mock.Anything).
		Return(nil, apperrors.New(apperrors.CodeExternal, "bad request"))

	pipeline := newTestPipeline(t, source, repo, []string{"key-a", "key-b"})
	_, err := pipeline.Tick(context.Background())

	require.Error(t, err)
	source.AssertNumberOfCalls(t, "Search", 1)
}

func TestPipeline_Tick_EmptyDescriptionGetsPlaceholder(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	item := searchItem("vid-1", base.Add(time.Minute))
	item.Snippet.Description = ""

	source := new(mockSource)
	repo := new(mockRepo)

	repo.On("MaxPublishedAt", mock.Anything).Return(base, true, nil)
	source.On("Search", mock.Anything, "key-a", "cricket", mock.Anything).
		Return([]*youtube.SearchItem{item}, nil)
	repo.On("GetByVideoID", mock.Anything, "vid-1").Return(nil, notFound())
	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *model.Video) bool {
		return v.Description == model.DefaultDescription
	})).Return(true, nil)

	pipeline := newTestPipeline(t, source, repo, []string{"key-a"})
	saved, err := pipeline.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	repo.AssertExpectations(t)
}
