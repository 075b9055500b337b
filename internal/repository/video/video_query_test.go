package video

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytpulse/ytpulse/internal/query"
)

func videoRows() *pgxmock.Rows {
	video := testVideo()
	return pgxmock.NewRows([]string{
		"video_id", "title", "description", "published_at", "channel_id",
		"channel_title", "tags", "thumbnails", "view_count", "like_count",
		"created_at", "updated_at",
	}).AddRow(
		video.VideoID, video.Title, video.Description, video.PublishedAt,
		video.ChannelID, video.ChannelTitle, video.Tags, video.Thumbnails,
		video.ViewCount, video.LikeCount, video.CreatedAt, video.UpdatedAt,
	)
}

func TestVideoRepository_Search(t *testing.T) {
	tests := []struct {
		name     string
		filter   query.Filter
		sort     query.SortSpec
		sqlMatch string
		args     []any
	}{
		{
			name:     "unfiltered listing",
			filter:   query.Filter{},
			sort:     query.SortSpec{Keys: []query.SortKey{{Field: "publishedAt", Direction: query.Descending}}},
			sqlMatch: "SELECT (.+) FROM videos ORDER BY published_at DESC LIMIT \\$1 OFFSET \\$2",
			args:     []any{10, 0},
		},
		{
			name:     "flexible text search",
			filter:   query.Filter{Text: &query.TextClause{Query: "tea", Mode: query.TextModeFlexible}},
			sort:     query.SortSpec{Keys: []query.SortKey{{Field: "publishedAt", Direction: query.Descending}}},
			sqlMatch: "SELECT (.+) FROM videos WHERE \\(title ILIKE \\$1 OR description ILIKE \\$1\\) ORDER BY published_at DESC LIMIT \\$2 OFFSET \\$3",
			args:     []any{"%tea%", 10, 0},
		},
		{
			name:   "ranked text search orders by relevance first",
			filter: query.Filter{Text: &query.TextClause{Query: "cricket", Mode: query.TextModeExact}},
			sort: query.SortSpec{
				Relevance: true,
				Keys:      []query.SortKey{{Field: "publishedAt", Direction: query.Descending}},
			},
			sqlMatch: "SELECT (.+) FROM videos WHERE search_vector @@ plainto_tsquery\\('english', \\$1\\) ORDER BY ts_rank(.+) DESC, published_at DESC LIMIT \\$2 OFFSET \\$3",
			args:     []any{"cricket", 10, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(tt.sqlMatch).
				WithArgs(tt.args...).
				WillReturnRows(videoRows())

			repo := NewRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			videos, err := repo.Search(ctx, tt.filter, tt.sort, 0, 10)

			require.NoError(t, err)
			assert.Len(t, videos, 1)
			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestVideoRepository_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM videos WHERE channel_id = \\$1").
		WithArgs("UC123456789").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	repo := NewRepository(mock)
	count, err := repo.Count(context.Background(), query.Filter{
		Channel: &query.ChannelClause{ChannelID: "UC123456789"},
	})

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
