package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/ytpulse/ytpulse/internal/errors"
	"github.com/ytpulse/ytpulse/internal/model"
	"github.com/ytpulse/ytpulse/internal/query"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const videoColumns = "video_id, title, description, published_at, channel_id, channel_title, tags, thumbnails, view_count, like_count, created_at, updated_at"

// videoRepository implements Repository using PostgreSQL
type videoRepository struct {
	pool Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool Pool) Repository {
	return &videoRepository{
		pool: pool,
	}
}

// Create inserts a video record, doing nothing when the video ID already
// exists. Idempotence by external ID is enforced here so concurrent saves
// of the same video cannot produce duplicates.
func (r *videoRepository) Create(ctx context.Context, video *model.Video) (bool, error) {
	sql := `INSERT INTO videos (video_id, title, description, published_at, channel_id, channel_title, tags, thumbnails, view_count, like_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (video_id) DO NOTHING`

	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}

	tag, err := r.pool.Exec(ctx, sql,
		video.VideoID, video.Title, video.Description, video.PublishedAt,
		video.ChannelID, video.ChannelTitle, tags, video.Thumbnails,
		video.ViewCount, video.LikeCount)
	if err != nil {
		return false, handlePostgreSQLError(err, "failed to create video")
	}

	return tag.RowsAffected() > 0, nil
}

// GetByVideoID retrieves a video by its external YouTube ID
func (r *videoRepository) GetByVideoID(ctx context.Context, videoID string) (*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE video_id = $1"
	row := r.pool.QueryRow(ctx, sql, videoID)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "video not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get video")
	}

	return video, nil
}

// Search retrieves videos matching the filter with the resolved ordering
func (r *videoRepository) Search(ctx context.Context, filter query.Filter, sort query.SortSpec, skip, limit int) ([]*model.Video, error) {
	compiled := buildSearchSQL(filter)

	sql := "SELECT " + videoColumns + " FROM videos" +
		compiled.whereClause() +
		compiled.orderByClause(sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(compiled.args)+1, len(compiled.args)+2)
	args := append(compiled.args, limit, skip)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to search videos")
	}
	defer rows.Close()

	videos := []*model.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan video row")
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate video rows")
	}

	return videos, nil
}

// Count returns the number of videos matching the filter
func (r *videoRepository) Count(ctx context.Context, filter query.Filter) (int, error) {
	compiled := buildSearchSQL(filter)
	sql := "SELECT COUNT(*) FROM videos" + compiled.whereClause()

	var count int
	if err := r.pool.QueryRow(ctx, sql, compiled.args...).Scan(&count); err != nil {
		return 0, handlePostgreSQLError(err, "failed to count videos")
	}

	return count, nil
}

// MaxPublishedAt returns the store-wide latest publish timestamp
func (r *videoRepository) MaxPublishedAt(ctx context.Context) (time.Time, bool, error) {
	sql := "SELECT MAX(published_at) FROM videos"

	var max *time.Time
	if err := r.pool.QueryRow(ctx, sql).Scan(&max); err != nil {
		return time.Time{}, false, handlePostgreSQLError(err, "failed to get latest publish timestamp")
	}
	if max == nil {
		return time.Time{}, false, nil
	}

	return *max, true, nil
}

// scanVideo scans one row into a Video
func scanVideo(row pgx.Row) (*model.Video, error) {
	var video model.Video
	err := row.Scan(
		&video.VideoID, &video.Title, &video.Description, &video.PublishedAt,
		&video.ChannelID, &video.ChannelTitle, &video.Tags, &video.Thumbnails,
		&video.ViewCount, &video.LikeCount, &video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &video, nil
}
