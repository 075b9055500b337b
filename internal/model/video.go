package model

import "time"

// DefaultDescription replaces an empty description at save time
const DefaultDescription = "No description available"

// Thumbnail represents one thumbnail variant returned by the YouTube API
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ThumbnailSet holds the named thumbnail variants of a video.
// Any variant may be absent depending on the source video.
type ThumbnailSet struct {
	Default  *Thumbnail `json:"default,omitempty"`
	Medium   *Thumbnail `json:"medium,omitempty"`
	High     *Thumbnail `json:"high,omitempty"`
	Standard *Thumbnail `json:"standard,omitempty"`
	Maxres   *Thumbnail `json:"maxres,omitempty"`
}

// Video represents a stored YouTube video record.
// VideoID is the external identifier and is unique across the store;
// records are never mutated by the fetch pipeline once created.
type Video struct {
	VideoID      string       `json:"video_id" db:"video_id"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description" db:"description"`
	PublishedAt  time.Time    `json:"published_at" db:"published_at"`
	ChannelID    string       `json:"channel_id" db:"channel_id"`
	ChannelTitle string       `json:"channel_title" db:"channel_title"`
	Tags         []string     `json:"tags" db:"tags"`
	Thumbnails   ThumbnailSet `json:"thumbnails" db:"thumbnails"`
	ViewCount    *int64       `json:"view_count,omitempty" db:"view_count"`
	LikeCount    *int64       `json:"like_count,omitempty" db:"like_count"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
