package youtube

import (
	"fmt"
	"time"
)

// QuotaError indicates the API rejected the request with HTTP 403, meaning
// the current key's quota is spent or its credentials were refused
type QuotaError struct {
	StatusCode int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded or authentication failed (status %d)", e.StatusCode)
}

// Thumbnail is one thumbnail variant in a search response
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Thumbnails holds the named thumbnail variants of a search item
type Thumbnails struct {
	Default  *Thumbnail `json:"default,omitempty"`
	Medium   *Thumbnail `json:"medium,omitempty"`
	High     *Thumbnail `json:"high,omitempty"`
	Standard *Thumbnail `json:"standard,omitempty"`
	Maxres   *Thumbnail `json:"maxres,omitempty"`
}

// Snippet is the metadata block of one search item
type Snippet struct {
	PublishedAt  time.Time  `json:"publishedAt"`
	ChannelID    string     `json:"channelId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Thumbnails   Thumbnails `json:"thumbnails"`
	ChannelTitle string     `json:"channelTitle"`
	Tags         []string   `json:"tags,omitempty"`
}

// SearchItem is one video entry in a search-list response
type SearchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet Snippet `json:"snippet"`
}

// searchListResponse is the wire shape of the search endpoint's response
type searchListResponse struct {
	Kind          string `json:"kind"`
	Etag          string `json:"etag"`
	NextPageToken string `json:"nextPageToken,omitempty"`
	RegionCode    string `json:"regionCode,omitempty"`
	PageInfo      struct {
		TotalResults   int `json:"totalResults"`
		ResultsPerPage int `json:"resultsPerPage"`
	} `json:"pageInfo"`
	Items []*SearchItem `json:"items"`
}
