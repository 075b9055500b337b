package search

import (
	"context"
	"time"

	"github.com/ytpulse/ytpulse/internal/logger"
	"github.com/ytpulse/ytpulse/internal/model"
	"github.com/ytpulse/ytpulse/internal/query"
	"github.com/ytpulse/ytpulse/internal/repository/video"
)

var log = logger.New("search")

// Params is a caller's search request. Values are assumed already validated
// (types, ranges, date ordering) by the transport layer before they get here.
type Params struct {
	Search     string
	Partial    bool
	Tags       []string
	ChannelID  string
	StartDate  *time.Time
	EndDate    *time.Time
	SortFields []string
	SortOrders []string
	Page       int
	PageSize   int
}

// DateRange echoes the applied publish-time bounds
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// AppliedFilters echoes the filter clauses that were actually applied
type AppliedFilters struct {
	Search    string     `json:"search,omitempty"`
	Partial   bool       `json:"partial"`
	Tags      []string   `json:"tags,omitempty"`
	ChannelID string     `json:"channelId,omitempty"`
	DateRange *DateRange `json:"dateRange,omitempty"`
}

// PageResult is one deterministic result page plus its metadata
type PageResult struct {
	Items          []*model.Video  `json:"items"`
	TotalCount     int             `json:"totalCount"`
	Page           int             `json:"page"`
	PageSize       int             `json:"pageSize"`
	TotalPages     int             `json:"totalPages"`
	HasNext        bool            `json:"hasNext"`
	HasPrev        bool            `json:"hasPrev"`
	AppliedFilters AppliedFilters  `json:"appliedFilters"`
	AppliedSort    []query.SortKey `json:"appliedSort"`
}

// Service compiles search requests and executes them against the store.
// All operations are read-only and safe to run concurrently with ingestion.
type Service interface {
	Search(ctx context.Context, params Params) (*PageResult, error)
}

// service implements Service
type service struct {
	repo video.Repository
}

// NewService creates a Service backed by the given repository
func NewService(repo video.Repository) Service {
	return &service{repo: repo}
}

// Search builds the typed filter and sort, executes count + find, and
// assembles the result page
func (s *service) Search(ctx context.Context, params Params) (*PageResult, error) {
	filter := buildFilter(params)
	sortSpec := query.ResolveSort(params.SortFields, params.SortOrders, filter.Ranked())
	page := query.NewPage(params.Page, params.PageSize)

	log.Debugf("searching videos: page=%d, size=%d", page.Number, page.Size)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.Search(ctx, filter, sortSpec, page.Skip(), page.Size)
	if err != nil {
		return nil, err
	}

	totalPages := page.TotalPages(total)
	result := &PageResult{
		Items:          items,
		TotalCount:     total,
		Page:           page.Number,
		PageSize:       page.Size,
		TotalPages:     totalPages,
		HasNext:        page.Number < totalPages,
		HasPrev:        page.Number > 1,
		AppliedFilters: appliedFilters(params),
		AppliedSort:    appliedSort(sortSpec),
	}

	log.Debugf("search returned %d of %d result(s)", len(items), total)
	return result, nil
}

// buildFilter turns the caller's parameters into the typed predicate tree
func buildFilter(params Params) query.Filter {
	var filter query.Filter

	if params.Search != "" {
		mode := query.TextModeExact
		if params.Partial {
			mode = query.TextModeFlexible
		}
		filter.Text = &query.TextClause{Query: params.Search, Mode: mode}
	}

	if len(params.Tags) > 0 {
		filter.Tags = &query.TagClause{Tags: params.Tags}
	}

	if params.ChannelID != "" {
		filter.Channel = &query.ChannelClause{ChannelID: params.ChannelID}
	}

	if params.StartDate != nil || params.EndDate != nil {
		filter.DateRange = &query.DateRangeClause{From: params.StartDate, To: params.EndDate}
	}

	return filter
}

// appliedFilters echoes the request's effective filter clauses
func appliedFilters(params Params) AppliedFilters {
	applied := AppliedFilters{
		Search:    params.Search,
		Partial:   params.Partial,
		Tags:      params.Tags,
		ChannelID: params.ChannelID,
	}
	if params.StartDate != nil || params.EndDate != nil {
		applied.DateRange = &DateRange{Start: params.StartDate, End: params.EndDate}
	}
	return applied
}

// appliedSort echoes the fully resolved ordering, relevance first when
// exact-mode text matching applies
func appliedSort(spec query.SortSpec) []query.SortKey {
	keys := make([]query.SortKey, 0, len(spec.Keys)+1)
	if spec.Relevance {
		keys = append(keys, query.SortKey{Field: "relevance", Direction: query.Descending})
	}
	return append(keys, spec.Keys...)
}
