package video

import (
	"fmt"
	"strings"

	"github.com/ytpulse/ytpulse/internal/query"
)

// sortColumns whitelists sortable fields and maps them to their columns.
// Field validation itself happens before the compiler runs; unknown fields
// reaching this map are dropped rather than interpolated.
var sortColumns = map[string]string{
	"publishedAt":  "published_at",
	"title":        "title",
	"description":  "description",
	"channelTitle": "channel_title",
	"channelId":    "channel_id",
	"viewCount":    "view_count",
	"likeCount":    "like_count",
}

// searchSQL accumulates the pieces of a compiled search statement
type searchSQL struct {
	where      []string
	args       []any
	rankedExpr string
}

// next returns the placeholder for one appended argument
func (s *searchSQL) next(arg any) string {
	s.args = append(s.args, arg)
	return fmt.Sprintf("$%d", len(s.args))
}

// buildSearchSQL translates the typed predicate tree into a WHERE clause and
// argument list. This is the only place filter semantics meet SQL.
func buildSearchSQL(filter query.Filter) *searchSQL {
	s := &searchSQL{}

	if filter.Text != nil {
		switch filter.Text.Mode {
		case query.TextModeExact:
			// Ranked full-text match over the weighted search vector;
			// the same tsquery argument feeds the rank expression.
			placeholder := s.next(filter.Text.Query)
			s.where = append(s.where, fmt.Sprintf("search_vector @@ plainto_tsquery('english', %s)", placeholder))
			s.rankedExpr = fmt.Sprintf("ts_rank(search_vector, plainto_tsquery('english', %s))", placeholder)
		case query.TextModeFlexible:
			// OR across every term/field combination
			var terms []string
			for _, term := range filter.Text.Terms() {
				placeholder := s.next("%" + term + "%")
				terms = append(terms, fmt.Sprintf("title ILIKE %s", placeholder))
				terms = append(terms, fmt.Sprintf("description ILIKE %s", placeholder))
			}
			if len(terms) > 0 {
				s.where = append(s.where, "("+strings.Join(terms, " OR ")+")")
			}
		}
	}

	if filter.Tags != nil && len(filter.Tags.Tags) > 0 {
		if len(filter.Tags.Tags) == 1 {
			s.where = append(s.where, fmt.Sprintf("%s = ANY(tags)", s.next(filter.Tags.Tags[0])))
		} else {
			// Array overlap: any supplied tag in the record's tag set
			s.where = append(s.where, fmt.Sprintf("tags && %s", s.next(filter.Tags.Tags)))
		}
	}

	if filter.Channel != nil {
		s.where = append(s.where, fmt.Sprintf("channel_id = %s", s.next(filter.Channel.ChannelID)))
	}

	if filter.DateRange != nil {
		if filter.DateRange.From != nil {
			s.where = append(s.where, fmt.Sprintf("published_at >= %s", s.next(*filter.DateRange.From)))
		}
		if filter.DateRange.To != nil {
			s.where = append(s.where, fmt.Sprintf("published_at <= %s", s.next(*filter.DateRange.To)))
		}
	}

	return s
}

// whereClause renders the WHERE fragment, or an empty string for no filter
func (s *searchSQL) whereClause() string {
	if len(s.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(s.where, " AND ")
}

// orderByClause renders the ORDER BY fragment from a resolved sort spec.
// The relevance rank, when present, precedes every requested key.
func (s *searchSQL) orderByClause(sort query.SortSpec) string {
	var keys []string
	if sort.Relevance && s.rankedExpr != "" {
		keys = append(keys, s.rankedExpr+" DESC")
	}
	for _, key := range sort.Keys {
		column, ok := sortColumns[key.Field]
		if !ok {
			continue
		}
		direction := "DESC"
		if key.Direction == query.Ascending {
			direction = "ASC"
		}
		keys = append(keys, column+" "+direction)
	}
	if len(keys) == 0 {
		keys = append(keys, "published_at DESC")
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}
