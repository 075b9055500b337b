package query

import (
	"strings"
	"time"
)

// TextMode selects between the two text-matching semantics
type TextMode int

const (
	// TextModeExact matches via the ranked full-text index over title and
	// description; matching records carry a relevance score.
	TextModeExact TextMode = iota
	// TextModeFlexible splits the query into terms and matches a record when
	// ANY term appears as a case-insensitive substring of title or
	// description. OR across all term/field combinations widens recall.
	TextModeFlexible
)

// TextClause is the free-text predicate of a search
type TextClause struct {
	Query string
	Mode  TextMode
}

// Terms returns the whitespace-delimited terms of the query
func (t TextClause) Terms() []string {
	return strings.Fields(strings.TrimSpace(t.Query))
}

// TagClause matches records whose tag set contains any of the given tags
type TagClause struct {
	Tags []string
}

// ChannelClause matches records by exact channel ID equality
type ChannelClause struct {
	ChannelID string
}

// DateRangeClause bounds the publish time inclusively on either side.
// Either bound may be nil independently. start <= end is the caller's
// validation responsibility.
type DateRangeClause struct {
	From *time.Time
	To   *time.Time
}

// Filter is an AND of optional clauses over the video store.
// A nil clause means "no constraint". Translation into the storage
// engine's native query form happens only at the repository boundary.
type Filter struct {
	Text      *TextClause
	Tags      *TagClause
	Channel   *ChannelClause
	DateRange *DateRangeClause
}

// IsEmpty reports whether the filter constrains nothing
func (f Filter) IsEmpty() bool {
	return f.Text == nil && f.Tags == nil && f.Channel == nil && f.DateRange == nil
}

// Ranked reports whether exact-mode text matching applies, which makes the
// relevance score the highest-priority sort key.
func (f Filter) Ranked() bool {
	return f.Text != nil && f.Text.Mode == TextModeExact
}
