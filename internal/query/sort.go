package query

// Direction of a sort key
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// PublishedAtField is the tie-break field appended to every resolved sort
const PublishedAtField = "publishedAt"

// SortKey is one (field, direction) pair of a resolved ordering
type SortKey struct {
	Field     string    `json:"field"`
	Direction Direction `json:"order"`
}

// SortSpec is a fully resolved, deterministic ordering. When Relevance is
// set, the full-text score is evaluated before every key in Keys.
type SortSpec struct {
	Relevance bool
	Keys      []SortKey
}

// ResolveSort turns the caller's parallel field and direction lists into a
// deterministic SortSpec. Missing directions default to descending. If
// publishedAt is not among the requested fields it is appended descending as
// a tie-break, so ordering is always fully reproducible. With no fields at
// all, the ordering is publishedAt descending only.
func ResolveSort(fields []string, orders []string, ranked bool) SortSpec {
	spec := SortSpec{Relevance: ranked}

	if len(fields) == 0 {
		spec.Keys = []SortKey{{Field: PublishedAtField, Direction: Descending}}
		return spec
	}

	hasPublishedAt := false
	for i, field := range fields {
		direction := Descending
		if i < len(orders) && Direction(orders[i]) == Ascending {
			direction = Ascending
		}
		spec.Keys = append(spec.Keys, SortKey{Field: field, Direction: direction})
		if field == PublishedAtField {
			hasPublishedAt = true
		}
	}

	if !hasPublishedAt {
		spec.Keys = append(spec.Keys, SortKey{Field: PublishedAtField, Direction: Descending})
	}

	return spec
}
