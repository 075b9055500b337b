package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name   string
		number int
		size   int
		want   Page
	}{
		{name: "valid request", number: 3, size: 25, want: Page{Number: 3, Size: 25}},
		{name: "zero values restore defaults", number: 0, size: 0, want: Page{Number: 1, Size: 10}},
		{name: "size capped at maximum", number: 1, size: 250, want: Page{Number: 1, Size: 100}},
		{name: "negative page clamped to first", number: -2, size: 10, want: Page{Number: 1, Size: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.number, tt.size))
		})
	}
}

func TestPage_Skip(t *testing.T) {
	assert.Equal(t, 0, NewPage(1, 10).Skip())
	assert.Equal(t, 40, NewPage(5, 10).Skip())
	assert.Equal(t, 50, NewPage(3, 25).Skip())
}

func TestPage_TotalPages(t *testing.T) {
	page := NewPage(1, 10)
	assert.Equal(t, 0, page.TotalPages(0))
	assert.Equal(t, 1, page.TotalPages(1))
	assert.Equal(t, 1, page.TotalPages(10))
	assert.Equal(t, 2, page.TotalPages(11))
	assert.Equal(t, 3, page.TotalPages(25))
}

func TestTextClause_Terms(t *testing.T) {
	assert.Equal(t, []string{"tea", "how"}, TextClause{Query: " tea  how "}.Terms())
	assert.Empty(t, TextClause{Query: "   "}.Terms())
}

func TestFilter_Ranked(t *testing.T) {
	assert.True(t, Filter{Text: &TextClause{Query: "cricket", Mode: TextModeExact}}.Ranked())
	assert.False(t, Filter{Text: &TextClause{Query: "cricket", Mode: TextModeFlexible}}.Ranked())
	assert.False(t, Filter{}.Ranked())
	assert.True(t, Filter{}.IsEmpty())
}
