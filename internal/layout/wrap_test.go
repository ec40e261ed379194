package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxCells int
		want     []string
	}{
		{"blank", "   ", 10, nil},
		{"fits", "walk to the park", 20, []string{"walk to the park"}},
		{"breaks at spaces", "walk to the park", 8, []string{"walk to", "the park"}},
		{"collapses whitespace", "a \n\t b", 10, []string{"a b"}},
		{"splits long words", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long word after short", "go abcdefgh", 4, []string{"go", "abcd", "efgh"}},
		{"wide runes count double", "東京タワー", 4, []string{"東京", "タワ", "ー"}},
		{"zero width still progresses", "ab", 0, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.text, tt.maxCells))
		})
	}
}

func TestCells(t *testing.T) {
	assert.Equal(t, 5, cells("hello"))
	assert.Equal(t, 4, cells("公園"))
	assert.Equal(t, 4, cells("café"))
}
