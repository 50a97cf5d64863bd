package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       Page
	}{
		{"defaults", 0, 0, Page{Page: 1, Size: DefaultPageSize}},
		{"negative", -3, -1, Page{Page: 1, Size: DefaultPageSize}},
		{"size capped", 2, 500, Page{Page: 2, Size: MaxPageSize}},
		{"page capped", math.MaxInt, MaxPageSize, Page{Page: MaxPage, Size: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.page, tt.size))
		})
	}
}

func TestPage_OffsetStaysPositive(t *testing.T) {
	p := NewPage(math.MaxInt, math.MaxInt)
	assert.Equal(t, uint64((MaxPage-1)*MaxPageSize), p.Offset())
	assert.Equal(t, uint64(MaxPageSize), p.Limit())

	assert.Equal(t, uint64(20), NewPage(2, 20).Offset())
}
