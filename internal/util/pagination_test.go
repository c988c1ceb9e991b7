package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		page      int
		size      int
		wantFrom  int
		wantLimit int
	}{
		{name: "first page", page: 1, size: 20, wantFrom: 0, wantLimit: 20},
		{name: "third page", page: 3, size: 5, wantFrom: 10, wantLimit: 5},
		{name: "zero page", page: 0, size: 5, wantFrom: 0, wantLimit: 5},
		{name: "zero size", page: 2, size: 0, wantFrom: 10, wantLimit: DefaultPageSize},
		{name: "oversized", page: 1, size: 1000, wantFrom: 0, wantLimit: MaxPageSize},
		{name: "negative size", page: 1, size: -5, wantFrom: 0, wantLimit: DefaultPageSize},
		{name: "last page in window", page: 100, size: 100, wantFrom: 9900, wantLimit: 100},
		{name: "page past window", page: 101, size: 100, wantFrom: 9900, wantLimit: 100},
		{name: "huge page", page: math.MaxInt, size: 7, wantFrom: (MaxResultWindow/7 - 1) * 7, wantLimit: 7},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	page, size := ParsePage("2", "abc")
	assert.Equal(t, 2, page)
	assert.Equal(t, 0, size)
}
