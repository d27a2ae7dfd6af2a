package helpers

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size    int
		offset, limit uint64
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 0, 0, DefaultPageSize},
		{2, 500, MaxPageSize, MaxPageSize},
		{math.MaxInt64 / 50, 100, (MaxPage - 1) * MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.limit, limit)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(21), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestNullIfEmpty(t *testing.T) {
	blank := "  "
	val := " a@b.c "
	assert.Nil(t, NullIfEmpty(nil))
	assert.Nil(t, NullIfEmpty(&blank))
	require.NotNil(t, NullIfEmpty(&val))
	assert.Equal(t, "a@b.c", *NullIfEmpty(&val))
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, DedupeIDs([]int64{3, 1, 3, 0, 2, -1, 1}))
	assert.Empty(t, DedupeIDs(nil))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-09-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("02/09/2024")
	assert.Error(t, err)

	blank := ""
	opt, err := ParseOptionalDate(&blank)
	require.NoError(t, err)
	assert.Nil(t, opt)
}
