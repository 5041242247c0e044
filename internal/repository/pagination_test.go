package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/forum-service/internal/repository"
)

func TestComputePage_KnownWindows(t *testing.T) {
	cases := []struct {
		name        string
		total, page int
		size        int
		want        repository.PageDescriptor
	}{
		{
			name: "empty_result", total: 0, page: 1, size: 40,
			want: repository.PageDescriptor{Total: 0, Page: 1, Size: 40},
		},
		{
			name: "first_page", total: 100, page: 1, size: 40,
			want: repository.PageDescriptor{Total: 100, Page: 1, Size: 40, PageCount: 3, Start: 0, End: 40, HasNext: true},
		},
		{
			name: "middle_page", total: 100, page: 2, size: 40,
			want: repository.PageDescriptor{Total: 100, Page: 2, Size: 40, PageCount: 3, Start: 40, End: 80, HasPrevious: true, HasNext: true},
		},
		{
			name: "last_page_runs_past_total", total: 100, page: 3, size: 40,
			want: repository.PageDescriptor{Total: 100, Page: 3, Size: 40, PageCount: 3, Start: 80, End: 120, HasPrevious: true},
		},
		{
			name: "beyond_range_resets_to_first", total: 100, page: 99, size: 40,
			want: repository.PageDescriptor{Total: 100, Page: 1, Size: 40, PageCount: 3, HasNext: true},
		},
		{
			name: "zero_page_resets_to_first", total: 10, page: 0, size: 5,
			want: repository.PageDescriptor{Total: 10, Page: 1, Size: 5, PageCount: 2, HasNext: true},
		},
		{
			name: "negative_page_resets_to_first", total: 10, page: -3, size: 5,
			want: repository.PageDescriptor{Total: 10, Page: 1, Size: 5, PageCount: 2, HasNext: true},
		},
		{
			name: "single_partial_page", total: 3, page: 1, size: 16,
			want: repository.PageDescriptor{Total: 3, Page: 1, Size: 16, PageCount: 1, Start: 0, End: 16},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repository.ComputePage(tc.total, tc.page, tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputePage_PageCountIsCeil(t *testing.T) {
	for total := 0; total <= 200; total++ {
		for size := 1; size <= 45; size++ {
			d, err := repository.ComputePage(total, 1, size)
			require.NoError(t, err)
			want := (total + size - 1) / size
			if d.PageCount != want {
				t.Fatalf("total=%d size=%d: page_count=%d want %d", total, size, d.PageCount, want)
			}
			if d.End-d.Start != 0 && d.End-d.Start != size {
				t.Fatalf("total=%d size=%d: range width %d", total, size, d.End-d.Start)
			}
		}
	}
}

func TestComputePage_RangeIsEmptyOrFullWidth(t *testing.T) {
	for page := -2; page <= 8; page++ {
		d, err := repository.ComputePage(25, page, 4)
		require.NoError(t, err)
		if page >= 1 && page <= 7 {
			assert.Equal(t, (page-1)*4, d.Offset(), "page %d", page)
			assert.Equal(t, 4, d.Limit(), "page %d", page)
			assert.False(t, d.Empty(), "page %d", page)
		} else {
			assert.True(t, d.Empty(), "page %d", page)
			assert.Equal(t, 1, d.Page, "page %d", page)
		}
	}
}

func TestComputePage_RejectsBadInput(t *testing.T) {
	_, err := repository.ComputePage(10, 1, 0)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)

	_, err = repository.ComputePage(10, 1, -5)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)

	_, err = repository.ComputePage(-1, 1, 10)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
}

func TestEmptyResult_HasNonNilItems(t *testing.T) {
	d, err := repository.ComputePage(0, repository.DefaultPage, repository.DefaultPageSize)
	require.NoError(t, err)
	res := repository.EmptyResult[int](d)
	require.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 40, res.Page.Size)
}
