package repository

import "fmt"

const (
	// DefaultPage is the page a listing starts at when none is requested.
	DefaultPage = 1
	// DefaultPageSize is the calculator's page size when callers have no preference.
	DefaultPageSize = 40
)

// Page is the caller's request: a 1-based page number and a page size.
// I keep it intentionally small; filters and ordering belong to each accessor.
type Page struct {
	Number int
	Size   int
}

// Validate rejects sizes the calculator cannot divide by.
func (p Page) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("%w: page size must be >= 1, got %d", ErrInvalidArgument, p.Size)
	}
	return nil
}

// PageDescriptor is the computed window for one listing call.
// Start and End describe the half-open row range [Start, End).
type PageDescriptor struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Size        int  `json:"size"`
	PageCount   int  `json:"page_count"`
	Start       int  `json:"start"`
	End         int  `json:"end"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Empty reports whether the range selects no rows.
func (d PageDescriptor) Empty() bool { return d.End <= d.Start }

// Limit is the number of rows the range asks for.
func (d PageDescriptor) Limit() int { return d.End - d.Start }

// Offset is the number of rows skipped before the range.
func (d PageDescriptor) Offset() int { return d.Start }

// PageResult carries a slice of items and the descriptor they were cut with.
// I return the descriptor so clients can render prev/next controls without an extra round trip.
type PageResult[T any] struct {
	Items []T            `json:"items"`
	Page  PageDescriptor `json:"page"`
}

// ComputePage turns a row count and a requested page into a row range.
//
// A page outside [1, PageCount] (or an empty result) collapses the range to [0, 0)
// and reports page 1. HasNext is then computed against page 1, so it may be true
// while the range is empty; listing UIs rely on that, so it stays.
func ComputePage(total, page, size int) (PageDescriptor, error) {
	if err := (Page{Number: page, Size: size}).Validate(); err != nil {
		return PageDescriptor{}, err
	}
	if total < 0 {
		return PageDescriptor{}, fmt.Errorf("%w: total must be >= 0, got %d", ErrInvalidArgument, total)
	}

	d := PageDescriptor{Total: total, Size: size}
	d.PageCount = total / size
	if total%size != 0 {
		d.PageCount++
	}

	if d.PageCount == 0 || page < 1 || page > d.PageCount {
		d.Page = 1
	} else {
		d.Page = page
		d.Start = (page - 1) * size
		d.End = d.Start + size
	}
	d.HasPrevious = d.Page > 1
	d.HasNext = d.Page < d.PageCount
	return d, nil
}

// EmptyResult is a zero-row result with a non-nil Items slice for stable JSON.
func EmptyResult[T any](d PageDescriptor) PageResult[T] {
	return PageResult[T]{Items: []T{}, Page: d}
}
