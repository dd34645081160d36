// Package pagination slices an ordered result list into fixed-size pages.
//
// Page selection never fails: a page that is not an integer selects page 1,
// an integer outside [1, TotalPages] selects the last page, and an empty
// list always yields page 1 of 0.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// Page is one window of a paginated list.
type Page[T any] struct {
	Items              []T  `json:"items"`
	Number             int  `json:"number"`
	TotalPages         int  `json:"total_pages"`
	TotalCount         int  `json:"total_count"`
	PageSize           int  `json:"page_size"`
	HasPrevious        bool `json:"has_previous"`
	HasNext            bool `json:"has_next"`
	PreviousPageNumber int  `json:"previous_page_number,omitempty"`
	NextPageNumber     int  `json:"next_page_number,omitempty"`
	StartIndex         int  `json:"start_index"`
	EndIndex           int  `json:"end_index"`
}

// Len returns the number of items on the page.
func (p Page[T]) Len() int { return len(p.Items) }

// PageCount returns how many pages of pageSize are needed for total items.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate selects the page named by rawPage, typically an unparsed query
// parameter. An empty rawPage means page 1.
func Paginate[T any](items []T, pageSize int, rawPage string) Page[T] {
	totalPages := PageCount(len(items), pageSize)

	raw := strings.TrimSpace(rawPage)
	if raw == "" {
		return PaginateNumber(items, pageSize, 1)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// Well-formed but unrepresentable: out of range on either side.
			return PaginateNumber(items, pageSize, totalPages+1)
		}
		return PaginateNumber(items, pageSize, 1)
	}
	return PaginateNumber(items, pageSize, n)
}

// PaginateNumber selects page number, clamping out-of-range numbers to the
// last page.
func PaginateNumber[T any](items []T, pageSize int, number int) Page[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	total := len(items)
	totalPages := PageCount(total, pageSize)

	switch {
	case totalPages == 0:
		number = 1
	case number < 1 || number > totalPages:
		number = totalPages
	}

	p := Page[T]{
		Items:      []T{},
		Number:     number,
		TotalPages: totalPages,
		TotalCount: total,
		PageSize:   pageSize,
	}
	if total == 0 {
		return p
	}

	start := (number - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	p.Items = append(p.Items, items[start:end]...)
	p.StartIndex = start + 1
	p.EndIndex = end
	p.HasPrevious = number > 1
	p.HasNext = number < totalPages
	if p.HasPrevious {
		p.PreviousPageNumber = number - 1
	}
	if p.HasNext {
		p.NextPageNumber = number + 1
	}
	return p
}
