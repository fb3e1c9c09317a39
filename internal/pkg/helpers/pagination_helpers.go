package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// DefaultPage is zero-based, matching the backend's paging.
	DefaultPage = 0
)

// NormalizePage clamps page and size into their accepted ranges.
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// TotalPages returns ceil(total/size).
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(size)))
}

// HasNextPage reports whether another page follows page. Next is disabled
// once (page+1)*size reaches total.
func HasNextPage(total int64, page, size int) bool {
	if size <= 0 || page < 0 || int64(page) >= total/int64(size) {
		return false
	}
	return int64(page+1)*int64(size) < total
}

// NewPaginationInfo creates a standard PaginationInfo DTO for a zero-based page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePage(page, size)

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  TotalPages(totalItems, size),
		PageSize:    size,
		TotalItems:  totalItems,
		HasNext:     HasNextPage(totalItems, page, size),
		HasPrevious: page > 0,
	}
}

// ParsePaginationParams extracts zero-based page and size from the query.
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		page = DefaultPage
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		size = DefaultPageSize
	}
	return NormalizePage(page, size)
}

// CalculateSliceIndices returns the [start,end) bounds of page within
// totalItems elements.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	page, size = NormalizePage(page, size)
	// page*size would overflow for absurd page numbers.
	if page > totalItems/size {
		return totalItems, totalItems
	}

	start = page * size
	end = start + size
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}
	return start, end
}

// Paginate slices items in memory and returns at most size elements.
func Paginate[T any](items []T, page, size int) dto.PageResult[T] {
	page, size = NormalizePage(page, size)
	start, end := CalculateSliceIndices(page, size, len(items))

	content := make([]T, 0, end-start)
	content = append(content, items[start:end]...)

	return dto.PageResult[T]{
		Content:       content,
		TotalElements: len(items),
		TotalPages:    TotalPages(int64(len(items)), size),
		Page:          page,
		Size:          size,
	}
}
