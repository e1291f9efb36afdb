package services

import (
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// Query is the pagination part of every list endpoint. Page is 1-indexed.
type Query struct {
	Page           int    `form:"page" json:"page"`
	PageSize       int    `form:"page_size" json:"page_size"`
	Search         string `form:"search" json:"search"`
	OrderDirection string `form:"order_direction" json:"order_direction"` // asc | desc
}

type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Paged is one page of T plus the pagination block of the envelope.
type Paged[T any] struct {
	Items      []T
	Pagination Pagination
}

func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	q.OrderDirection = strings.ToLower(strings.TrimSpace(q.OrderDirection))
	if q.OrderDirection != "asc" {
		q.OrderDirection = "desc"
	}
	return q
}

// Skip is page_size * (page - 1).
func (q Query) Skip() int {
	q = q.normalize()
	return q.PageSize * (q.Page - 1)
}

// paginate applies skip/take and orders table rows by updated_at (id breaks
// ties) in the requested direction.
func (q Query) paginate(table string) func(*gorm.DB) *gorm.DB {
	q = q.normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order(table + ".updated_at " + q.OrderDirection).
			Order(table + ".id " + q.OrderDirection).
			Offset(q.Skip()).
			Limit(q.PageSize)
	}
}

func (q Query) pagination(total int64) Pagination {
	q = q.normalize()
	return Pagination{Page: q.Page, PageSize: q.PageSize, Total: total}
}

// likePattern escapes LIKE wildcards and wraps s for a case-insensitive
// substring match against LOWER(column).
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
