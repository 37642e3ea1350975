package models

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageQuery is the 1-based paging and search input shared by list endpoints.
type PageQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"max=255"`
}

// ApplyDefaults fills in page and limit once validation has accepted the raw values.
func (q *PageQuery) ApplyDefaults() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	q.Search = strings.TrimSpace(q.Search)
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PageMeta is the pagination block returned alongside list data.
type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPageMeta(q PageQuery, total int64) PageMeta {
	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))
	return PageMeta{
		CurrentPage:     q.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    q.Limit,
		HasNextPage:     q.Page < totalPages,
		HasPreviousPage: q.Page > 1,
	}
}
