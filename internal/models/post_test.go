package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffTopicIDs(t *testing.T) {
	cases := []struct {
		name       string
		current    []uint
		requested  []uint
		wantAdd    []uint
		wantRemove []uint
	}{
		{name: "swap one", current: []uint{1, 2, 3}, requested: []uint{2, 3, 4}, wantAdd: []uint{4}, wantRemove: []uint{1}},
		{name: "unchanged", current: []uint{1, 2}, requested: []uint{2, 1}},
		{name: "clear", current: []uint{1, 2}, requested: []uint{}, wantRemove: []uint{1, 2}},
		{name: "from empty", current: nil, requested: []uint{5, 5, 6}, wantAdd: []uint{5, 6}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			add, remove := DiffTopicIDs(tc.current, tc.requested)
			assert.ElementsMatch(t, tc.wantAdd, add)
			assert.ElementsMatch(t, tc.wantRemove, remove)
		})
	}
}

func TestPageMeta(t *testing.T) {
	q := PageQuery{Page: 2, Limit: 10}
	meta := NewPageMeta(q, 25)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPreviousPage)
	assert.Equal(t, 10, q.Offset())
}

func TestApplyDefaults(t *testing.T) {
	q := PageQuery{Search: "  go  "}
	q.ApplyDefaults()

	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, "go", q.Search)
	assert.Equal(t, 0, q.Offset())
}
