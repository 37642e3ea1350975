package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// similarityThreshold is the minimum pg_trgm score for a fuzzy match.
const similarityThreshold = 0.2

// searchArgs are the named parameters shared by the ranked search queries.
func searchArgs(q models.PageQuery) map[string]interface{} {
	return map[string]interface{}{
		"q":         q.Search,
		"like":      likePattern(q.Search),
		"prefix":    prefixPattern(q.Search),
		"threshold": similarityThreshold,
		"limit":     q.Limit,
		"offset":    q.Offset(),
	}
}

// rankedIDs runs a count query and a page query that both select from the
// same filtered set; the page query must return ids in rank order.
func rankedIDs(ctx context.Context, db *gorm.DB, countSQL, pageSQL string, args map[string]interface{}) ([]uint, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Raw(countSQL, args).Scan(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count search results")
	}
	var ids []uint
	if total == 0 {
		return ids, 0, nil
	}
	if err := db.WithContext(ctx).Raw(pageSQL, args).Scan(&ids).Error; err != nil {
		return nil, 0, errors.Wrap(err, "rank search results")
	}
	return ids, total, nil
}

// orderByIDs restores rank order after loading rows with IN (...).
func orderByIDs[T any](items []T, ids []uint, idOf func(T) uint) []T {
	pos := make(map[uint]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	out := make([]T, len(ids))
	n := 0
	for _, it := range items {
		if i, ok := pos[idOf(it)]; ok {
			out[i] = it
			n++
		}
	}
	if n == len(ids) {
		return out
	}
	// rows deleted between ranking and loading leave gaps
	compact := out[:0]
	for _, it := range out {
		if idOf(it) != 0 {
			compact = append(compact, it)
		}
	}
	return compact
}
