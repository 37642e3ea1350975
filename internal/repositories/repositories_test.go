package repositories

import (
	"testing"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func uniqueErr(constraint string) error {
	return errors.Wrap(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint}, "insert")
}

func TestPostWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.Kind
		slug bool
	}{
		{name: "slug index", err: uniqueErr(postSlugIndex), slug: true},
		{name: "slug sentinel passes through", err: ErrSlugTaken, slug: true},
		{name: "author title index", err: uniqueErr(postAuthorTitleIndex), kind: errs.KindConflict},
		{name: "topic link primary key", err: uniqueErr("post_topics_pkey"), kind: errs.KindConflict},
		{name: "missing row", err: gorm.ErrRecordNotFound, kind: errs.KindNotFound},
		{name: "driver failure", err: errors.New("connection reset"), kind: errs.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postWriteError(tt.err)
			if tt.slug {
				assert.True(t, errors.Is(got, ErrSlugTaken))
				return
			}
			assert.False(t, errors.Is(got, ErrSlugTaken))
			assert.Equal(t, tt.kind, errs.From(got).Kind)
		})
	}

	assert.Equal(t, "Post with this title already exists on this user", errs.From(postWriteError(uniqueErr(postAuthorTitleIndex))).Message)
	assert.Equal(t, "Post already exists", errs.From(postWriteError(uniqueErr("post_topics_pkey"))).Message)
	assert.NoError(t, postWriteError(nil))
}

func TestUniqueViolation(t *testing.T) {
	name, ok := uniqueViolation(uniqueErr("idx_users_email"))
	assert.True(t, ok)
	assert.Equal(t, "idx_users_email", name)

	_, ok = uniqueViolation(gorm.ErrDuplicatedKey)
	assert.True(t, ok)

	_, ok = uniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok, "foreign key violations are not conflicts")
}

func TestLikePatterns(t *testing.T) {
	assert.Equal(t, `%go%`, likePattern("go"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
	assert.Equal(t, `go\_lang%`, prefixPattern("go_lang"))
}

type row struct {
	id   uint
	name string
}

func rowID(r row) uint { return r.id }

func TestOrderByIDs(t *testing.T) {
	loaded := []row{{1, "a"}, {2, "b"}, {3, "c"}}

	got := orderByIDs(loaded, []uint{3, 1, 2}, rowID)
	assert.Equal(t, []row{{3, "c"}, {1, "a"}, {2, "b"}}, got)

	// id 7 was ranked but deleted before the rows were loaded
	got = orderByIDs(loaded, []uint{2, 7, 3, 1}, rowID)
	assert.Equal(t, []row{{2, "b"}, {3, "c"}, {1, "a"}}, got)

	assert.Empty(t, orderByIDs([]row{}, []uint{4}, rowID))
}

func TestPostFilterSQL(t *testing.T) {
	args := searchArgs(models.PageQuery{Page: 3, Limit: 10, Search: "go"})
	assert.Equal(t, 20, args["offset"])
	assert.Equal(t, `%go%`, args["like"])
	assert.Equal(t, `go%`, args["prefix"])

	sql := postFilterSQL(PostFilter{PublicOnly: true, AuthorID: 4, FollowerID: 9}, args)
	assert.Contains(t, sql, "p.status = 'PUBLISHED'")
	assert.Contains(t, sql, "u.is_active")
	assert.Contains(t, sql, "p.author_id = @author")
	assert.Contains(t, sql, "follower_id = @follower")
	assert.NotContains(t, sql, "@publication")
	assert.EqualValues(t, 4, args["author"])
	assert.EqualValues(t, 9, args["follower"])

	bare := map[string]interface{}{}
	assert.Equal(t, "\nFROM posts p\nJOIN users u ON u.id = p.author_id\nWHERE TRUE", postFilterSQL(PostFilter{}, bare))
	assert.Empty(t, bare)
}

func TestSearchOrderingIsTotal(t *testing.T) {
	assert.Contains(t, postSearchRank, "p.created_at DESC, p.id DESC")
	assert.Contains(t, postRecencyOrder, "p.id DESC")
	assert.Contains(t, userSearchRank, "u.created_at DESC, u.id DESC")
}
