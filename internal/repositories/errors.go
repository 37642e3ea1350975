package repositories

import (
	"strings"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// ErrSlugTaken is returned when a post insert or update loses the race for a slug.
var ErrSlugTaken = errors.New("slug already taken")

// uniqueViolation reports whether err is a unique constraint violation and
// which constraint fired.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}

// translate maps store errors onto the application taxonomy. The store's
// unique constraints are the authoritative source of Conflict.
func translate(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(notFound)
	}
	if _, ok := uniqueViolation(err); ok {
		return errs.Conflict(conflict)
	}
	return errors.WithStack(err)
}

// likePattern escapes LIKE wildcards in a user supplied term.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func prefixPattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term) + "%"
}
