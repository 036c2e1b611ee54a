package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

// IsDuplicateKey reports a unique constraint violation from postgres or the gorm translator.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, xerrors.ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, xerrors.ErrInvalidDate
	}
	return t, nil
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
