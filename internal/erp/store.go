// Package erp is the document store behind the assistant's tools. It owns
// the document shapes, insert-time validation, totals and persistence of
// the business entities the assistant can touch.
package erp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errx "github.com/erpbot/server/internal/core/error"
	logx "github.com/erpbot/server/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store implements document operations using GORM.
type Store struct {
	db       *gorm.DB
	currency string
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for posting dates and reports.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCurrency sets the company currency used when a document omits one.
func WithCurrency(currency string) Option {
	return func(s *Store) { s.currency = strings.ToUpper(currency) }
}

// NewStore creates a Store on top of db.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, currency: "GTQ", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates or updates every table the store uses.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Currency returns the company currency.
func (s *Store) Currency() string { return s.currency }

// Today returns the current date at midnight UTC.
func (s *Store) Today() time.Time {
	return truncateDay(s.now())
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// newDocName builds a document name from a series prefix.
func newDocName(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:10])
}

// dbErr normalizes gorm errors into document error kinds and logs them.
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errx.ErrValidation) || errors.Is(err, errx.ErrDuplicate) || errors.Is(err, errx.ErrNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, errx.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, errx.ErrDuplicate)
	}
	logx.Error().Err(err).Str("op", op).Msg("erp database operation failed")
	return fmt.Errorf("%s: %w", op, err)
}

// exists reports whether a row of model matches the query.
func (s *Store) exists(ctx context.Context, tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
