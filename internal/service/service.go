package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/calc"

	"gorm.io/gorm"
)

// ErrNotFound marks missing-row errors so handlers can map them to 404 and
// keep them distinct from validation failures. Wrap with fmt.Errorf("...: %w").
var ErrNotFound = errors.New("no encontrado")

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// normalizeDate trims a submitted window bound. nil and "" both mean
// "unbounded" and normalize to nil; anything else must be a YYYY-MM-DD day.
func normalizeDate(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	if !calc.ValidDate(v) {
		return nil, errors.New("fecha inválida, formato esperado YYYY-MM-DD")
	}
	return &v, nil
}

// validateWindow rejects inverted windows. Bounds are inclusive; nil means
// unbounded on that side.
func validateWindow(start, end *string) error {
	if start != nil && end != nil && *start > *end {
		return errors.New("start_date no puede ser posterior a end_date")
	}
	return nil
}

// expired reports whether the window already ended before today.
func expired(end *string, today string) bool {
	return end != nil && *end != "" && *end < today
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

// nowFunc is swapped in tests to pin the clock.
var nowFunc = time.Now
