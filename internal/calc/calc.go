// Package calc holds the pure stock arithmetic: alert status and replenish
// quantity. No I/O, no state — everything else in the system calls into here
// so the thresholds live in exactly one place.
package calc

import "time"

// Status values returned by ComputeStatus.
const (
	StatusOK     = "OK"
	StatusAlerta = "ALERTA"
)

// ComputeStatus flags a product when stock drops strictly below the branch
// minimum. Stock equal to the minimum is still OK.
func ComputeStatus(stockPacks, marginMinimumPacks int) string {
	if stockPacks < marginMinimumPacks {
		return StatusAlerta
	}
	return StatusOK
}

// ComputeReplenishPacks returns the recommended reorder quantity: the shortfall
// against the branch minimum, rounded up to the next multiple of the catalog
// minimum order size. The result is always fulfillable in whole order units.
func ComputeReplenishPacks(stockPacks, marginMinimumPacks, minPacksOrder int) int {
	faltante := marginMinimumPacks - stockPacks
	if faltante <= 0 {
		return 0
	}
	mp := minPacksOrder
	if mp < 1 {
		mp = 1
	}
	return ((faltante + mp - 1) / mp) * mp
}

// DateLayout is the calendar-day format used across branch_products windows,
// stock_entries.recorded_date and the summary series. ISO dates compare
// correctly as strings, which the visibility window logic relies on.
const DateLayout = "2006-01-02"

// Today returns the current calendar day as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ValidDate reports whether s parses as a YYYY-MM-DD day. Empty is not valid;
// callers treat empty/nil as "unbounded" before asking.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
