package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// StockItemRequest is one employee-submitted reading. Counts are floored to
// non-negative integers server-side; entries that do not resolve to a visible
// product in the employee's branch are dropped, not rejected.
type StockItemRequest struct {
	ProductID  int64   `json:"productId"`
	StockPacks float64 `json:"stockPacks"`
}

type BatchStockRequest struct {
	Items []StockItemRequest `json:"items" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// BatchStockResponse reports what the batch actually did. Skipped counts the
// entries dropped by the leniency policy so callers can see the drops without
// the batch failing.
type BatchStockResponse struct {
	Message    string `json:"message"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	AlertsSent int    `json:"alerts_sent"`
}

// StockProductResponse is one row of the employee stock page: the visible
// branch override joined with its catalog fields plus the computed status.
type StockProductResponse struct {
	ProductID          int64  `json:"product_id"`
	ProductCode        string `json:"product_code"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	CurrentStockPacks  int    `json:"current_stock_packs"`
	MarginMinimumPacks int    `json:"margin_minimum_packs"`
	UnitsPerPack       int    `json:"units_per_pack"`
	MinPacksOrder      int    `json:"min_packs_order"`
	Status             string `json:"status"`
	ReplenishPacks     int    `json:"replenish_packs"`
}
