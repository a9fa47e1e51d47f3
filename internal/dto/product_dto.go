package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearProductoRequest creates the catalog row plus one BranchProduct per
// branch. The designated branch receives the submitted stock/margin/window;
// every other branch starts zeroed and inactive.
type CrearProductoRequest struct {
	ProductCode  string `json:"product_code" validate:"required,min=1,max=40"`
	Name         string `json:"name"         validate:"required,min=1,max=120"`
	Category     string `json:"category"`
	LeadTimeDays int    `json:"lead_time_days"  validate:"min=0"`
	UnitsPerPack int    `json:"units_per_pack"  validate:"min=0"`
	MinPacksOrder int   `json:"min_packs_order" validate:"min=0"`

	BranchID           int64   `json:"branch_id" validate:"required,min=1"`
	CurrentStockPacks  int     `json:"current_stock_packs"  validate:"min=0"`
	MarginMinimumPacks int     `json:"margin_minimum_packs" validate:"min=0"`
	Active             bool    `json:"active"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
}

// ActualizarProductoRequest patches catalog fields. Omitted fields keep their
// current values; numeric fields are floored and clamped server-side.
type ActualizarProductoRequest struct {
	ProductCode   *string `json:"product_code" validate:"omitempty,min=1,max=40"`
	Name          *string `json:"name"         validate:"omitempty,min=1,max=120"`
	Category      *string `json:"category"`
	LeadTimeDays  *int    `json:"lead_time_days"`
	UnitsPerPack  *int    `json:"units_per_pack"`
	MinPacksOrder *int    `json:"min_packs_order"`
}

// ActualizarBranchProductRequest patches one branch override. Nil pointers keep
// the stored value; for the window fields an explicit empty string clears the
// bound ("no start" / "no end").
type ActualizarBranchProductRequest struct {
	CurrentStockPacks  *int    `json:"current_stock_packs"`
	MarginMinimumPacks *int    `json:"margin_minimum_packs"`
	Active             *bool   `json:"active"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	BranchID    int64  `form:"branch_id"`
	OnlyVisible bool   `form:"only_visible"`
	Name        string `form:"name"`
	Category    string `form:"category"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BranchOverrideResponse struct {
	BranchID           int64   `json:"branch_id"`
	Active             bool    `json:"active"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
	CurrentStockPacks  int     `json:"current_stock_packs"`
	MarginMinimumPacks int     `json:"margin_minimum_packs"`
	Visible            bool    `json:"visible"`
}

type ProductoResponse struct {
	ID            int64                    `json:"id"`
	ProductCode   string                   `json:"product_code"`
	Name          string                   `json:"name"`
	Category      string                   `json:"category"`
	LeadTimeDays  int                      `json:"lead_time_days"`
	UnitsPerPack  int                      `json:"units_per_pack"`
	MinPacksOrder int                      `json:"min_packs_order"`
	Branches      []BranchOverrideResponse `json:"branches"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int                `json:"total"`
}
