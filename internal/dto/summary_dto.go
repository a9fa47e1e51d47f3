package dto

type SummaryFilter struct {
	BranchID int64 `form:"branch_id"`
}

type SummaryKPIs struct {
	TotalProducts int `json:"total_products"`
	AlertCount    int `json:"alert_count"`
	OKCount       int `json:"ok_count"`
	AvgStock      int `json:"avg_stock"`
}

type AlertProductSummary struct {
	ProductID          int64  `json:"product_id"`
	BranchID           int64  `json:"branch_id"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	CurrentStockPacks  int    `json:"current_stock_packs"`
	MarginMinimumPacks int    `json:"margin_minimum_packs"`
}

// SummaryResponse drives the owner dashboard: KPI block, the rolling 30-day
// average-stock series (oldest day first) and the products currently in alert.
type SummaryResponse struct {
	KPIs           SummaryKPIs           `json:"kpis"`
	AvgStockSeries []int                 `json:"avg_stock_series"`
	AlertProducts  []AlertProductSummary `json:"alert_products"`
}
