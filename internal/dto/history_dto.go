package dto

type HistoryFilter struct {
	BranchID int64 `form:"branch_id"`
	Limit    int   `form:"limit,default=100"`
}

type HistoryRow struct {
	RecordedAt  string `json:"recorded_at"`
	ProductName string `json:"product_name"`
	StockPacks  int    `json:"stock_packs"`
	Username    string `json:"username"`
	BranchID    int64  `json:"branch_id"`
}

type HistoryResponse struct {
	Rows []HistoryRow `json:"rows"`
}
