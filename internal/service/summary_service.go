package service

import (
	"context"
	"math"

	"github.com/vllevinton/bakery-stock-app/internal/calc"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/repository"
)

// summaryDays is the length of the dashboard's average-stock series.
const summaryDays = 30

// SummaryService builds the owner dashboard: KPI block over the currently
// visible products and a rolling average-stock series aggregated from the
// stock history.
type SummaryService interface {
	// Resumen computes the dashboard for one branch, or across all branches
	// when branchID is 0.
	Resumen(ctx context.Context, branchID int64) (*dto.SummaryResponse, error)
}

type summaryService struct {
	branchProducts repository.BranchProductRepository
	entries        repository.StockEntryRepository
	branches       repository.BranchRepository
	visibility     VisibilityService
}

func NewSummaryService(
	branchProducts repository.BranchProductRepository,
	entries repository.StockEntryRepository,
	branches repository.BranchRepository,
	visibility VisibilityService,
) SummaryService {
	return &summaryService{
		branchProducts: branchProducts,
		entries:        entries,
		branches:       branches,
		visibility:     visibility,
	}
}

func (s *summaryService) Resumen(ctx context.Context, branchID int64) (*dto.SummaryResponse, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if branchID != 0 && b.ID != branchID {
			continue
		}
		if err := s.visibility.ApplyAutoExpiry(ctx, b.ID); err != nil {
			return nil, err
		}
	}

	rows, err := s.branchProducts.ListVisible(ctx, branchID, calc.Today())
	if err != nil {
		return nil, err
	}

	kpis := dto.SummaryKPIs{TotalProducts: len(rows)}
	alertProducts := make([]dto.AlertProductSummary, 0)
	stockSum := 0
	for i := range rows {
		bp := &rows[i]
		stockSum += bp.CurrentStockPacks
		if calc.ComputeStatus(bp.CurrentStockPacks, bp.MarginMinimumPacks) != calc.StatusAlerta {
			continue
		}
		summary := dto.AlertProductSummary{
			ProductID:          bp.ProductID,
			BranchID:           bp.BranchID,
			CurrentStockPacks:  bp.CurrentStockPacks,
			MarginMinimumPacks: bp.MarginMinimumPacks,
		}
		if bp.Product != nil {
			summary.Name = bp.Product.Name
			summary.Category = bp.Product.Category
		}
		alertProducts = append(alertProducts, summary)
	}
	kpis.AlertCount = len(alertProducts)
	kpis.OKCount = kpis.TotalProducts - kpis.AlertCount
	if kpis.TotalProducts > 0 {
		kpis.AvgStock = roundDiv(stockSum, kpis.TotalProducts)
	}

	series, err := s.avgStockSeries(ctx, branchID)
	if err != nil {
		return nil, err
	}

	return &dto.SummaryResponse{
		KPIs:           kpis,
		AvgStockSeries: series,
		AlertProducts:  alertProducts,
	}, nil
}

// avgStockSeries returns one value per day, oldest first. Each day averages
// the latest reading per (branch, product) recorded on that day; days with no
// readings contribute 0.
func (s *summaryService) avgStockSeries(ctx context.Context, branchID int64) ([]int, error) {
	now := nowFunc()
	series := make([]int, 0, summaryDays)
	for i := summaryDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(calc.DateLayout)
		entries, err := s.entries.ByDate(ctx, branchID, day)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			series = append(series, 0)
			continue
		}
		type key struct{ branch, product int64 }
		latest := make(map[key]int)
		// Entries arrive newest first; the first hit per key wins.
		for _, e := range entries {
			k := key{e.BranchID, e.ProductID}
			if _, seen := latest[k]; !seen {
				latest[k] = e.StockPacks
			}
		}
		sum := 0
		for _, v := range latest {
			sum += v
		}
		series = append(series, roundDiv(sum, len(latest)))
	}
	return series, nil
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
