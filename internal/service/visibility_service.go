package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vllevinton/bakery-stock-app/internal/calc"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/repository"
)

// VisibilityService decides, for a branch and a calendar day, which products
// an employee can see and act on. It owns the lazy auto-expiry sweep and the
// one authoritative role/branch resolution — every handler goes through
// ResolveBranch instead of re-deriving the branch from claims.
type VisibilityService interface {
	// ApplyAutoExpiry must run before any read or write that depends on
	// visibility for the branch. Idempotent.
	ApplyAutoExpiry(ctx context.Context, branchID int64) error
	// VisibleProducts returns the employee stock page rows: predicate-passing
	// overrides joined with catalog fields plus computed status/replenish.
	VisibleProducts(ctx context.Context, branchID int64) ([]dto.StockProductResponse, error)
	// ResolveBranch returns the effective branch for a request. Employees are
	// pinned to their own branch; the owner picks any existing branch, or 0
	// meaning "all branches" where the view supports it.
	ResolveBranch(ctx context.Context, role string, userBranch *int64, requested int64) (int64, error)
}

type visibilityService struct {
	branchProducts repository.BranchProductRepository
	branches       repository.BranchRepository
}

func NewVisibilityService(branchProducts repository.BranchProductRepository, branches repository.BranchRepository) VisibilityService {
	return &visibilityService{branchProducts: branchProducts, branches: branches}
}

// VisibleOn is the visibility predicate evaluated in memory: active, window started,
// window not ended, both bounds inclusive, nil/empty meaning unbounded.
// An inverted window (start > end) is never visible; writes reject it, this is
// only a backstop for rows that predate the validation.
func VisibleOn(bp *model.BranchProduct, today string) bool {
	if !bp.Active {
		return false
	}
	if bp.StartDate != nil && *bp.StartDate != "" && *bp.StartDate > today {
		return false
	}
	if bp.EndDate != nil && *bp.EndDate != "" && *bp.EndDate < today {
		return false
	}
	return true
}

func (s *visibilityService) ApplyAutoExpiry(ctx context.Context, branchID int64) error {
	return s.branchProducts.ExpireOverdue(ctx, branchID, calc.Today())
}

func (s *visibilityService) VisibleProducts(ctx context.Context, branchID int64) ([]dto.StockProductResponse, error) {
	if err := s.ApplyAutoExpiry(ctx, branchID); err != nil {
		return nil, err
	}
	rows, err := s.branchProducts.ListVisible(ctx, branchID, calc.Today())
	if err != nil {
		return nil, err
	}

	result := make([]dto.StockProductResponse, 0, len(rows))
	for _, bp := range rows {
		if bp.Product == nil {
			continue
		}
		p := bp.Product
		result = append(result, dto.StockProductResponse{
			ProductID:          bp.ProductID,
			ProductCode:        p.ProductCode,
			Name:               p.Name,
			Category:           p.Category,
			CurrentStockPacks:  bp.CurrentStockPacks,
			MarginMinimumPacks: bp.MarginMinimumPacks,
			UnitsPerPack:       p.UnitsPerPack,
			MinPacksOrder:      p.MinPacksOrder,
			Status:             calc.ComputeStatus(bp.CurrentStockPacks, bp.MarginMinimumPacks),
			ReplenishPacks:     calc.ComputeReplenishPacks(bp.CurrentStockPacks, bp.MarginMinimumPacks, p.MinPacksOrder),
		})
	}
	return result, nil
}

func (s *visibilityService) ResolveBranch(ctx context.Context, role string, userBranch *int64, requested int64) (int64, error) {
	switch role {
	case model.RoleEmpleado:
		if userBranch == nil || *userBranch == 0 {
			return 0, errors.New("el empleado no tiene sucursal asignada")
		}
		if requested != 0 && requested != *userBranch {
			return 0, errors.New("sucursal no permitida para este usuario")
		}
		return *userBranch, nil
	case model.RoleOwner:
		if requested == 0 {
			return 0, nil // all branches
		}
		ok, err := s.branches.Exists(ctx, requested)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("sucursal %d inválida", requested)
		}
		return requested, nil
	default:
		return 0, errors.New("rol desconocido")
	}
}
