package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vllevinton/bakery-stock-app/internal/calc"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/repository"

	"gorm.io/gorm"
)

// CatalogService is the owner-facing CRUD over the shared catalog and the
// per-branch overrides. All cross-field validation lives here; repositories
// only move rows.
type CatalogService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id int64, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	ActualizarBranch(ctx context.Context, productID, branchID int64, req dto.ActualizarBranchProductRequest) (*dto.BranchOverrideResponse, error)
	// Eliminar removes the catalog row and every branch override — a hard,
	// branch-wide delete, distinct from DesactivarEnBranch.
	Eliminar(ctx context.Context, id int64) error
	// DesactivarEnBranch turns one branch's row off and clears its window,
	// leaving the catalog and the other branches untouched.
	DesactivarEnBranch(ctx context.Context, productID, branchID int64) error
}

type catalogService struct {
	products       repository.ProductRepository
	branchProducts repository.BranchProductRepository
	branches       repository.BranchRepository
	visibility     VisibilityService
}

func NewCatalogService(
	products repository.ProductRepository,
	branchProducts repository.BranchProductRepository,
	branches repository.BranchRepository,
	visibility VisibilityService,
) CatalogService {
	return &catalogService{
		products:       products,
		branchProducts: branchProducts,
		branches:       branches,
		visibility:     visibility,
	}
}

func (s *catalogService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.ProductCode))
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, errors.New("código y nombre son obligatorios")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "Otros"
	}

	start, err := normalizeDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := normalizeDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	if existing, err := s.products.FindByCode(ctx, code); err == nil && existing != nil {
		return nil, fmt.Errorf("ya existe un producto con el código %s", code)
	}

	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}
	designatedOK := false
	for _, b := range branches {
		if b.ID == req.BranchID {
			designatedOK = true
			break
		}
	}
	if !designatedOK {
		return nil, fmt.Errorf("sucursal %d inválida", req.BranchID)
	}

	today := calc.Today()
	p := &model.Product{
		ProductCode:   code,
		Name:          name,
		Category:      category,
		LeadTimeDays:  clampMin(req.LeadTimeDays, 0),
		UnitsPerPack:  clampMin(req.UnitsPerPack, 1),
		MinPacksOrder: clampMin(req.MinPacksOrder, 1),
	}

	var overrides []model.BranchProduct
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.products.CreateTx(tx, p); err != nil {
			return err
		}
		// One override per branch. Only the designated branch receives the
		// submitted figures; everyone else starts zeroed and inactive.
		for _, b := range branches {
			bp := model.BranchProduct{BranchID: b.ID, ProductID: p.ID}
			if b.ID == req.BranchID {
				bp.CurrentStockPacks = clampMin(req.CurrentStockPacks, 0)
				bp.MarginMinimumPacks = clampMin(req.MarginMinimumPacks, 0)
				bp.StartDate = start
				bp.EndDate = end
				bp.Active = req.Active && !expired(end, today)
			}
			if err := s.branchProducts.CreateTx(tx, &bp); err != nil {
				return err
			}
			overrides = append(overrides, bp)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return productToResponse(p, overrides, today), nil
}

func (s *catalogService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	// The expiry sweep runs per branch before shaping rows so the Visible flag
	// and the Active column agree.
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if filter.BranchID != 0 && b.ID != filter.BranchID {
			continue
		}
		if err := s.visibility.ApplyAutoExpiry(ctx, b.ID); err != nil {
			return nil, err
		}
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	today := calc.Today()
	data := make([]dto.ProductoResponse, 0, len(products))
	for i := range products {
		p := &products[i]
		overrides, err := s.branchProducts.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if filter.BranchID != 0 {
			filtered := overrides[:0]
			for _, bp := range overrides {
				if bp.BranchID == filter.BranchID {
					filtered = append(filtered, bp)
				}
			}
			overrides = filtered
		}
		if filter.OnlyVisible {
			anyVisible := false
			for j := range overrides {
				if VisibleOn(&overrides[j], today) {
					anyVisible = true
					break
				}
			}
			if !anyVisible {
				continue
			}
		}
		data = append(data, *productToResponse(p, overrides, today))
	}
	return &dto.ProductoListResponse{Data: data, Total: len(data)}, nil
}

func (s *catalogService) Actualizar(ctx context.Context, id int64, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto %d: %w", id, ErrNotFound)
	}

	// Partial patch: omitted fields keep their stored values.
	if req.ProductCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.ProductCode))
		if code == "" {
			return nil, errors.New("el código no puede quedar vacío")
		}
		if code != p.ProductCode {
			if existing, err := s.products.FindByCode(ctx, code); err == nil && existing != nil && existing.ID != id {
				return nil, fmt.Errorf("ya existe un producto con el código %s", code)
			}
			p.ProductCode = code
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.New("el nombre no puede quedar vacío")
		}
		p.Name = name
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.LeadTimeDays != nil {
		p.LeadTimeDays = clampMin(*req.LeadTimeDays, 0)
	}
	if req.UnitsPerPack != nil {
		p.UnitsPerPack = clampMin(*req.UnitsPerPack, 1)
	}
	if req.MinPacksOrder != nil {
		p.MinPacksOrder = clampMin(*req.MinPacksOrder, 1)
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	overrides, err := s.branchProducts.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(p, overrides, calc.Today()), nil
}

func (s *catalogService) ActualizarBranch(ctx context.Context, productID, branchID int64, req dto.ActualizarBranchProductRequest) (*dto.BranchOverrideResponse, error) {
	bp, err := s.branchProducts.Find(ctx, branchID, productID)
	if err != nil {
		return nil, fmt.Errorf("producto %d en sucursal %d: %w", productID, branchID, ErrNotFound)
	}

	if req.CurrentStockPacks != nil {
		bp.CurrentStockPacks = clampMin(*req.CurrentStockPacks, 0)
	}
	if req.MarginMinimumPacks != nil {
		bp.MarginMinimumPacks = clampMin(*req.MarginMinimumPacks, 0)
	}
	if req.Active != nil {
		bp.Active = *req.Active
	}
	if req.StartDate != nil {
		start, err := normalizeDate(req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("start_date: %w", err)
		}
		bp.StartDate = start
	}
	if req.EndDate != nil {
		end, err := normalizeDate(req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("end_date: %w", err)
		}
		bp.EndDate = end
	}

	if err := validateWindow(bp.StartDate, bp.EndDate); err != nil {
		return nil, err
	}

	// An already-ended window cannot be reactivated by flipping active alone;
	// the owner has to clear or advance end_date too.
	today := calc.Today()
	if expired(bp.EndDate, today) {
		bp.Active = false
	}

	if err := s.branchProducts.Save(ctx, bp); err != nil {
		return nil, err
	}
	resp := overrideToResponse(bp, today)
	return &resp, nil
}

func (s *catalogService) Eliminar(ctx context.Context, id int64) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return fmt.Errorf("producto %d: %w", id, ErrNotFound)
	}
	return runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.branchProducts.DeleteByProductTx(tx, id); err != nil {
			return err
		}
		return s.products.DeleteTx(tx, id)
	})
}

func (s *catalogService) DesactivarEnBranch(ctx context.Context, productID, branchID int64) error {
	bp, err := s.branchProducts.Find(ctx, branchID, productID)
	if err != nil {
		return fmt.Errorf("producto %d en sucursal %d: %w", productID, branchID, ErrNotFound)
	}
	bp.Active = false
	bp.StartDate = nil
	bp.EndDate = nil
	return s.branchProducts.Save(ctx, bp)
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func overrideToResponse(bp *model.BranchProduct, today string) dto.BranchOverrideResponse {
	return dto.BranchOverrideResponse{
		BranchID:           bp.BranchID,
		Active:             bp.Active,
		StartDate:          bp.StartDate,
		EndDate:            bp.EndDate,
		CurrentStockPacks:  bp.CurrentStockPacks,
		MarginMinimumPacks: bp.MarginMinimumPacks,
		Visible:            VisibleOn(bp, today),
	}
}

func productToResponse(p *model.Product, overrides []model.BranchProduct, today string) *dto.ProductoResponse {
	branches := make([]dto.BranchOverrideResponse, 0, len(overrides))
	for i := range overrides {
		branches = append(branches, overrideToResponse(&overrides[i], today))
	}
	return &dto.ProductoResponse{
		ID:            p.ID,
		ProductCode:   p.ProductCode,
		Name:          p.Name,
		Category:      p.Category,
		LeadTimeDays:  p.LeadTimeDays,
		UnitsPerPack:  p.UnitsPerPack,
		MinPacksOrder: p.MinPacksOrder,
		Branches:      branches,
	}
}
