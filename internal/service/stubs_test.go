package service

// stubs_test.go
// In-memory repository stubs shared by the service unit tests. Every stub
// clones rows on the way in and out so tests observe exactly what was saved,
// not shared pointers.

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/config"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/repository"

	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
		OwnerEmail:         "dueno@test.local",
		BakeryEmail:        "panaderia@test.local",
	}
}

var errStubNotFound = errors.New("record not found")

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[int64]*model.Product
	nextID   int64
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*model.Product)}
}

func (r *stubProductRepo) FindByID(_ context.Context, id int64) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errStubNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.ProductCode == code {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return errStubNotFound
	}
	cloned := *p
	r.products[p.ID] = &cloned
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	cloned := *p
	r.products[p.ID] = &cloned
	return nil
}

func (r *stubProductRepo) DeleteTx(_ *gorm.DB, id int64) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── BranchProductRepository stub ─────────────────────────────────────────────

type bpKey struct{ branch, product int64 }

type stubBranchProductRepo struct {
	rows     map[bpKey]*model.BranchProduct
	products *stubProductRepo
}

func newStubBranchProductRepo(products *stubProductRepo) *stubBranchProductRepo {
	return &stubBranchProductRepo{rows: make(map[bpKey]*model.BranchProduct), products: products}
}

func (r *stubBranchProductRepo) clone(bp *model.BranchProduct) *model.BranchProduct {
	cloned := *bp
	if p, ok := r.products.products[bp.ProductID]; ok {
		pc := *p
		cloned.Product = &pc
	}
	return &cloned
}

func (r *stubBranchProductRepo) ExpireOverdue(_ context.Context, branchID int64, today string) error {
	for k, bp := range r.rows {
		if k.branch != branchID || !bp.Active {
			continue
		}
		if bp.EndDate != nil && *bp.EndDate != "" && *bp.EndDate < today {
			bp.Active = false
			bp.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *stubBranchProductRepo) Find(_ context.Context, branchID, productID int64) (*model.BranchProduct, error) {
	bp, ok := r.rows[bpKey{branchID, productID}]
	if !ok {
		return nil, errStubNotFound
	}
	return r.clone(bp), nil
}

func (r *stubBranchProductRepo) FindVisible(_ context.Context, branchID, productID int64, today string) (*model.BranchProduct, error) {
	bp, ok := r.rows[bpKey{branchID, productID}]
	if !ok || !VisibleOn(bp, today) {
		return nil, errStubNotFound
	}
	return r.clone(bp), nil
}

func (r *stubBranchProductRepo) ListVisible(_ context.Context, branchID int64, today string) ([]model.BranchProduct, error) {
	var out []model.BranchProduct
	for k, bp := range r.rows {
		if branchID != 0 && k.branch != branchID {
			continue
		}
		if !VisibleOn(bp, today) {
			continue
		}
		out = append(out, *r.clone(bp))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product == nil || out[j].Product == nil {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Product.Name < out[j].Product.Name
	})
	return out, nil
}

func (r *stubBranchProductRepo) ListByProduct(_ context.Context, productID int64) ([]model.BranchProduct, error) {
	var out []model.BranchProduct
	for k, bp := range r.rows {
		if k.product == productID {
			out = append(out, *r.clone(bp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BranchID < out[j].BranchID })
	return out, nil
}

func (r *stubBranchProductRepo) Save(_ context.Context, bp *model.BranchProduct) error {
	cloned := *bp
	cloned.Product = nil
	r.rows[bpKey{bp.BranchID, bp.ProductID}] = &cloned
	return nil
}

func (r *stubBranchProductRepo) CreateTx(_ *gorm.DB, bp *model.BranchProduct) error {
	cloned := *bp
	cloned.Product = nil
	r.rows[bpKey{bp.BranchID, bp.ProductID}] = &cloned
	return nil
}

func (r *stubBranchProductRepo) UpdateStockTx(_ *gorm.DB, branchID, productID int64, stockPacks int) error {
	bp, ok := r.rows[bpKey{branchID, productID}]
	if !ok {
		return errStubNotFound
	}
	bp.CurrentStockPacks = stockPacks
	bp.UpdatedAt = time.Now()
	return nil
}

func (r *stubBranchProductRepo) DeleteByProductTx(_ *gorm.DB, productID int64) error {
	for k := range r.rows {
		if k.product == productID {
			delete(r.rows, k)
		}
	}
	return nil
}

var _ repository.BranchProductRepository = (*stubBranchProductRepo)(nil)

// ── BranchRepository stub ────────────────────────────────────────────────────

type stubBranchRepo struct{ branches []model.Branch }

func newStubBranchRepo() *stubBranchRepo {
	return &stubBranchRepo{branches: []model.Branch{
		{ID: 1, Name: "Sucursal 1"},
		{ID: 2, Name: "Sucursal 2"},
		{ID: 3, Name: "Sucursal 3"},
	}}
}

func (r *stubBranchRepo) List(_ context.Context) ([]model.Branch, error) {
	out := make([]model.Branch, len(r.branches))
	copy(out, r.branches)
	return out, nil
}

func (r *stubBranchRepo) Exists(_ context.Context, id int64) (bool, error) {
	for _, b := range r.branches {
		if b.ID == id {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.BranchRepository = (*stubBranchRepo)(nil)

// ── StockEntryRepository stub ────────────────────────────────────────────────

type stubStockEntryRepo struct {
	entries  []model.StockEntry
	products *stubProductRepo
	users    map[int64]string
	nextID   int64
}

func newStubStockEntryRepo(products *stubProductRepo) *stubStockEntryRepo {
	return &stubStockEntryRepo{products: products, users: make(map[int64]string)}
}

func (r *stubStockEntryRepo) CreateTx(_ *gorm.DB, e *model.StockEntry) error {
	r.nextID++
	e.ID = r.nextID
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubStockEntryRepo) History(_ context.Context, branchID int64, limit int) ([]repository.HistoryEntry, error) {
	var out []repository.HistoryEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if branchID != 0 && e.BranchID != branchID {
			continue
		}
		row := repository.HistoryEntry{
			RecordedAt: e.RecordedAt,
			StockPacks: e.StockPacks,
			Username:   r.users[e.RecordedBy],
			BranchID:   e.BranchID,
		}
		if p, ok := r.products.products[e.ProductID]; ok {
			row.ProductName = p.Name
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *stubStockEntryRepo) ByDate(_ context.Context, branchID int64, date string) ([]model.StockEntry, error) {
	var out []model.StockEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.RecordedDate != date {
			continue
		}
		if branchID != 0 && e.BranchID != branchID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

var _ repository.StockEntryRepository = (*stubStockEntryRepo)(nil)

// ── AlertLogRepository stub ──────────────────────────────────────────────────

type stubAlertLogRepo struct {
	logs   []model.AlertLog
	nextID int64
}

func newStubAlertLogRepo() *stubAlertLogRepo { return &stubAlertLogRepo{} }

func (r *stubAlertLogRepo) Create(_ context.Context, a *model.AlertLog) error {
	r.nextID++
	a.ID = r.nextID
	r.logs = append(r.logs, *a)
	return nil
}

func (r *stubAlertLogRepo) CountSince(_ context.Context, branchID, productID int64, since time.Time) (int64, error) {
	var count int64
	for _, a := range r.logs {
		if a.BranchID == branchID && a.ProductID == productID && !a.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

var _ repository.AlertLogRepository = (*stubAlertLogRepo)(nil)

// ── Notifier recorder ────────────────────────────────────────────────────────

type recordingNotifier struct {
	payloads []interface{}
	failWith error
}

func (n *recordingNotifier) EnqueueEmail(_ context.Context, payload interface{}) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.payloads = append(n.payloads, payload)
	return nil
}

var _ Notifier = (*recordingNotifier)(nil)

// ── Test fixture ─────────────────────────────────────────────────────────────

type testEnv struct {
	products       *stubProductRepo
	branchProducts *stubBranchProductRepo
	branches       *stubBranchRepo
	entries        *stubStockEntryRepo
	alertLogs      *stubAlertLogRepo
	notifier       *recordingNotifier

	visibility VisibilityService
	catalog    CatalogService
	stock      StockService
	summary    SummaryService
}

func newTestEnv() *testEnv {
	products := newStubProductRepo()
	branchProducts := newStubBranchProductRepo(products)
	branches := newStubBranchRepo()
	entries := newStubStockEntryRepo(products)
	alertLogs := newStubAlertLogRepo()
	notifier := &recordingNotifier{}

	cfg := testConfig()
	visibility := NewVisibilityService(branchProducts, branches)
	return &testEnv{
		products:       products,
		branchProducts: branchProducts,
		branches:       branches,
		entries:        entries,
		alertLogs:      alertLogs,
		notifier:       notifier,
		visibility:     visibility,
		catalog:        NewCatalogService(products, branchProducts, branches, visibility),
		stock:          NewStockService(products, branchProducts, entries, alertLogs, visibility, notifier, cfg),
		summary:        NewSummaryService(branchProducts, entries, branches, visibility),
	}
}

// seedProduct inserts a catalog row plus one override per branch, all inactive
// except the ones the test activates afterwards.
func (env *testEnv) seedProduct(code, name string, minPacksOrder int) *model.Product {
	p := &model.Product{
		ProductCode:   code,
		Name:          name,
		Category:      "Panificados",
		UnitsPerPack:  6,
		MinPacksOrder: minPacksOrder,
	}
	_ = env.products.CreateTx(nil, p)
	for _, b := range env.branches.branches {
		_ = env.branchProducts.CreateTx(nil, &model.BranchProduct{BranchID: b.ID, ProductID: p.ID})
	}
	return p
}

// activate flips one branch row on with the given stock and margin.
func (env *testEnv) activate(branchID, productID int64, stock, margin int) {
	bp := env.branchProducts.rows[bpKey{branchID, productID}]
	bp.Active = true
	bp.CurrentStockPacks = stock
	bp.MarginMinimumPacks = margin
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }
