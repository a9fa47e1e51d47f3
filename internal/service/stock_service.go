package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/calc"
	"github.com/vllevinton/bakery-stock-app/internal/config"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/repository"
	"github.com/vllevinton/bakery-stock-app/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AlertReasonEmployeeSave tags alert_logs rows produced by the batch pipeline.
const AlertReasonEmployeeSave = "EMPLOYEE_SAVE"

// dedupWindow is the rolling suppression window for repeat alerts on the same
// (branch, product).
const dedupWindow = 24 * time.Hour

// Notifier is the outbound edge of the pipeline. *worker.Dispatcher satisfies
// it; tests plug a recorder. Dispatch failures are swallowed by the caller —
// a broken mail path must never fail an already-committed stock write.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// StockService applies employee-submitted stock batches and decides which
// alerts to send.
type StockService interface {
	// ApplyBatch validates, persists and alerts for one branch's batch.
	// Entries that do not resolve to a visible product, and no-op values, are
	// dropped and counted — never an error for the whole batch.
	ApplyBatch(ctx context.Context, branchID int64, user *model.User, req dto.BatchStockRequest) (*dto.BatchStockResponse, error)
	// History returns the newest stock entries joined with product and user.
	History(ctx context.Context, filter dto.HistoryFilter) (*dto.HistoryResponse, error)
}

type stockService struct {
	products       repository.ProductRepository
	branchProducts repository.BranchProductRepository
	entries        repository.StockEntryRepository
	alertLogs      repository.AlertLogRepository
	visibility     VisibilityService
	notifier       Notifier
	cfg            *config.Config
}

func NewStockService(
	products repository.ProductRepository,
	branchProducts repository.BranchProductRepository,
	entries repository.StockEntryRepository,
	alertLogs repository.AlertLogRepository,
	visibility VisibilityService,
	notifier Notifier,
	cfg *config.Config,
) StockService {
	return &stockService{
		products:       products,
		branchProducts: branchProducts,
		entries:        entries,
		alertLogs:      alertLogs,
		visibility:     visibility,
		notifier:       notifier,
		cfg:            cfg,
	}
}

// alertCandidate carries the committed change through status recompute and
// de-duplication.
type alertCandidate struct {
	product        *model.Product
	branchID       int64
	stockPacks     int
	marginMinimum  int
	replenishPacks int
}

func (s *stockService) ApplyBatch(ctx context.Context, branchID int64, user *model.User, req dto.BatchStockRequest) (*dto.BatchStockResponse, error) {
	if err := s.visibility.ApplyAutoExpiry(ctx, branchID); err != nil {
		return nil, err
	}

	now := nowFunc()
	today := now.Format(calc.DateLayout)

	type accepted struct {
		bp       *model.BranchProduct
		newStock int
	}
	var changes []accepted
	skipped := 0

	// All accepted updates and their history rows commit together or not at
	// all. Entries dropped by the leniency policy just bump the counter.
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		changes = changes[:0]
		skipped = 0
		for _, item := range req.Items {
			newStock := floorStock(item.StockPacks)
			if item.ProductID <= 0 {
				skipped++
				continue
			}
			// Only visible rows are writable: an employee can never push stock
			// into a hidden or expired product.
			bp, err := s.branchProducts.FindVisible(ctx, branchID, item.ProductID, today)
			if err != nil {
				skipped++
				continue
			}
			if bp.CurrentStockPacks == newStock {
				// No-op write: no update, no history row.
				skipped++
				continue
			}
			if err := s.branchProducts.UpdateStockTx(tx, branchID, item.ProductID, newStock); err != nil {
				return err
			}
			entry := &model.StockEntry{
				ProductID:    item.ProductID,
				BranchID:     branchID,
				StockPacks:   newStock,
				RecordedBy:   user.ID,
				RecordedAt:   now,
				RecordedDate: today,
			}
			if err := s.entries.CreateTx(tx, entry); err != nil {
				return err
			}
			changes = append(changes, accepted{bp: bp, newStock: newStock})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if len(changes) == 0 {
		return &dto.BatchStockResponse{
			Message: "No hay cambios para guardar.",
			Skipped: skipped,
		}, nil
	}

	// Recompute status from the branch margin and the catalog minimum order.
	var candidates []alertCandidate
	for _, ch := range changes {
		if ch.bp.Product == nil {
			continue
		}
		replenish := calc.ComputeReplenishPacks(ch.newStock, ch.bp.MarginMinimumPacks, ch.bp.Product.MinPacksOrder)
		if calc.ComputeStatus(ch.newStock, ch.bp.MarginMinimumPacks) != calc.StatusAlerta || replenish <= 0 {
			continue
		}
		candidates = append(candidates, alertCandidate{
			product:        ch.bp.Product,
			branchID:       branchID,
			stockPacks:     ch.newStock,
			marginMinimum:  ch.bp.MarginMinimumPacks,
			replenishPacks: replenish,
		})
	}

	// Suppress anything already alerted for this (branch, product) within the
	// rolling window: no second notification, no second log row.
	var toNotify []alertCandidate
	since := now.Add(-dedupWindow)
	for _, cand := range candidates {
		count, err := s.alertLogs.CountSince(ctx, cand.branchID, cand.product.ID, since)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		toNotify = append(toNotify, cand)
	}

	if len(toNotify) > 0 {
		s.dispatchAlerts(ctx, toNotify, user, now)
	}

	msg := "Cambios guardados. No hubo alertas nuevas para notificar."
	if len(toNotify) > 0 {
		msg = fmt.Sprintf("Cambios guardados. Se enviaron alertas por %d producto(s).", len(toNotify))
	}
	return &dto.BatchStockResponse{
		Message:    msg,
		Updated:    len(changes),
		Skipped:    skipped,
		AlertsSent: len(toNotify),
	}, nil
}

// dispatchAlerts composes the two payloads — detailed for the owner, terse for
// the submitting employee — enqueues both, then appends one alert_logs row per
// product. Logging happens once dispatch is attempted, regardless of delivery
// outcome; the queue and DLQ absorb transport failures.
func (s *stockService) dispatchAlerts(ctx context.Context, toNotify []alertCandidate, user *model.User, now time.Time) {
	ownerRecipients := dropEmpty(s.cfg.OwnerEmail, s.cfg.BakeryEmail)
	var employeeRecipients []string
	if user.Email != nil && *user.Email != "" {
		employeeRecipients = []string{*user.Email}
	}

	if len(ownerRecipients) > 0 {
		payload := worker.AlertEmailPayload{
			To:       ownerRecipients,
			Subject:  "ALERTA DE STOCK",
			HTMLBody: formatOwnerAlert(toNotify),
			TextBody: "ALERTA DE STOCK",
		}
		if err := s.notifier.EnqueueEmail(ctx, payload); err != nil {
			log.Error().Err(err).Msg("stock: failed to enqueue owner alert")
		}
	}
	if len(employeeRecipients) > 0 {
		payload := worker.AlertEmailPayload{
			To:       employeeRecipients,
			Subject:  "Reabastecer (packs)",
			HTMLBody: formatEmployeeAlert(toNotify),
			TextBody: formatEmployeeAlertText(toNotify),
		}
		if err := s.notifier.EnqueueEmail(ctx, payload); err != nil {
			log.Error().Err(err).Msg("stock: failed to enqueue employee alert")
		}
	}

	sentTo, _ := json.Marshal(map[string][]string{
		"owner":    ownerRecipients,
		"employee": employeeRecipients,
	})
	for _, cand := range toNotify {
		entry := &model.AlertLog{
			ProductID:          cand.product.ID,
			BranchID:           cand.branchID,
			StockPacks:         cand.stockPacks,
			MarginMinimumPacks: cand.marginMinimum,
			ReplenishPacks:     cand.replenishPacks,
			SentTo:             string(sentTo),
			Reason:             AlertReasonEmployeeSave,
			SentAt:             now,
		}
		if err := s.alertLogs.Create(ctx, entry); err != nil {
			log.Error().Err(err).
				Int64("product_id", cand.product.ID).
				Int64("branch_id", cand.branchID).
				Msg("stock: failed to append alert log")
		}
	}
}

func (s *stockService) History(ctx context.Context, filter dto.HistoryFilter) (*dto.HistoryResponse, error) {
	limit := filter.Limit
	if limit < 10 {
		limit = 10
	}
	if limit > 500 {
		limit = 500
	}
	entries, err := s.entries.History(ctx, filter.BranchID, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, dto.HistoryRow{
			RecordedAt:  e.RecordedAt.Format(time.RFC3339),
			ProductName: e.ProductName,
			StockPacks:  e.StockPacks,
			Username:    e.Username,
			BranchID:    e.BranchID,
		})
	}
	return &dto.HistoryResponse{Rows: rows}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// floorStock clamps a submitted count to a non-negative whole number of packs.
func floorStock(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return int(math.Floor(v))
}

func dropEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func formatOwnerAlert(items []alertCandidate) string {
	var b strings.Builder
	b.WriteString("<h2>ALERTA DE STOCK</h2>")
	b.WriteString("<p>Se detectaron productos con stock por debajo del mínimo recomendado para asegurar stock disponible mañana.</p>")
	for _, it := range items {
		fmt.Fprintf(&b, `<div style="margin:20px 0;">
<div><b>Producto:</b> %s (%s)</div>
<div><b>Stock actual:</b> %d</div>
<div><b>Mínimo recomendado (margen mínimo):</b> %d</div>
<div><b>Reabastecer al menos:</b> %d</div>
<div><b>Mínimo por pedido:</b> %d</div>
</div>`,
			html.EscapeString(it.product.Name), html.EscapeString(it.product.ProductCode),
			it.stockPacks, it.marginMinimum, it.replenishPacks, it.product.MinPacksOrder)
	}
	return b.String()
}

func formatEmployeeAlert(items []alertCandidate) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("• %s (%s): reabastecer %d packs",
			html.EscapeString(it.product.Name), html.EscapeString(it.product.ProductCode), it.replenishPacks))
	}
	return "<h3>Reabastecer (packs)</h3><p>" + strings.Join(lines, "<br/>") + "</p>"
}

func formatEmployeeAlertText(items []alertCandidate) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s (%s): %d packs", it.product.Name, it.product.ProductCode, it.replenishPacks))
	}
	return strings.Join(lines, "\n")
}
