package service

// stock_service_test.go
// The batch pipeline: leniency policy, transactional history rows, alert
// composition and the 24-hour de-duplication window.

import (
	"context"
	"testing"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinClock(t *testing.T, at time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = time.Now })
}

func testEmployee(branchID int64) *model.User {
	email := "sucursal@test.local"
	return &model.User{
		ID:       7,
		Username: "sucursal2",
		Role:     model.RoleEmpleado,
		Email:    &email,
		BranchID: &branchID,
	}
}

func TestApplyBatchEndToEnd(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	pinClock(t, at)

	p := env.seedProduct("MED-001", "Medialunas", 1)
	env.activate(2, p.ID, 9, 5)
	user := testEmployee(2)
	env.entries.users[user.ID] = user.Username

	resp, err := env.stock.ApplyBatch(ctx, 2, user, dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.Skipped)
	assert.Equal(t, 1, resp.AlertsSent)
	assert.Contains(t, resp.Message, "1 producto(s)")

	// Stock written through.
	assert.Equal(t, 2, env.branchProducts.rows[bpKey{2, p.ID}].CurrentStockPacks)

	// Exactly one history row, stamped with the pinned clock.
	require.Len(t, env.entries.entries, 1)
	entry := env.entries.entries[0]
	assert.Equal(t, p.ID, entry.ProductID)
	assert.Equal(t, int64(2), entry.BranchID)
	assert.Equal(t, 2, entry.StockPacks)
	assert.Equal(t, user.ID, entry.RecordedBy)
	assert.Equal(t, "2026-03-10", entry.RecordedDate)

	// One alert log with the snapshot that triggered it.
	require.Len(t, env.alertLogs.logs, 1)
	logRow := env.alertLogs.logs[0]
	assert.Equal(t, AlertReasonEmployeeSave, logRow.Reason)
	assert.Equal(t, 2, logRow.StockPacks)
	assert.Equal(t, 5, logRow.MarginMinimumPacks)
	assert.Equal(t, 3, logRow.ReplenishPacks)
	assert.Contains(t, logRow.SentTo, "dueno@test.local")
	assert.Contains(t, logRow.SentTo, "sucursal@test.local")
	assert.Equal(t, at, logRow.SentAt)

	// Two emails: detailed for the owner, terse for the employee.
	require.Len(t, env.notifier.payloads, 2)
	owner := env.notifier.payloads[0].(worker.AlertEmailPayload)
	assert.Equal(t, []string{"dueno@test.local", "panaderia@test.local"}, owner.To)
	assert.Equal(t, "ALERTA DE STOCK", owner.Subject)
	assert.Contains(t, owner.HTMLBody, "Medialunas")
	assert.Contains(t, owner.HTMLBody, "Reabastecer al menos:</b> 3")

	employee := env.notifier.payloads[1].(worker.AlertEmailPayload)
	assert.Equal(t, []string{"sucursal@test.local"}, employee.To)
	assert.Contains(t, employee.HTMLBody, "reabastecer 3 packs")
}

func TestApplyBatchRepeatedValueIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.seedProduct("PAN-001", "Pan Flauta", 1)
	env.activate(1, p.ID, 4, 2)

	// First submission changes the stock: one history row.
	resp, err := env.stock.ApplyBatch(ctx, 1, testEmployee(1), dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	require.Len(t, env.entries.entries, 1)

	// The same value again is a no-op: no update, no second row.
	resp, err = env.stock.ApplyBatch(ctx, 1, testEmployee(1), dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 7}},
	})
	require.NoError(t, err)

	assert.Equal(t, "No hay cambios para guardar.", resp.Message)
	assert.Equal(t, 0, resp.Updated)
	assert.Equal(t, 1, resp.Skipped)
	assert.Len(t, env.entries.entries, 1)
	assert.Empty(t, env.notifier.payloads)
}

func TestApplyBatchSkipsUnresolvableEntries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	good := env.seedProduct("PAN-001", "Pan Flauta", 1)
	env.activate(1, good.ID, 10, 2)
	hidden := env.seedProduct("OCU-001", "Oculto", 1) // stays inactive

	resp, err := env.stock.ApplyBatch(ctx, 1, testEmployee(1), dto.BatchStockRequest{
		Items: []dto.StockItemRequest{
			{ProductID: good.ID, StockPacks: 8},
			{ProductID: hidden.ID, StockPacks: 3},
			{ProductID: 999, StockPacks: 3},
			{ProductID: 0, StockPacks: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 3, resp.Skipped)
	require.Len(t, env.entries.entries, 1)
	assert.Equal(t, good.ID, env.entries.entries[0].ProductID)
	// Hidden row never changed.
	assert.Equal(t, 0, env.branchProducts.rows[bpKey{1, hidden.ID}].CurrentStockPacks)
}

func TestApplyBatchFloorsSubmittedCounts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct("PAN-001", "Pan Flauta", 1)
	env.activate(1, a.ID, 10, 2)
	b := env.seedProduct("FAC-001", "Facturas", 1)
	env.activate(1, b.ID, 10, 2)

	resp, err := env.stock.ApplyBatch(ctx, 1, testEmployee(1), dto.BatchStockRequest{
		Items: []dto.StockItemRequest{
			{ProductID: a.ID, StockPacks: 4.9},
			{ProductID: b.ID, StockPacks: -3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, 4, env.branchProducts.rows[bpKey{1, a.ID}].CurrentStockPacks)
	assert.Equal(t, 0, env.branchProducts.rows[bpKey{1, b.ID}].CurrentStockPacks)
}

func TestApplyBatchStockAtMarginDoesNotAlert(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.seedProduct("PAN-001", "Pan Flauta", 1)
	env.activate(1, p.ID, 10, 5)

	resp, err := env.stock.ApplyBatch(ctx, 1, testEmployee(1), dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.AlertsSent)
	assert.Contains(t, resp.Message, "No hubo alertas nuevas")
	assert.Empty(t, env.alertLogs.logs)
	assert.Empty(t, env.notifier.payloads)
}

func TestAlertDeduplicationWindow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	p := env.seedProduct("MED-001", "Medialunas", 1)
	env.activate(2, p.ID, 9, 5)
	user := testEmployee(2)

	// First drop below the margin: one alert, one log row.
	pinClock(t, t0)
	resp, err := env.stock.ApplyBatch(ctx, 2, user, dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.AlertsSent)
	assert.Len(t, env.alertLogs.logs, 1)
	assert.Len(t, env.notifier.payloads, 2)

	// A further change one hour later stays below the margin: still a real
	// update and history row, but the alert is suppressed.
	pinClock(t, t0.Add(time.Hour))
	resp, err = env.stock.ApplyBatch(ctx, 2, user, dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.AlertsSent)
	assert.Contains(t, resp.Message, "No hubo alertas nuevas")
	assert.Len(t, env.alertLogs.logs, 1)
	assert.Len(t, env.notifier.payloads, 2)
	assert.Len(t, env.entries.entries, 2)

	// Past the rolling window the same product alerts again.
	pinClock(t, t0.Add(25*time.Hour))
	resp, err = env.stock.ApplyBatch(ctx, 2, user, dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.AlertsSent)
	assert.Len(t, env.alertLogs.logs, 2)
}

func TestDispatchFailureNeverFailsTheBatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.seedProduct("MED-001", "Medialunas", 1)
	env.activate(2, p.ID, 9, 5)
	env.notifier.failWith = assert.AnError

	resp, err := env.stock.ApplyBatch(ctx, 2, testEmployee(2), dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 2}},
	})
	require.NoError(t, err)

	// The write and the log row stand; only delivery was lost.
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 1, resp.AlertsSent)
	assert.Equal(t, 2, env.branchProducts.rows[bpKey{2, p.ID}].CurrentStockPacks)
	assert.Len(t, env.alertLogs.logs, 1)
}

func TestEmployeeWithoutEmailGetsNoCopy(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.seedProduct("MED-001", "Medialunas", 1)
	env.activate(2, p.ID, 9, 5)
	user := testEmployee(2)
	user.Email = nil

	_, err := env.stock.ApplyBatch(ctx, 2, user, dto.BatchStockRequest{
		Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: 2}},
	})
	require.NoError(t, err)

	require.Len(t, env.notifier.payloads, 1)
	owner := env.notifier.payloads[0].(worker.AlertEmailPayload)
	assert.Equal(t, "ALERTA DE STOCK", owner.Subject)
}

func TestHistoryNewestFirstWithClampedLimit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.seedProduct("PAN-001", "Pan Flauta", 1)
	env.activate(1, p.ID, 0, 0)
	user := testEmployee(1)
	env.entries.users[user.ID] = user.Username

	for stock := 1; stock <= 12; stock++ {
		_, err := env.stock.ApplyBatch(ctx, 1, user, dto.BatchStockRequest{
			Items: []dto.StockItemRequest{{ProductID: p.ID, StockPacks: float64(stock)}},
		})
		require.NoError(t, err)
	}

	// A limit below the floor is raised to 10.
	resp, err := env.stock.History(ctx, dto.HistoryFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 10)
	assert.Equal(t, 12, resp.Rows[0].StockPacks)
	assert.Equal(t, "Pan Flauta", resp.Rows[0].ProductName)
	assert.Equal(t, "sucursal2", resp.Rows[0].Username)
}
