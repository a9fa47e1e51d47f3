package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs the ordered
// migration list. Schema is managed exclusively here — no AutoMigrate — so the
// DDL stays explicit and each step is independently re-runnable.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// migration is one named, idempotent schema step. Steps run in declaration
// order; every statement uses IF NOT EXISTS / ON CONFLICT semantics so
// re-running against an already-migrated database is a no-op.
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{"create users", `
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT        NOT NULL UNIQUE,
    password_hash TEXT        NOT NULL,
    role          VARCHAR(20) NOT NULL,
    email         TEXT,
    branch_id     BIGINT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create branches", `
CREATE TABLE IF NOT EXISTS branches (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT        NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create products", `
CREATE TABLE IF NOT EXISTS products (
    id              BIGSERIAL PRIMARY KEY,
    product_code    TEXT        NOT NULL UNIQUE,
    name            TEXT        NOT NULL,
    category        TEXT        NOT NULL DEFAULT 'Otros',
    lead_time_days  INT         NOT NULL DEFAULT 1,
    units_per_pack  INT         NOT NULL DEFAULT 1,
    min_packs_order INT         NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create branch_products", `
CREATE TABLE IF NOT EXISTS branch_products (
    branch_id            BIGINT      NOT NULL REFERENCES branches(id),
    product_id           BIGINT      NOT NULL REFERENCES products(id),
    active               BOOLEAN     NOT NULL DEFAULT false,
    start_date           VARCHAR(10),
    end_date             VARCHAR(10),
    current_stock_packs  INT         NOT NULL DEFAULT 0,
    margin_minimum_packs INT         NOT NULL DEFAULT 0,
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (branch_id, product_id)
)`},
	{"create stock_entries", `
CREATE TABLE IF NOT EXISTS stock_entries (
    id            BIGSERIAL PRIMARY KEY,
    product_id    BIGINT      NOT NULL REFERENCES products(id),
    branch_id     BIGINT      NOT NULL REFERENCES branches(id),
    stock_packs   INT         NOT NULL,
    recorded_by   BIGINT      NOT NULL REFERENCES users(id),
    recorded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    recorded_date VARCHAR(10) NOT NULL
)`},
	{"create alert_logs", `
CREATE TABLE IF NOT EXISTS alert_logs (
    id                   BIGSERIAL PRIMARY KEY,
    product_id           BIGINT      NOT NULL REFERENCES products(id),
    branch_id            BIGINT      NOT NULL REFERENCES branches(id),
    stock_packs          INT         NOT NULL,
    margin_minimum_packs INT         NOT NULL,
    replenish_packs      INT         NOT NULL,
    sent_to              TEXT        NOT NULL,
    reason               TEXT        NOT NULL,
    sent_at              TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"index stock_entries by date", `
CREATE INDEX IF NOT EXISTS idx_stock_entries_recorded_date
    ON stock_entries (recorded_date)`},
	{"index alert_logs dedup lookup", `
CREATE INDEX IF NOT EXISTS idx_alert_logs_branch_product_sent
    ON alert_logs (branch_id, product_id, sent_at)`},
	// The branch set is fixed reference data: exactly three bakeries.
	{"seed branches", `
INSERT INTO branches (id, name)
VALUES (1, 'Sucursal 1'), (2, 'Sucursal 2'), (3, 'Sucursal 3')
ON CONFLICT (id) DO NOTHING`},
	{"align branches sequence after explicit ids", `
SELECT setval(pg_get_serial_sequence('branches', 'id'),
              GREATEST((SELECT MAX(id) FROM branches), 1))`},
	// Backfill: products created before the per-branch schema get one override
	// row per branch, inactive and zeroed.
	{"backfill branch_products", `
INSERT INTO branch_products (branch_id, product_id)
SELECT b.id, p.id
FROM branches b CROSS JOIN products p
ON CONFLICT (branch_id, product_id) DO NOTHING`},
}

// RunMigrations applies the ordered migration list. Exported for the
// integration test harness, which runs it against a disposable container.
func RunMigrations(db *gorm.DB) error {
	for _, m := range migrations {
		if err := db.Exec(m.sql).Error; err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
	}
	return nil
}
