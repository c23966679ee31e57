package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rental/internal/domain"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Schema creates the catalog tables when they do not exist yet.
const Schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	price_per_day  BIGINT NOT NULL CHECK (price_per_day >= 0),
	capacity       INT NOT NULL CHECK (capacity > 0),
	images         TEXT[] NOT NULL DEFAULT '{}',
	driver_contact TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	features       TEXT[] NOT NULL DEFAULT '{}',
	position       INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS vehicle_booked_dates (
	vehicle_id  TEXT NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
	booked_date DATE NOT NULL,
	PRIMARY KEY (vehicle_id, booked_date)
);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, q Querier) error {
	_, err := q.ExecContext(ctx, Schema)
	return err
}

// SeedCatalog inserts vehicles in a single transaction, keeping their order.
func SeedCatalog(ctx context.Context, db *sql.DB, vehicles []*domain.Vehicle) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	repo := NewVehicleRepositoryWithTx(tx)
	for i, v := range vehicles {
		if err := repo.Insert(ctx, v, i); err != nil {
			return fmt.Errorf("seed vehicle %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}
