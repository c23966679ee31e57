package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, name, type, price_per_day, capacity, images, driver_contact, description, features`

// GetByID retrieves a vehicle and its booked dates.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	booked, err := r.bookedDates(ctx, `
		SELECT vehicle_id, booked_date FROM vehicle_booked_dates WHERE vehicle_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	v.BookedDates = booked[id]
	if v.BookedDates == nil {
		v.BookedDates = calendar.NewDateSet()
	}

	return v, nil
}

// GetAll retrieves every vehicle in catalog order.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY position, id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	booked, err := r.bookedDates(ctx, `SELECT vehicle_id, booked_date FROM vehicle_booked_dates`)
	if err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		v.BookedDates = booked[v.ID]
		if v.BookedDates == nil {
			v.BookedDates = calendar.NewDateSet()
		}
	}

	return vehicles, nil
}

// AddBookedDates inserts booked dates for a vehicle, ignoring ones already present.
func (r *VehicleRepository) AddBookedDates(ctx context.Context, id string, dates []calendar.Date) error {
	if len(dates) == 0 {
		return nil
	}

	raw := make([]string, len(dates))
	for i, d := range dates {
		raw[i] = d.String()
	}

	query := `
		INSERT INTO vehicle_booked_dates (vehicle_id, booked_date)
		SELECT $1, d FROM unnest($2::date[]) AS d
		ON CONFLICT DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query, id, pq.Array(raw))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return repository.ErrNotFound
		}
		return err
	}

	if _, err := result.RowsAffected(); err != nil {
		return err
	}

	return nil
}

// Insert stores a vehicle at the given catalog position with its booked
// dates. An existing vehicle with the same ID is left unchanged.
func (r *VehicleRepository) Insert(ctx context.Context, v *domain.Vehicle, position int) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.ExecContext(ctx, query,
		v.ID,
		v.Name,
		string(v.Type),
		int64(v.PricePerDay),
		v.Capacity,
		pq.Array(v.Images),
		v.DriverContact,
		v.Description,
		pq.Array(v.Features),
		position,
	)
	if err != nil {
		return err
	}

	return r.AddBookedDates(ctx, v.ID, v.BookedDates.Sorted())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Type,
		&v.PricePerDay,
		&v.Capacity,
		pq.Array(&v.Images),
		&v.DriverContact,
		&v.Description,
		pq.Array(&v.Features),
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) bookedDates(ctx context.Context, query string, args ...any) (map[string]calendar.DateSet, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]calendar.DateSet)
	for rows.Next() {
		var vehicleID string
		var bookedDate time.Time
		if err := rows.Scan(&vehicleID, &bookedDate); err != nil {
			return nil, err
		}
		if out[vehicleID] == nil {
			out[vehicleID] = calendar.NewDateSet()
		}
		out[vehicleID].Add(civil.DateOf(bookedDate))
	}

	return out, rows.Err()
}
