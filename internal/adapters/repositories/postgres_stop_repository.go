package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/ports"

	"github.com/jmoiron/sqlx"
)

// planStopRow is one plan_trips row joined with its trip.
type planStopRow struct {
	ID             string          `db:"id"`
	Sequence       int             `db:"sequence"`
	CustomLocation sql.NullString  `db:"custom_location"`
	TripName       sql.NullString  `db:"trip_name"`
	Lat            sql.NullFloat64 `db:"lat"`
	Lng            sql.NullFloat64 `db:"lng"`
	Address        sql.NullString  `db:"adresse"`
}

// Postgres-backed implementation of the StopRepository port.
type PostgresStopRepository struct{ DB *sqlx.DB }

func NewPostgresStopRepository(db *sql.DB) *PostgresStopRepository {
	return &PostgresStopRepository{DB: sqlx.NewDb(db, "pgx")}
}

func (p *PostgresStopRepository) ListPlanStops(ctx context.Context, planID string) ([]domain.Stop, error) {
	if p.DB == nil {
		return nil, errors.New("postgres stop repository: DB is nil")
	}

	query := `
	SELECT
		pt.id,
		pt.sequence,
		pt.custom_location,
		a.name AS trip_name,
		a.lat,
		a.lng,
		a.adresse
	FROM plan_trips pt
	LEFT JOIN ausfluege a ON a.id = pt.trip_id
	WHERE pt.plan_id = $1
	ORDER BY pt.sequence, pt.id;
	`

	var rows []planStopRow
	if err := p.DB.SelectContext(ctx, &rows, query, planID); err != nil {
		return nil, fmt.Errorf("list plan stops: query plan_trips table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("list plan stops %q: %w", planID, ports.ErrPlanNotFound)
	}

	stops := make([]domain.Stop, 0, len(rows))
	for _, r := range rows {
		stops = append(stops, r.toStop())
	}
	return stops, nil
}

// toStop prefers the linked trip's data; a free-text custom location
// covers stops without a trip or with a trip lacking an address.
func (r planStopRow) toStop() domain.Stop {
	custom := strings.TrimSpace(r.CustomLocation.String)

	s := domain.Stop{
		ID:          r.ID,
		Sequence:    r.Sequence,
		DisplayName: strings.TrimSpace(r.TripName.String),
		Address:     strings.TrimSpace(r.Address.String),
	}
	if s.DisplayName == "" {
		s.DisplayName = custom
	}
	if s.Address == "" {
		s.Address = custom
	}
	if r.Lat.Valid && r.Lng.Valid {
		s.RawCoordinate = &domain.Coordinates{Lat: r.Lat.Float64, Lng: r.Lng.Float64}
	}
	return s
}
