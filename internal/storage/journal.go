package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Arrival is one journal row: a hiker reached a numbered point of a hike.
type Arrival struct {
	Hike        string
	PointNumber int
	Name        string
	Lat         float64
	Lon         float64
	ReachedAt   time.Time
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Journal keeps a history of arrivals in Postgres. The tracker's set of
// attended points is not restored from it.
type Journal struct {
	db execer
}

func NewJournal(ctx context.Context, dsn string) (*Journal, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	log.Println("Connected to arrival journal database")
	return &Journal{db: pool}, pool, nil
}

const createArrivals = `CREATE TABLE IF NOT EXISTS arrivals (
	id           BIGSERIAL PRIMARY KEY,
	hike         TEXT NOT NULL,
	point_number INTEGER NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	lat          DOUBLE PRECISION NOT NULL,
	lon          DOUBLE PRECISION NOT NULL,
	reached_at   TIMESTAMPTZ NOT NULL
)`

func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, createArrivals); err != nil {
		return fmt.Errorf("create arrivals table: %w", err)
	}
	return nil
}

const insertArrival = `INSERT INTO arrivals (hike, point_number, name, lat, lon, reached_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (j *Journal) Record(ctx context.Context, a Arrival) error {
	if a.ReachedAt.IsZero() {
		a.ReachedAt = time.Now()
	}
	tag, err := j.db.Exec(ctx, insertArrival, a.Hike, a.PointNumber, a.Name, a.Lat, a.Lon, a.ReachedAt)
	if err != nil {
		return fmt.Errorf("insert arrival: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert arrival: %d rows affected", tag.RowsAffected())
	}
	return nil
}
