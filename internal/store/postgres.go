package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/resy-client/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS reservations (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	venue_id    BIGINT NOT NULL,
	date        TEXT NOT NULL,
	party_size  INTEGER NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`

// upsertRecord overwrites an existing id, matching MemoryStore.Put
const upsertRecord = `INSERT INTO reservations (id, user_id, venue_id, date, party_size, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		user_id = EXCLUDED.user_id,
		venue_id = EXCLUDED.venue_id,
		date = EXCLUDED.date,
		party_size = EXCLUDED.party_size,
		status = EXCLUDED.status,
		created_at = EXCLUDED.created_at`

// PostgresStore keeps booking records in the reservations table
type PostgresStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// OpenPostgres connects to dsn and creates the reservations table when missing
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create reservations table: %w", err)
	}
	return &PostgresStore{db: pool, now: time.Now}, nil
}

// Put inserts rec or replaces the record with the same id
func (s *PostgresStore) Put(ctx context.Context, rec *models.ReservationRecord) error {
	prepare(rec, s.now())
	_, err := s.db.Exec(ctx, upsertRecord,
		rec.ID, rec.UserID, rec.VenueID, rec.Date, rec.PartySize, string(rec.Status), rec.CreatedAt)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.ReservationRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, user_id, venue_id, date, party_size, status, created_at
		 FROM reservations WHERE id=$1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]models.ReservationRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, venue_id, date, party_size, status, created_at
		 FROM reservations WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ReservationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func scanRecord(row pgx.Row) (*models.ReservationRecord, error) {
	var (
		rec    models.ReservationRecord
		status string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.VenueID, &rec.Date, &rec.PartySize, &status, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Status = models.ReservationStatus(status)
	return &rec, nil
}
