// Package store keeps the durable records written after a successful booking.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/brizzai/resy-client/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown id
var ErrNotFound = errors.New("reservation record not found")

// ReservationStore persists booking records
type ReservationStore interface {
	// Put assigns an id and creation time when missing and stores the record, replacing any
	// record with the same id
	Put(ctx context.Context, rec *models.ReservationRecord) error
	Get(ctx context.Context, id string) (*models.ReservationRecord, error)
	// ListByUser returns the user's records, newest first
	ListByUser(ctx context.Context, userID string) ([]models.ReservationRecord, error)
	Close()
}

func prepare(rec *models.ReservationRecord, now time.Time) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
	if rec.Status == "" {
		rec.Status = models.StatusConfirmed
	}
}

// MemoryStore is used when no database is configured
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.ReservationRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.ReservationRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, rec *models.ReservationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepare(rec, s.now())
	s.records[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.ReservationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]models.ReservationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ReservationRecord{}
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Close() {}
