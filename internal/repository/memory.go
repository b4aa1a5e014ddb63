package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// MemoryStore is an in-memory reservation store with the same contract
// as ReservationRepo.  It backs tests and local experiments without a
// MongoDB instance and enforces the same (seat, date, time) uniqueness
// the real collection gets from its index.
type MemoryStore struct {
	mu   sync.Mutex
	docs []model.Reservation

	// Err, when set, is returned by every operation.  Tests use it to
	// simulate an unreachable store.
	Err error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Insert(_ context.Context, r model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, d := range m.docs {
		if d.Seat == r.Seat && d.Date == r.Date && d.Time == r.Time {
			return ErrDuplicateReservation
		}
	}
	m.docs = append(m.docs, r)
	return nil
}

func (m *MemoryStore) DeleteOne(_ context.Context, seat int, date, departure string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for i, d := range m.docs {
		if d.Seat == seat && d.Date == date && d.Time == departure {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) FindBySlot(_ context.Context, date, departure string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.Reservation, 0)
	for _, d := range m.docs {
		if d.Date == date && d.Time == departure {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindAll(_ context.Context) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.Reservation, len(m.docs))
	copy(out, m.docs)
	return out, nil
}
