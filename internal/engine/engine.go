// Package engine implements the reservation state engine: seat
// availability per (date, time) slot, the booking and cancellation
// transitions, and reservation search.  The durable store is the sole
// source of truth; occupancy maps are recomputed from it on every call
// rather than kept as long-lived state, so a map can never drift from
// the collection it was derived from.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// Store is the persistence boundary the engine depends on.  It is
// implemented by repository.ReservationRepo (MongoDB) and by
// repository.MemoryStore in tests.
type Store interface {
	Insert(ctx context.Context, r model.Reservation) error
	DeleteOne(ctx context.Context, seat int, date, departure string) (bool, error)
	FindBySlot(ctx context.Context, date, departure string) ([]model.Reservation, error)
	FindAll(ctx context.Context) ([]model.Reservation, error)
}

// Status classifies the outcome of a booking or cancellation attempt.
type Status string

const (
	StatusReserved        Status = "reserved"
	StatusInvalidSeat     Status = "invalid_seat"
	StatusSeatTaken       Status = "seat_taken"
	StatusCancelled       Status = "cancelled"
	StatusNothingToCancel Status = "nothing_to_cancel"
)

// Outcome is the user-facing result of a booking or cancellation.
// Validation failures are expected outcomes, not errors: only store
// failures travel through the error return of the engine methods.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the attempted transition was applied.
func (o Outcome) OK() bool {
	return o.Status == StatusReserved || o.Status == StatusCancelled
}

// Bus owns the fixed capacity and departure times of the single vehicle
// and applies the reservation rules against the injected store.  Valid
// seat numbers are 1..capacity.
type Bus struct {
	capacity int
	times    []string
	store    Store
}

// NewBus constructs the engine.  Capacity is fixed for the lifetime of
// the engine and must be positive.
func NewBus(capacity int, times []string, store Store) *Bus {
	if capacity < 1 {
		panic("engine: capacity must be positive")
	}
	if store == nil {
		panic("engine: nil store")
	}
	return &Bus{
		capacity: capacity,
		times:    append([]string(nil), times...),
		store:    store,
	}
}

// Capacity returns the number of seats on the bus.
func (b *Bus) Capacity() int { return b.capacity }

// DepartureTimes returns the configured departure time labels in order.
func (b *Bus) DepartureTimes() []string {
	return append([]string(nil), b.times...)
}

// LoadOccupancy rebuilds the seat map for one (date, time) slot from
// the store.  Index i holds the state of seat i+1.  Unknown time
// labels are accepted and simply never find matches.  Stored documents
// with a seat number outside [1, capacity] are skipped so corrupt data
// cannot break occupancy queries.
func (b *Bus) LoadOccupancy(ctx context.Context, date, departure string) ([]bool, error) {
	reservations, err := b.store.FindBySlot(ctx, date, departure)
	if err != nil {
		return nil, err
	}
	seats := make([]bool, b.capacity)
	for _, r := range reservations {
		if r.Seat < 1 || r.Seat > b.capacity {
			log.Printf("engine: skipping corrupt reservation seat=%d date=%s time=%s", r.Seat, r.Date, r.Time)
			continue
		}
		seats[r.Seat-1] = true
	}
	return seats, nil
}

// Reserve books one seat for one slot.  The slot's occupancy is
// re-read from the store immediately before writing: the map the
// caller last rendered may be stale if another client mutated the
// store in between.  The unique index backs this check up, so a lost
// race still comes back as StatusSeatTaken instead of a double
// booking.
func (b *Bus) Reserve(ctx context.Context, seat int, name, cpf, date, departure string) (Outcome, error) {
	if seat < 1 || seat > b.capacity {
		return Outcome{
			Status:  StatusInvalidSeat,
			Message: fmt.Sprintf("seat %d is outside the valid range 1..%d", seat, b.capacity),
		}, nil
	}
	seats, err := b.LoadOccupancy(ctx, date, departure)
	if err != nil {
		return Outcome{}, err
	}
	if seats[seat-1] {
		return Outcome{
			Status:  StatusSeatTaken,
			Message: fmt.Sprintf("seat %d is not available for %s on %s", seat, departure, date),
		}, nil
	}
	err = b.store.Insert(ctx, model.Reservation{
		Seat: seat,
		Name: name,
		CPF:  cpf,
		Date: date,
		Time: departure,
	})
	if errors.Is(err, repository.ErrDuplicateReservation) {
		return Outcome{
			Status:  StatusSeatTaken,
			Message: fmt.Sprintf("seat %d is not available for %s on %s", seat, departure, date),
		}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Status:  StatusReserved,
		Message: fmt.Sprintf("seat %d reserved for %s on %s", seat, departure, date),
	}, nil
}

// Cancel frees one seat for one slot.  Like Reserve it re-reads
// occupancy before acting; an out-of-range or unreserved seat yields
// StatusNothingToCancel without touching the store.
func (b *Bus) Cancel(ctx context.Context, seat int, date, departure string) (Outcome, error) {
	if seat < 1 || seat > b.capacity {
		return Outcome{
			Status:  StatusNothingToCancel,
			Message: fmt.Sprintf("seat %d is outside the valid range 1..%d", seat, b.capacity),
		}, nil
	}
	seats, err := b.LoadOccupancy(ctx, date, departure)
	if err != nil {
		return Outcome{}, err
	}
	if !seats[seat-1] {
		return Outcome{
			Status:  StatusNothingToCancel,
			Message: fmt.Sprintf("seat %d is not reserved for %s on %s", seat, departure, date),
		}, nil
	}
	deleted, err := b.store.DeleteOne(ctx, seat, date, departure)
	if err != nil {
		return Outcome{}, err
	}
	if !deleted {
		// Occupancy said reserved a moment ago but no document matched:
		// another client cancelled the same seat concurrently.
		log.Printf("engine: cancel matched no document for seat=%d date=%s time=%s", seat, date, departure)
	}
	return Outcome{
		Status:  StatusCancelled,
		Message: fmt.Sprintf("seat %d reservation cancelled for %s on %s", seat, departure, date),
	}, nil
}

// Search returns a snapshot of all reservations matching the filter.
// The whole collection is snapshotted and filtered in memory, in store
// order; the substring and case-folding semantics do not map onto the
// exact-equality queries the document format supports.  A fresh call
// re-snapshots.
func (b *Bus) Search(ctx context.Context, f model.SearchFilter) ([]model.Reservation, error) {
	all, err := b.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reservation, 0, len(all))
	for _, r := range all {
		if matches(f, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(f model.SearchFilter, r model.Reservation) bool {
	if f.Seat != nil && *f.Seat != r.Seat {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.CPF != "" && !strings.EqualFold(f.CPF, r.CPF) {
		return false
	}
	if f.Date != "" && !strings.EqualFold(f.Date, r.Date) {
		return false
	}
	if f.Time != "" && !strings.EqualFold(f.Time, r.Time) {
		return false
	}
	return true
}
