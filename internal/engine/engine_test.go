package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

var departureTimes = []string{"08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00"}

func newTestBus(t *testing.T) (*Bus, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewBus(20, departureTimes, store), store
}

func TestLoadOccupancyEmptyStore(t *testing.T) {
	bus, _ := newTestBus(t)
	seats, err := bus.LoadOccupancy(context.Background(), "01/06/2025", "08:00")
	require.NoError(t, err)
	require.Len(t, seats, 20)
	for i, occupied := range seats {
		assert.Falsef(t, occupied, "seat %d should be free on an empty store", i+1)
	}
}

func TestReserveThenLoad(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx := context.Background()

	out, err := bus.Reserve(ctx, 5, "Ana", "123", "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusReserved, out.Status)
	assert.True(t, out.OK())
	assert.Contains(t, out.Message, "5")
	assert.Contains(t, out.Message, "08:00")

	seats, err := bus.LoadOccupancy(ctx, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.True(t, seats[4])
	for i, occupied := range seats {
		if i != 4 {
			assert.Falsef(t, occupied, "seat %d should still be free", i+1)
		}
	}
}

func TestReserveTakenSeat(t *testing.T) {
	bus, store := newTestBus(t)
	ctx := context.Background()

	_, err := bus.Reserve(ctx, 5, "Ana", "123", "01/06/2025", "08:00")
	require.NoError(t, err)

	out, err := bus.Reserve(ctx, 5, "Bia", "456", "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusSeatTaken, out.Status)
	assert.False(t, out.OK())
	assert.Contains(t, out.Message, "08:00")

	// No second record may exist for the slot.
	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Ana", all[0].Name)
}

func TestReserveInvalidSeat(t *testing.T) {
	bus, store := newTestBus(t)
	ctx := context.Background()

	for _, seat := range []int{0, -3, 21} {
		out, err := bus.Reserve(ctx, seat, "Ana", "123", "01/06/2025", "08:00")
		require.NoError(t, err)
		assert.Equalf(t, StatusInvalidSeat, out.Status, "seat %d", seat)
	}

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected bookings must not mutate the store")
}

func TestCancelRoundTrip(t *testing.T) {
	bus, store := newTestBus(t)
	ctx := context.Background()

	_, err := bus.Reserve(ctx, 5, "Ana", "123", "01/06/2025", "08:00")
	require.NoError(t, err)

	out, err := bus.Cancel(ctx, 5, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.Status)
	assert.True(t, out.OK())

	seats, err := bus.LoadOccupancy(ctx, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.False(t, seats[4])

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCancelNothingToCancel(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx := context.Background()

	out, err := bus.Cancel(ctx, 5, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusNothingToCancel, out.Status)

	out, err = bus.Cancel(ctx, 0, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusNothingToCancel, out.Status)

	out, err = bus.Cancel(ctx, 99, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusNothingToCancel, out.Status)
}

func TestSlotIndependence(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx := context.Background()

	_, err := bus.Reserve(ctx, 3, "Ana", "123", "01/06/2025", "08:00")
	require.NoError(t, err)

	sameDayOtherTime, err := bus.LoadOccupancy(ctx, "01/06/2025", "10:00")
	require.NoError(t, err)
	assert.False(t, sameDayOtherTime[2])

	otherDaySameTime, err := bus.LoadOccupancy(ctx, "02/06/2025", "08:00")
	require.NoError(t, err)
	assert.False(t, otherDaySameTime[2])

	original, err := bus.LoadOccupancy(ctx, "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.True(t, original[2])
}

func TestLoadOccupancyIdempotent(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx := context.Background()

	_, err := bus.Reserve(ctx, 7, "Ana", "123", "01/06/2025", "12:00")
	require.NoError(t, err)
	_, err = bus.Reserve(ctx, 12, "Bia", "456", "01/06/2025", "12:00")
	require.NoError(t, err)

	first, err := bus.LoadOccupancy(ctx, "01/06/2025", "12:00")
	require.NoError(t, err)
	second, err := bus.LoadOccupancy(ctx, "01/06/2025", "12:00")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCorruptRecordIgnored(t *testing.T) {
	bus, store := newTestBus(t)
	ctx := context.Background()

	// Written behind the engine's back, seat outside [1, capacity].
	require.NoError(t, store.Insert(ctx, model.Reservation{
		Seat: 21, Name: "Ghost", CPF: "000", Date: "01/06/2025", Time: "08:00",
	}))

	seats, err := bus.LoadOccupancy(ctx, "01/06/2025", "08:00")
	require.NoError(t, err)
	require.Len(t, seats, 20)
	for i, occupied := range seats {
		assert.Falsef(t, occupied, "seat %d must not be marked by a corrupt record", i+1)
	}
}

// staleStore reports every seat as free but rejects inserts with a
// duplicate-key error, reproducing a lost race between the occupancy
// check and the write.
type staleStore struct {
	*repository.MemoryStore
}

func (s *staleStore) FindBySlot(context.Context, string, string) ([]model.Reservation, error) {
	return nil, nil
}

func (s *staleStore) Insert(context.Context, model.Reservation) error {
	return repository.ErrDuplicateReservation
}

func TestReserveLostRaceMapsToSeatTaken(t *testing.T) {
	bus := NewBus(20, departureTimes, &staleStore{repository.NewMemoryStore()})

	out, err := bus.Reserve(context.Background(), 5, "Ana", "123", "01/06/2025", "08:00")
	require.NoError(t, err)
	assert.Equal(t, StatusSeatTaken, out.Status)
}

func TestSearch(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx := context.Background()

	_, err := bus.Reserve(ctx, 5, "Ana", "123", "01/06/2025", "08:00")
	require.NoError(t, err)
	_, err = bus.Reserve(ctx, 6, "Bruno", "456", "01/06/2025", "08:00")
	require.NoError(t, err)
	_, err = bus.Reserve(ctx, 5, "Mariana", "789", "02/06/2025", "10:00")
	require.NoError(t, err)

	// Case-insensitive substring on the name.
	got, err := bus.Search(ctx, model.SearchFilter{Name: "an"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "Mariana", got[1].Name)

	// Exact seat match.
	seat := 6
	got, err = bus.Search(ctx, model.SearchFilter{Seat: &seat})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bruno", got[0].Name)

	// No match is an empty sequence, not an error.
	seat = 7
	got, err = bus.Search(ctx, model.SearchFilter{Seat: &seat})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Criteria AND together.
	seat = 5
	got, err = bus.Search(ctx, model.SearchFilter{Seat: &seat, Date: "01/06/2025"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].Name)

	// CPF and time compare case-insensitively but exactly.
	got, err = bus.Search(ctx, model.SearchFilter{CPF: "123"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	got, err = bus.Search(ctx, model.SearchFilter{CPF: "12"})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Empty filter returns everything in store order.
	got, err = bus.Search(ctx, model.SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestExclusivityAcrossMixedOperations(t *testing.T) {
	bus, store := newTestBus(t)
	ctx := context.Background()

	// A burst of bookings and cancellations must never leave two
	// records for the same (seat, date, time).
	_, err := bus.Reserve(ctx, 4, "Ana", "1", "01/06/2025", "08:00")
	require.NoError(t, err)
	_, err = bus.Reserve(ctx, 4, "Bia", "2", "01/06/2025", "08:00")
	require.NoError(t, err)
	_, err = bus.Cancel(ctx, 4, "01/06/2025", "08:00")
	require.NoError(t, err)
	_, err = bus.Reserve(ctx, 4, "Caio", "3", "01/06/2025", "08:00")
	require.NoError(t, err)
	_, err = bus.Reserve(ctx, 4, "Duda", "4", "01/06/2025", "08:00")
	require.NoError(t, err)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	count := 0
	for _, r := range all {
		if r.Seat == 4 && r.Date == "01/06/2025" && r.Time == "08:00" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDepartureTimesCopied(t *testing.T) {
	times := []string{"08:00", "10:00"}
	bus := NewBus(10, times, repository.NewMemoryStore())

	got := bus.DepartureTimes()
	require.Equal(t, times, got)
	got[0] = "mutated"
	assert.Equal(t, "08:00", bus.DepartureTimes()[0])
}
