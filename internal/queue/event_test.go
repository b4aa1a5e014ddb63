package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditLineCreated(t *testing.T) {
	ev := ReservationEvent{
		Type:       EventReservationCreated,
		Seat:       5,
		Name:       "Ana",
		CPF:        "123",
		Date:       "01/06/2025",
		Time:       "08:00",
		OccurredAt: "2025-06-01T08:00:00Z",
	}
	line := ev.AuditLine()
	assert.Contains(t, line, "Reservation created")
	assert.Contains(t, line, "seat=5")
	assert.Contains(t, line, `name="Ana"`)
	assert.Contains(t, line, "date=01/06/2025")
	assert.Contains(t, line, "time=08:00")
}

func TestAuditLineCancelled(t *testing.T) {
	ev := ReservationEvent{
		Type:       EventReservationCancelled,
		Seat:       5,
		Date:       "01/06/2025",
		Time:       "08:00",
		OccurredAt: "2025-06-01T09:00:00Z",
	}
	line := ev.AuditLine()
	assert.Contains(t, line, "Reservation cancelled")
	assert.Contains(t, line, "seat=5")
	assert.NotContains(t, line, "name=")
}
