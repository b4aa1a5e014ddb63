// Package queue defines the payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

import "fmt"

// Event types carried in ReservationEvent.Type.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a booking or cancellation has
// been applied to the store.  It carries enough for downstream
// consumers to log or notify without querying the database.  Name and
// CPF are only set on created events.
type ReservationEvent struct {
	Type       string `json:"type"`
	Seat       int    `json:"seat"`
	Name       string `json:"name,omitempty"`
	CPF        string `json:"cpf,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	OccurredAt string `json:"occurred_at"`
}

// AuditLine renders the single-line format the consumer appends to
// logs/reservations.log.
func (ev ReservationEvent) AuditLine() string {
	if ev.Type == EventReservationCancelled {
		return fmt.Sprintf("[%s] Reservation cancelled | seat=%d | date=%s | time=%s",
			ev.OccurredAt, ev.Seat, ev.Date, ev.Time)
	}
	return fmt.Sprintf("[%s] Reservation created | seat=%d | name=%q | cpf=%s | date=%s | time=%s",
		ev.OccurredAt, ev.Seat, ev.Name, ev.CPF, ev.Date, ev.Time)
}
