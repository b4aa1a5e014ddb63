package model

// Reservation is the persisted document binding one seat to one
// customer for one departure slot.  The bson keys mirror the legacy
// collection layout (reserva_onibus_db.reservas) written by the desktop
// application this service replaces; existing documents are read as-is,
// so the keys must not change.
//
// Fields:
//  Seat – 1-based seat number on the bus.
//  Name – display name of the customer.
//  CPF  – customer document number, treated as an opaque string.
//  Date – calendar date label, compared by exact equality only.
//  Time – departure time label.
type Reservation struct {
	Seat int    `bson:"lugar" json:"lugar"`
	Name string `bson:"nome" json:"nome"`
	CPF  string `bson:"cpf" json:"cpf"`
	Date string `bson:"dia" json:"dia"`
	Time string `bson:"horario" json:"horario"`
}

// SearchFilter restricts a reservation search.  Zero values mean the
// criterion is not applied; set criteria are combined with AND.
// Seat matches exactly, Name is a case-insensitive substring match and
// the remaining fields are case-insensitive exact matches.
type SearchFilter struct {
	Seat *int
	Name string
	CPF  string
	Date string
	Time string
}
