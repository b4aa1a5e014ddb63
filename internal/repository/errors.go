// Package repository implements the durable-store boundary of the
// reservation engine.  The sentinel values defined here allow higher
// layers to distinguish between failure scenarios without inspecting
// driver errors: a duplicate key means a seat race was lost, while a
// store failure means the database itself could not be reached.
package repository

import "errors"

// ErrDuplicateReservation is returned by Insert when the store already
// holds a reservation for the same (seat, date, time) key.  The unique
// index raises it, so it also fires when two clients race for the same
// seat and the engine-level occupancy check was not enough.
var ErrDuplicateReservation = errors.New("duplicate reservation")

// ErrStoreUnavailable wraps connectivity failures during normal
// operation.  Handlers should translate it into an HTTP 503 response;
// it is never fatal once the service has started.
var ErrStoreUnavailable = errors.New("store unavailable")
