package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
)

// ReservationHandler adapts HTTP requests onto the reservation engine.
// It owns no state of its own: every request goes straight to the
// engine and the response mirrors the engine outcome.  Publish, when
// set, is invoked fire-and-forget after successful mutations.
type ReservationHandler struct {
	Engine  *engine.Bus
	Cache   *middleware.OccupancyCache
	Publish func(ctx context.Context, ev queue.ReservationEvent) error
}

// NewReservationHandler constructs the handler.  The engine must be
// non-nil; the cache may be nil when Redis is not configured.
func NewReservationHandler(eng *engine.Bus, cache *middleware.OccupancyCache) *ReservationHandler {
	if eng == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: eng, Cache: cache}
}

// GetOccupancy handles GET /v1/occupancy.  Both date and time query
// parameters are required; unknown time labels are allowed and simply
// yield an all-free map, matching the engine contract.
func (h *ReservationHandler) GetOccupancy(c echo.Context) error {
	date := c.QueryParam("date")
	departure := c.QueryParam("time")
	if date == "" || departure == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
	}
	seats, err := h.Engine.LoadOccupancy(c.Request().Context(), date, departure)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":     date,
		"time":     departure,
		"capacity": h.Engine.Capacity(),
		"seats":    seats,
	})
}

type reserveRequest struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
	CPF  string `json:"cpf"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// Reserve handles POST /v1/reservations.  It returns 201 on success,
// 400 for an out-of-range seat, 409 when the seat is already taken and
// 503 when the store cannot be reached.  Callers must treat the three
// rejection shapes as distinct outcomes.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	var body reserveRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.Date == "" || body.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, date and time are required"})
	}
	ctx := c.Request().Context()
	out, err := h.Engine.Reserve(ctx, body.Seat, body.Name, body.CPF, body.Date, body.Time)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	switch out.Status {
	case engine.StatusInvalidSeat:
		return c.JSON(http.StatusBadRequest, out)
	case engine.StatusSeatTaken:
		return c.JSON(http.StatusConflict, out)
	}
	h.Cache.Invalidate(ctx, body.Date, body.Time)
	h.publish(queue.ReservationEvent{
		Type:       queue.EventReservationCreated,
		Seat:       body.Seat,
		Name:       body.Name,
		CPF:        body.CPF,
		Date:       body.Date,
		Time:       body.Time,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, out)
}

// Cancel handles DELETE /v1/reservations.  Seat, date and time arrive
// as query parameters.  It returns 200 on success, 404 when there is
// nothing to cancel for the key, 400 on malformed input and 503 when
// the store cannot be reached.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	seat, err := strconv.Atoi(c.QueryParam("seat"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat"})
	}
	date := c.QueryParam("date")
	departure := c.QueryParam("time")
	if date == "" || departure == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
	}
	ctx := c.Request().Context()
	out, err := h.Engine.Cancel(ctx, seat, date, departure)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	if out.Status == engine.StatusNothingToCancel {
		return c.JSON(http.StatusNotFound, out)
	}
	h.Cache.Invalidate(ctx, date, departure)
	h.publish(queue.ReservationEvent{
		Type:       queue.EventReservationCancelled,
		Seat:       seat,
		Date:       date,
		Time:       departure,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, out)
}

// Search handles GET /v1/reservations.  All query parameters are
// optional and AND-combined: seat (exact), name (case-insensitive
// substring), cpf, date and time (case-insensitive exact).  The
// response lists reservations in their stored document shape.
func (h *ReservationHandler) Search(c echo.Context) error {
	var f model.SearchFilter
	if s := c.QueryParam("seat"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat"})
		}
		f.Seat = &n
	}
	f.Name = c.QueryParam("name")
	f.CPF = c.QueryParam("cpf")
	f.Date = c.QueryParam("date")
	f.Time = c.QueryParam("time")

	reservations, err := h.Engine.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) publish(ev queue.ReservationEvent) {
	if h.Publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("handler: publish %s failed: %v", ev.Type, err)
		}
	}()
}
