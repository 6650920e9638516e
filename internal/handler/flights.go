package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/service"
)

// FlightHandler serves the public catalogue and staff flight management.
type FlightHandler struct {
	base
	flights *service.FlightService
}

func NewFlightHandler(flights *service.FlightService, timeout time.Duration) *FlightHandler {
	return &FlightHandler{base: newBase(timeout), flights: flights}
}

// List accepts optional ?destination_id= and ?date=YYYY-MM-DD filters.
func (h *FlightHandler) List(c echo.Context) error {
	var f repository.FlightFilter
	if raw := c.QueryParam("destination_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return badRequest(c, "destination_id", "must be a positive integer")
		}
		f.DestinationID = id
	}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return badRequest(c, "date", "must be a date in YYYY-MM-DD format")
		}
		f.Date = d
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.flights.List(ctx, f))
}

func (h *FlightHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.flights.Get(ctx, id))
}

func (h *FlightHandler) Seats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.flights.Seats(ctx, id))
}

func (h *FlightHandler) Create(c echo.Context) error {
	var in service.FlightInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.flights.Create(ctx, actor(c), in))
}

func (h *FlightHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	var patch service.FlightPatch
	if ok, err := bind(c, &patch); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.flights.Update(ctx, actor(c), id, patch))
}

func (h *FlightHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.flights.Delete(ctx, actor(c), id))
}
