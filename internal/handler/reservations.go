package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/service"
)

type ReservationHandler struct {
	base
	reservations *service.ReservationService
}

func NewReservationHandler(reservations *service.ReservationService, timeout time.Duration) *ReservationHandler {
	return &ReservationHandler{base: newBase(timeout), reservations: reservations}
}

func (h *ReservationHandler) Create(c echo.Context) error {
	var in service.ReservationInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.reservations.Create(ctx, actor(c), in.FlightID, in.SeatID))
}

func (h *ReservationHandler) ListMine(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.reservations.ListMine(ctx, actor(c)))
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.reservations.Cancel(ctx, actor(c), id))
}
