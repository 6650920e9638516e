package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

const (
	msgSeatOccupied   = "seat already occupied"
	msgNoReservations = "you have no active reservations"
	publishTimeout    = 3 * time.Second
)

// ReservationInput is the request body of a booking.
type ReservationInput struct {
	FlightID uint64 `json:"flight_id" validate:"required,gt=0"`
	SeatID   uint64 `json:"seat_id" validate:"required,gt=0"`
}

// rejected carries a failure Result out of a transaction so it rolls back.
type rejected struct{ res Result }

func (r rejected) Error() string { return r.res.Message }

type ReservationService struct {
	db           *sql.DB
	reservations *repository.ReservationRepo
	flights      *repository.FlightRepo
	seats        *repository.SeatRepo
	profiles     *repository.ProfileRepo
	publisher    queue.Publisher
	log          logger.Logger
}

func NewReservationService(
	reservations *repository.ReservationRepo,
	flights *repository.FlightRepo,
	seats *repository.SeatRepo,
	profiles *repository.ProfileRepo,
	publisher queue.Publisher,
	log logger.Logger,
) *ReservationService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &ReservationService{
		db:           reservations.DB(),
		reservations: reservations,
		flights:      flights,
		seats:        seats,
		profiles:     profiles,
		publisher:    publisher,
		log:          log,
	}
}

// Create books seatID on flightID for the acting client. The lookups, the
// occupancy check and the insert share one transaction; the unique index on
// active (seat_id, flight_id) decides races between concurrent bookings.
func (s *ReservationService) Create(ctx context.Context, actor model.Identity, flightID, seatID uint64) Result {
	if res, allowed := authorize(actor, policy.ReservationCreate, ""); !allowed {
		return res
	}
	if flightID == 0 {
		return invalidField("flight_id", "must be a positive id")
	}
	if seatID == 0 {
		return invalidField("seat_id", "must be a positive id")
	}

	var rsv model.Reservation
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		flight, err := s.flights.ActiveByID(ctx, tx, flightID)
		if errors.Is(err, repository.ErrFlightNotFound) {
			return rejected{notFound(fmt.Sprintf("flight %d does not exist", flightID))}
		}
		if err != nil {
			return err
		}

		seat, err := s.seats.ActiveByID(ctx, tx, seatID)
		if errors.Is(err, repository.ErrSeatNotFound) || (err == nil && seat.AirplaneID != flight.AirplaneID) {
			return rejected{notFound(fmt.Sprintf("seat %d does not exist", seatID))}
		}
		if err != nil {
			return err
		}

		taken, err := s.reservations.SeatTakenTx(ctx, tx, seatID, flightID)
		if err != nil {
			return err
		}
		if taken {
			return rejected{conflict(msgSeatOccupied)}
		}

		client, err := s.profiles.ClientByUserID(ctx, tx, actor.UserID)
		if errors.Is(err, repository.ErrClientNotFound) {
			return rejected{notFound("client profile not found for this account")}
		}
		if err != nil {
			return err
		}

		rsv = model.Reservation{SeatID: seatID, FlightID: flightID, ClientID: client.ID}
		if err := s.reservations.CreateTx(ctx, tx, &rsv); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return rejected{conflict(msgSeatOccupied)}
			}
			return err
		}
		return nil
	})

	var rej rejected
	switch {
	case errors.As(err, &rej):
		return rej.res
	case errors.Is(err, repository.ErrDuplicate):
		// commit-time constraint failure
		return conflict(msgSeatOccupied)
	case err != nil:
		return internal(ctx, s.log, "reservations.create", err)
	}

	s.log.Info("reservation created", "reservation_id", rsv.ID, "flight_id", flightID, "seat_id", seatID, "client_id", rsv.ClientID)
	s.publish(ctx, queue.NewReservationEvent(queue.ReservationCreated, rsv.ID, rsv.ClientID, flightID, seatID, actor.UserID))
	return created("reservation created", rsv)
}

// ListMine returns the caller's active reservations. An empty list is a
// NotFound failure rather than an empty success.
func (s *ReservationService) ListMine(ctx context.Context, actor model.Identity) Result {
	if res, allowed := authorize(actor, policy.ReservationListOwn, ""); !allowed {
		return res
	}
	client, err := s.profiles.ClientByUserID(ctx, s.db, actor.UserID)
	if errors.Is(err, repository.ErrClientNotFound) {
		return notFound("client profile not found for this account")
	}
	if err != nil {
		return internal(ctx, s.log, "reservations.list", err)
	}
	list, err := s.reservations.ListByClient(ctx, client.ID)
	if err != nil {
		return internal(ctx, s.log, "reservations.list", err)
	}
	if len(list) == 0 {
		return notFound(msgNoReservations)
	}
	return ok("reservations", list)
}

// Cancel releases a reservation. Clients may only cancel their own; staff
// may cancel any. Cancelling an inactive reservation is a no-op success.
func (s *ReservationService) Cancel(ctx context.Context, actor model.Identity, id uint64) Result {
	if res, allowed := authorize(actor, policy.ReservationCancel, ""); !allowed {
		return res
	}
	rsv, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return notFound(fmt.Sprintf("reservation %d does not exist", id))
	}
	if err != nil {
		return internal(ctx, s.log, "reservations.cancel", err)
	}

	if actor.Role == model.RoleCliente {
		client, err := s.profiles.ClientByUserID(ctx, s.db, actor.UserID)
		if err != nil && !errors.Is(err, repository.ErrClientNotFound) {
			return internal(ctx, s.log, "reservations.cancel", err)
		}
		if err != nil || client.ID != rsv.ClientID {
			return denied("reservation belongs to another client")
		}
	}

	if rsv.Status == model.StatusInactive {
		return ok("reservation already cancelled", nil)
	}
	if err := s.reservations.Cancel(ctx, id); err != nil {
		return internal(ctx, s.log, "reservations.cancel", err)
	}
	s.log.Info("reservation cancelled", "reservation_id", id, "by", actor.UserID)
	s.publish(ctx, queue.NewReservationEvent(queue.ReservationCancelled, rsv.ID, rsv.ClientID, rsv.FlightID, rsv.SeatID, actor.UserID))
	return ok("reservation cancelled", nil)
}

// publish never fails the request; the reservation is already committed.
func (s *ReservationService) publish(ctx context.Context, ev queue.ReservationEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, ev); err != nil {
		s.log.Warn("publish reservation event failed", "type", ev.Type, "reservation_id", ev.ReservationID, "error", err)
	}
}
