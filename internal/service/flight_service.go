package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/validation"
)

const msgScheduleTaken = "a flight with this date, destination and airplane already exists"

type FlightInput struct {
	Date          string `json:"date" validate:"required,ymd"`
	DepartureTime string `json:"departure_time" validate:"required,clock"`
	ArrivalTime   string `json:"arrival_time" validate:"required,clock"`
	DestinationID uint64 `json:"destination_id" validate:"required,gt=0"`
	AirplaneID    uint64 `json:"airplane_id" validate:"required,gt=0"`
}

// FlightPatch holds the optional fields of a flight update.
type FlightPatch struct {
	Date          *string `json:"date" validate:"omitnil,ymd"`
	DepartureTime *string `json:"departure_time" validate:"omitnil,clock"`
	ArrivalTime   *string `json:"arrival_time" validate:"omitnil,clock"`
	DestinationID *uint64 `json:"destination_id" validate:"omitnil,gt=0"`
	AirplaneID    *uint64 `json:"airplane_id" validate:"omitnil,gt=0"`
}

func (p FlightPatch) empty() bool {
	return p.Date == nil && p.DepartureTime == nil && p.ArrivalTime == nil &&
		p.DestinationID == nil && p.AirplaneID == nil
}

type FlightService struct {
	flights   *repository.FlightRepo
	airplanes *repository.AirplaneRepo
	seats     *repository.SeatRepo
	validate  *validator.Validate
	log       logger.Logger
}

func NewFlightService(flights *repository.FlightRepo, airplanes *repository.AirplaneRepo, seats *repository.SeatRepo, log logger.Logger) *FlightService {
	return &FlightService{flights: flights, airplanes: airplanes, seats: seats, validate: validation.New(), log: log}
}

// checkRefs verifies that the destination and airplane exist and are active.
func (s *FlightService) checkRefs(ctx context.Context, destinationID, airplaneID uint64) (*Result, error) {
	d, err := s.airplanes.DestinationByID(ctx, destinationID)
	if err != nil && !errors.Is(err, repository.ErrDestinationNotFound) {
		return nil, err
	}
	if err != nil || d.Status != model.StatusActive {
		r := notFound(fmt.Sprintf("destination %d does not exist", destinationID))
		return &r, nil
	}
	a, err := s.airplanes.GetByID(ctx, airplaneID)
	if err != nil && !errors.Is(err, repository.ErrAirplaneNotFound) {
		return nil, err
	}
	if err != nil || a.Status != model.StatusActive {
		r := notFound(fmt.Sprintf("airplane %d does not exist", airplaneID))
		return &r, nil
	}
	return nil, nil
}

func (s *FlightService) Create(ctx context.Context, actor model.Identity, in FlightInput) Result {
	if res, allowed := authorize(actor, policy.FlightCreate, ""); !allowed {
		return res
	}
	if err := s.validate.Struct(in); err != nil {
		return invalid(validation.Fields(err))
	}
	// formats were checked by the validator
	date, _ := model.ParseDate(in.Date)
	dep, _ := model.ParseClock(in.DepartureTime)
	arr, _ := model.ParseClock(in.ArrivalTime)

	if res, err := s.checkRefs(ctx, in.DestinationID, in.AirplaneID); err != nil {
		return internal(ctx, s.log, "flights.create", err)
	} else if res != nil {
		return *res
	}
	taken, err := s.flights.ScheduleTaken(ctx, date, in.DestinationID, in.AirplaneID, 0)
	if err != nil {
		return internal(ctx, s.log, "flights.create", err)
	}
	if taken {
		return conflict(msgScheduleTaken)
	}
	f := &model.Flight{
		Date:          date,
		DepartureTime: dep,
		ArrivalTime:   arr,
		DestinationID: in.DestinationID,
		AirplaneID:    in.AirplaneID,
	}
	if err := s.flights.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict(msgScheduleTaken)
		}
		return internal(ctx, s.log, "flights.create", err)
	}
	s.log.Info("flight created", "flight_id", f.ID, "by", actor.UserID)
	return created("flight created", f)
}

// List returns active flights. It is public.
func (s *FlightService) List(ctx context.Context, f repository.FlightFilter) Result {
	flights, err := s.flights.ListActive(ctx, f)
	if err != nil {
		return internal(ctx, s.log, "flights.list", err)
	}
	if flights == nil {
		flights = []model.Flight{}
	}
	return ok("flights", flights)
}

func (s *FlightService) Get(ctx context.Context, id uint64) Result {
	f, err := s.flights.GetByID(ctx, id)
	if errors.Is(err, repository.ErrFlightNotFound) || (err == nil && f.Status != model.StatusActive) {
		return notFound(fmt.Sprintf("flight %d does not exist", id))
	}
	if err != nil {
		return internal(ctx, s.log, "flights.get", err)
	}
	return ok("flight", f)
}

// Update applies the supplied fields of patch to an active flight.
func (s *FlightService) Update(ctx context.Context, actor model.Identity, id uint64, patch FlightPatch) Result {
	if res, allowed := authorize(actor, policy.FlightUpdate, ""); !allowed {
		return res
	}
	if patch.empty() {
		return invalidField("_", "no fields to update")
	}
	if err := s.validate.Struct(patch); err != nil {
		return invalid(validation.Fields(err))
	}
	f, err := s.flights.GetByID(ctx, id)
	if errors.Is(err, repository.ErrFlightNotFound) || (err == nil && f.Status != model.StatusActive) {
		return notFound(fmt.Sprintf("flight %d does not exist", id))
	}
	if err != nil {
		return internal(ctx, s.log, "flights.update", err)
	}

	set := map[string]any{}
	next := *f
	if patch.Date != nil {
		next.Date, _ = model.ParseDate(*patch.Date)
		set["flight_date"] = next.Date
	}
	if patch.DepartureTime != nil {
		next.DepartureTime, _ = model.ParseClock(*patch.DepartureTime)
		set["departure_time"] = next.DepartureTime
	}
	if patch.ArrivalTime != nil {
		next.ArrivalTime, _ = model.ParseClock(*patch.ArrivalTime)
		set["arrival_time"] = next.ArrivalTime
	}
	if patch.DestinationID != nil {
		next.DestinationID = *patch.DestinationID
		set["destination_id"] = next.DestinationID
	}
	if patch.AirplaneID != nil {
		next.AirplaneID = *patch.AirplaneID
		set["airplane_id"] = next.AirplaneID
	}

	if next.DestinationID != f.DestinationID || next.AirplaneID != f.AirplaneID {
		if res, err := s.checkRefs(ctx, next.DestinationID, next.AirplaneID); err != nil {
			return internal(ctx, s.log, "flights.update", err)
		} else if res != nil {
			return *res
		}
	}
	taken, err := s.flights.ScheduleTaken(ctx, next.Date, next.DestinationID, next.AirplaneID, id)
	if err != nil {
		return internal(ctx, s.log, "flights.update", err)
	}
	if taken {
		return conflict(msgScheduleTaken)
	}
	if err := s.flights.Update(ctx, id, set); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict(msgScheduleTaken)
		}
		return internal(ctx, s.log, "flights.update", err)
	}
	return ok("flight updated", next)
}

// Delete soft-deletes a flight; an inactive flight is left unchanged.
func (s *FlightService) Delete(ctx context.Context, actor model.Identity, id uint64) Result {
	if res, allowed := authorize(actor, policy.FlightDelete, ""); !allowed {
		return res
	}
	f, err := s.flights.GetByID(ctx, id)
	if errors.Is(err, repository.ErrFlightNotFound) {
		return notFound(fmt.Sprintf("flight %d does not exist", id))
	}
	if err != nil {
		return internal(ctx, s.log, "flights.delete", err)
	}
	if f.Status == model.StatusInactive {
		return ok("flight already inactive", nil)
	}
	if err := s.flights.SetStatus(ctx, id, model.StatusInactive); err != nil {
		return internal(ctx, s.log, "flights.delete", err)
	}
	s.log.Info("flight deactivated", "flight_id", id, "by", actor.UserID)
	return ok("flight deleted", nil)
}

// Seats lists the seats of an active flight with their availability.
func (s *FlightService) Seats(ctx context.Context, id uint64) Result {
	if _, err := s.flights.ActiveByID(ctx, s.flights.DB(), id); errors.Is(err, repository.ErrFlightNotFound) {
		return notFound(fmt.Sprintf("flight %d does not exist", id))
	} else if err != nil {
		return internal(ctx, s.log, "flights.seats", err)
	}
	seats, err := s.seats.ForFlight(ctx, id)
	if err != nil {
		return internal(ctx, s.log, "flights.seats", err)
	}
	if seats == nil {
		seats = []model.FlightSeat{}
	}
	return ok("seats", seats)
}
