// Package queue defines reservation events and moves them over RabbitMQ.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// ReservationQueue is the durable queue that carries ReservationEvent.
const ReservationQueue = "reservation.events"

type EventType string

const (
	ReservationCreated   EventType = "reservation.created"
	ReservationCancelled EventType = "reservation.cancelled"
)

// ReservationEvent is published after a reservation is committed or
// cancelled. It carries enough for consumers to log or notify without
// querying the database.
type ReservationEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ReservationID uint64    `json:"reservation_id"`
	ClientID      uint64    `json:"client_id"`
	FlightID      uint64    `json:"flight_id"`
	SeatID        uint64    `json:"seat_id"`
	ActorUserID   uint64    `json:"actor_user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent stamps an event with a fresh id and the current time.
func NewReservationEvent(t EventType, reservationID, clientID, flightID, seatID, actorID uint64) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.NewString(),
		Type:          t,
		ReservationID: reservationID,
		ClientID:      clientID,
		FlightID:      flightID,
		SeatID:        seatID,
		ActorUserID:   actorID,
		OccurredAt:    time.Now().UTC(),
	}
}
