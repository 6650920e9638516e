package model

// Reservation binds a client to one seat on one flight. At most one active
// reservation exists per (SeatID, FlightID); cancelling flips Status to
// inactive and frees the seat.
type Reservation struct {
	ID       uint64 `json:"id"`        // reservations.id
	SeatID   uint64 `json:"seat_id"`   // reservations.seat_id
	FlightID uint64 `json:"flight_id"` // reservations.flight_id
	ClientID uint64 `json:"client_id"` // reservations.client_id
	Status   Status `json:"status"`    // reservations.status
}

// ReservationDetail is a reservation joined with its flight and seat, as
// returned to the client that owns it.
type ReservationDetail struct {
	Reservation
	FlightDate    Date      `json:"flight_date"`
	DepartureTime ClockTime `json:"departure_time"`
	ArrivalTime   ClockTime `json:"arrival_time"`
	Destination   string    `json:"destination"`
	SeatRow       int       `json:"seat_row"`
	SeatColumn    string    `json:"seat_column"`
}
