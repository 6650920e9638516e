package model

// Airplane is a row of the airplanes table.
type Airplane struct {
	ID           uint64 `json:"id"`           // airplanes.id
	Registration string `json:"registration"` // airplanes.registration
	Model        string `json:"model"`        // airplanes.model
	Capacity     int    `json:"capacity"`     // airplanes.capacity
	Status       Status `json:"status"`       // airplanes.status
}

// Destination is a row of the destinations table.
type Destination struct {
	ID     uint64 `json:"id"`     // destinations.id
	Name   string `json:"name"`   // destinations.name
	Status Status `json:"status"` // destinations.status
}

// Flight is one scheduled departure of an airplane to a destination.
// (Date, DestinationID, AirplaneID) is unique among active flights.
type Flight struct {
	ID            uint64    `json:"id"`             // flights.id
	Date          Date      `json:"date"`           // flights.flight_date
	DepartureTime ClockTime `json:"departure_time"` // flights.departure_time
	ArrivalTime   ClockTime `json:"arrival_time"`   // flights.arrival_time
	DestinationID uint64    `json:"destination_id"` // flights.destination_id
	AirplaneID    uint64    `json:"airplane_id"`    // flights.airplane_id
	Status        Status    `json:"status"`         // flights.status
}

// Seat belongs to an airplane, not to a flight; availability on a given
// flight is derived from that flight's active reservations.
type Seat struct {
	ID         uint64 `json:"id"`          // seats.id
	Row        int    `json:"row"`         // seats.seat_row
	Column     string `json:"column"`      // seats.seat_column
	AirplaneID uint64 `json:"airplane_id"` // seats.airplane_id
	Status     Status `json:"status"`      // seats.status
}

// FlightSeat is a seat of the flight's airplane with its availability.
type FlightSeat struct {
	Seat
	Available bool `json:"available"`
}
