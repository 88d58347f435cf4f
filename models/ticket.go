// models/ticket.go
package models

// Ticket is the canonical ticket shape produced by the normalizer.
// Immutable once constructed; the UI consumes it for display and sorting only.
type Ticket struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	Price         float64 `json:"price"`
	Airline       string  `json:"airline"`
	DepartureTime string  `json:"departureTime"` // HH:MM local
	ArrivalTime   string  `json:"arrivalTime"`   // HH:MM local
	Duration      string  `json:"duration"`      // display string, e.g. "5ч 30м"
	Link          string  `json:"link"`
	IsDirect      bool    `json:"isDirect"`
	Transfers     int     `json:"transfers"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
}

// RawTicket is a ticket record as the upstream API returns it.
// Several concepts arrive under one of multiple optional field names
// (price/value, airline/gate, departure_at/depart_date, ...), so every
// aliased field is a pointer and resolution happens in the normalizer.
type RawTicket struct {
	Price *float64 `json:"price,omitempty"`
	Value *float64 `json:"value,omitempty"`

	Airline *string `json:"airline,omitempty"`
	Gate    *string `json:"gate,omitempty"`

	DepartureAt *string `json:"departure_at,omitempty"`
	DepartDate  *string `json:"depart_date,omitempty"`
	ReturnDate  *string `json:"return_date,omitempty"`

	Duration   *int `json:"duration,omitempty"`
	DurationTo *int `json:"duration_to,omitempty"`

	NumberOfChanges *int `json:"number_of_changes,omitempty"`
	Transfers       *int `json:"transfers,omitempty"`
	ReturnTransfers *int `json:"return_transfers,omitempty"`

	Link *string `json:"link,omitempty"`

	Origin             string  `json:"origin,omitempty"`
	Destination        string  `json:"destination,omitempty"`
	OriginAirport      *string `json:"origin_airport,omitempty"`
	DestinationAirport *string `json:"destination_airport,omitempty"`

	FlightNumber *string `json:"flight_number,omitempty"`
	TripClass    *int    `json:"trip_class,omitempty"`
	Distance     *int    `json:"distance,omitempty"`
	FoundAt      *string `json:"found_at,omitempty"`
	Actual       *bool   `json:"actual,omitempty"`
}
