// models/airport.go
package models

import "time"

// Airport is one row of the static reference table shipped with the
// binary. Russian names are primary (the upstream data feed is ru-first);
// English names are carried for search.
type Airport struct {
	Code    string `csv:"code" json:"code"` // 3-letter IATA code, unique key
	Name    string `csv:"name" json:"name"`
	City    string `csv:"city" json:"city"`
	Country string `csv:"country" json:"country"`
	NameEn  string `csv:"name_en" json:"-"`
	CityEn  string `csv:"city_en" json:"-"`
}

// AirportMatch is one ranked result of the airport/city search endpoint.
type AirportMatch struct {
	Type          string       `json:"type"` // always "airport"
	City          MatchCity    `json:"city"`
	Airport       MatchAirport `json:"airport"`
	AirportsCount int          `json:"airportsCount"` // airports serving the city
}

type MatchCity struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	NameEn  string `json:"nameEn"`
	Country string `json:"country"`
}

type MatchAirport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// SearchRecord is one row of the search_history table: a completed
// date-range search and its outcome.
type SearchRecord struct {
	ID            int64     `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	StartDate     string    `json:"startDate"`
	EndDate       string    `json:"endDate"`
	Passengers    int       `json:"passengers"`
	MaxTransfers  int       `json:"maxTransfers"`
	TicketsFound  int       `json:"ticketsFound"`
	CheapestPrice *float64  `json:"cheapestPrice,omitempty"`
	SearchedAt    time.Time `json:"searchedAt"`
}
