// models/api_models.go
package models

// ProgressEvent is emitted once per processed date on the streaming
// search endpoint, current in increasing order up to Total.
type ProgressEvent struct {
	Type         string `json:"type"` // "progress"
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	Date         string `json:"date"`
	TicketsFound int    `json:"ticketsFound"`
	Percentage   int    `json:"percentage"`
}

// CompleteEvent is the terminal frame of a successful search stream.
// TotalFound counts tickets after the transfer/destination filters but
// before the price filter.
type CompleteEvent struct {
	Type       string   `json:"type"` // "complete"
	Success    bool     `json:"success"`
	Tickets    []Ticket `json:"tickets"`
	TotalFound int      `json:"totalFound"`
}

// ErrorEvent is the terminal frame of a failed search stream.
type ErrorEvent struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

// ValidateResponse is the body of the airport validation endpoint.
type ValidateResponse struct {
	Success bool     `json:"success"`
	Valid   bool     `json:"valid"`
	Airport *Airport `json:"airport,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// AirportSearchResponse is the body of the airport/city search endpoint.
type AirportSearchResponse struct {
	Success bool           `json:"success"`
	Results []AirportMatch `json:"results"`
}
