// services/flight_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/fow830/flyplaza/airports"
	"github.com/fow830/flyplaza/aviasales"
	"github.com/fow830/flyplaza/config"
	"github.com/fow830/flyplaza/models"
)

const (
	// MaxDateRangeDays caps the searchable date span.
	MaxDateRangeDays = 90

	// perDateWaitBudget bounds each date's upstream query, including
	// asynchronous polling.
	perDateWaitBudget = 60 * time.Second

	// pauseBetweenDates is client-side rate limiting against the
	// upstream API.
	pauseBetweenDates = 2 * time.Second
)

// TicketSearcher issues a single priced-itinerary query for one date.
type TicketSearcher interface {
	SearchTickets(ctx context.Context, params aviasales.SearchParams, maxWait time.Duration) ([]models.RawTicket, error)
}

// SearchInput holds the validated parameters of one date-range search.
type SearchInput struct {
	Origin       string
	Destination  string
	Dates        []string // ordered YYYY-MM-DD, inclusive
	Passengers   int
	MaxTransfers int // -1 means unlimited
}

// ProgressFunc reports one date about to be processed. ticketsFound is
// the running count accumulated so far.
type ProgressFunc func(current, total int, date string, ticketsFound int)

// FlightService orchestrates multi-date searches over a TicketSearcher.
type FlightService struct {
	searcher TicketSearcher
}

func NewFlightService(searcher TicketSearcher) *FlightService {
	return &FlightService{searcher: searcher}
}

// SearchDateRange processes the requested dates strictly sequentially.
// Each date is reported through onProgress, queried upstream, filtered
// by transfer count and destination match, and normalized. A single
// date's failure is logged and never fatal; a 2 second pause separates
// consecutive upstream calls. The returned list is the full accumulated
// set, before the price filter and sort (see FinalizeTickets).
func (s *FlightService) SearchDateRange(ctx context.Context, input SearchInput, onProgress ProgressFunc) ([]models.Ticket, error) {
	log.Printf("Service: Searching flights %s-%s across %d dates\n", input.Origin, input.Destination, len(input.Dates))

	var allTickets []models.Ticket
	total := len(input.Dates)

	for i, date := range input.Dates {
		if onProgress != nil {
			onProgress(i+1, total, date, len(allTickets))
		}

		params := aviasales.SearchParams{
			Origin:      input.Origin,
			Destination: input.Destination,
			DepartDate:  date,
			Adults:      input.Passengers,
			Direct:      input.MaxTransfers == 0,
		}

		rawTickets, err := s.searcher.SearchTickets(ctx, params, perDateBudget())
		if err != nil {
			if ctx.Err() != nil {
				return allTickets, ctx.Err()
			}
			log.Printf("WARN Service: Date %s failed, continuing: %v\n", date, err)
		} else {
			kept := filterTickets(rawTickets, input.Destination, input.MaxTransfers)
			log.Printf("Service: Date %s: %d tickets, %d after filtering\n", date, len(rawTickets), len(kept))
			for _, raw := range kept {
				allTickets = append(allTickets, NormalizeTicket(raw, date, input.Origin, input.Destination))
			}
		}

		if i < total-1 {
			select {
			case <-ctx.Done():
				return allTickets, ctx.Err()
			case <-time.After(pauseBetweenDates):
			}
		}
	}

	log.Printf("Service: Total tickets found: %d\n", len(allTickets))
	return allTickets, nil
}

// filterTickets applies the transfer ceiling and the destination match
// (exact code or metro-area equivalence) to raw upstream tickets.
func filterTickets(rawTickets []models.RawTicket, destination string, maxTransfers int) []models.RawTicket {
	var kept []models.RawTicket
	for _, raw := range rawTickets {
		transfers := firstInt(0, raw.NumberOfChanges, raw.Transfers)
		if maxTransfers != -1 && transfers > maxTransfers {
			continue
		}

		destAirport := firstString("", raw.DestinationAirport)
		if !airports.MatchesDestination(destination, raw.Destination, destAirport) {
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}

// FinalizeTickets drops tickets without a positive price and sorts the
// rest ascending by price. The sort is stable: ties preserve the
// upstream/date order.
func FinalizeTickets(tickets []models.Ticket) []models.Ticket {
	final := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Price > 0 {
			final = append(final, t)
		}
	}
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Price < final[j].Price
	})
	return final
}

// perDateBudget is the wait budget for one date's upstream query,
// configurable but defaulting to 60 seconds.
func perDateBudget() time.Duration {
	if budget := config.AppConfig.Aviasales.SearchWaitBudget; budget > 0 {
		return budget
	}
	return perDateWaitBudget
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateRangeBetween lists every day from start to end inclusive.
func DateRangeBetween(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates
}

// DateRangeFrom lists days consecutive dates starting at start.
// Retained for the legacy days-count request form.
func DateRangeFrom(start time.Time, days int) []string {
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, FormatDate(start.AddDate(0, 0, i)))
	}
	return dates
}

// ValidateSearchInput rejects malformed parameters before any upstream
// call is issued.
func ValidateSearchInput(origin, destination string, start, end time.Time, passengers, maxTransfers int) error {
	if !airports.ValidIATA(origin) {
		return fmt.Errorf("invalid origin IATA code: %q", origin)
	}
	if !airports.ValidIATA(destination) {
		return fmt.Errorf("invalid destination IATA code: %q", destination)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", FormatDate(end), FormatDate(start))
	}
	if int(end.Sub(start).Hours()/24) >= MaxDateRangeDays {
		return fmt.Errorf("date range exceeds %d days", MaxDateRangeDays)
	}
	today, _ := time.Parse("2006-01-02", FormatDate(time.Now()))
	if start.Before(today) {
		return fmt.Errorf("start date %s is in the past", FormatDate(start))
	}
	if passengers < 1 {
		return fmt.Errorf("passengers must be a positive integer, got %d", passengers)
	}
	if maxTransfers < -1 {
		return fmt.Errorf("maxTransfers must be -1 (unlimited) or a non-negative ceiling, got %d", maxTransfers)
	}
	return nil
}
