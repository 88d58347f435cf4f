// services/normalizer.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/fow830/flyplaza/config"
	"github.com/fow830/flyplaza/models"
)

// Display placeholder when the upstream omits a field entirely.
const notSpecified = "Не указано"

const defaultBookingBaseURL = "https://www.aviasales.ru"

// firstFloat resolves an ordered alias chain of optional numeric fields.
func firstFloat(fallback float64, candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

func firstInt(fallback int, candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

func firstString(fallback string, candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return fallback
}

// NormalizeTicket maps a raw upstream ticket onto the canonical shape.
// Pure: the same raw record, requested date, origin and destination
// always produce the same Ticket. Aliased upstream fields are resolved
// in a fixed priority order with documented defaults.
func NormalizeTicket(raw models.RawTicket, date, origin, destination string) models.Ticket {
	price := firstFloat(0, raw.Price, raw.Value)
	airline := firstString(notSpecified, raw.Airline, raw.Gate)

	departure := parseDeparture(firstString("", raw.DepartureAt, raw.DepartDate), date)
	durationMinutes := firstInt(0, raw.Duration, raw.DurationTo)
	arrival := departure.Add(time.Duration(durationMinutes) * time.Minute)

	transfers := firstInt(0, raw.NumberOfChanges, raw.Transfers)

	link := firstString("", raw.Link)
	switch {
	case link == "":
		link = synthesizeLink(origin, destination, date, 1)
	case !strings.HasPrefix(link, "http"):
		link = bookingBaseURL() + link
	}

	ticketOrigin := firstString(raw.Origin, raw.OriginAirport)
	if ticketOrigin == "" {
		ticketOrigin = origin
	}
	ticketDestination := firstString(raw.Destination, raw.DestinationAirport)
	if ticketDestination == "" {
		ticketDestination = destination
	}

	return models.Ticket{
		Date:          date,
		Price:         price,
		Airline:       airline,
		DepartureTime: departure.Format("15:04"),
		ArrivalTime:   arrival.Format("15:04"),
		Duration:      formatDuration(durationMinutes),
		Link:          link,
		IsDirect:      transfers == 0,
		Transfers:     transfers,
		Origin:        ticketOrigin,
		Destination:   ticketDestination,
	}
}

// parseDeparture tries the timestamp formats the upstream is known to
// emit; an unparseable or absent value falls back to the requested date
// at implicit midnight.
func parseDeparture(value, date string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	if value != "" {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// formatDuration renders minutes as the display string, e.g. "5ч 30м".
func formatDuration(minutes int) string {
	if minutes <= 0 {
		return notSpecified
	}
	return fmt.Sprintf("%dч %dм", minutes/60, minutes%60)
}

// synthesizeLink builds the booking deep link when the upstream gives
// none: /search/{origin}{DDMMYY}{destination}1{passengers}, with "1"
// marking a one-way itinerary.
func synthesizeLink(origin, destination, date string, passengers int) string {
	encoded := date
	if t, err := time.Parse("2006-01-02", date); err == nil {
		encoded = t.Format("020106")
	}
	return fmt.Sprintf("%s/search/%s%s%s1%d", bookingBaseURL(), origin, encoded, destination, passengers)
}

func bookingBaseURL() string {
	if base := config.AppConfig.Aviasales.BookingBaseURL; base != "" {
		return base
	}
	return defaultBookingBaseURL
}
