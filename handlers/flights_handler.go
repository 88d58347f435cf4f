// handlers/flights_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fow830/flyplaza/aviasales"
	"github.com/fow830/flyplaza/config"
	"github.com/fow830/flyplaza/database"
	"github.com/fow830/flyplaza/models"
	"github.com/fow830/flyplaza/services"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

const defaultSearchDays = 30

// FlightsHandler serves the streaming price search endpoint.
// NewSearcher builds a per-request searcher from the token read at call
// time, so tests can substitute a fake upstream.
type FlightsHandler struct {
	NewSearcher func(token string) services.TicketSearcher
}

func NewFlightsHandler() *FlightsHandler {
	return &FlightsHandler{
		NewSearcher: func(token string) services.TicketSearcher {
			return aviasales.New(config.AppConfig.Aviasales, token)
		},
	}
}

// SearchFlights handles GET /api/flights/search.
// Query params: origin, destination, passengers, maxTransfers, and
// either startDate+endDate (YYYY-MM-DD) or the legacy days count.
// The response is a text event stream: a progress frame per date, then
// exactly one terminal complete or error frame.
func (h *FlightsHandler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	origin := orDefault(r.URL.Query().Get("origin"), "LED")
	destination := orDefault(r.URL.Query().Get("destination"), "IST")
	passengers := parseIntOr(r.URL.Query().Get("passengers"), 1)
	maxTransfers := parseIntOr(r.URL.Query().Get("maxTransfers"), 0)

	token := config.APIToken()
	if token == "" {
		log.Println("Handler: ERROR: no API token configured")
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error": fmt.Sprintf("API token not configured. Please set %s or %s environment variable.",
				config.EnvTokenPrimary, config.EnvTokenFallback),
			"tickets": []models.Ticket{},
		})
		return
	}

	start, end, err := resolveDates(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := services.ValidateSearchInput(origin, destination, start, end, passengers, maxTransfers); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Only materialized after validation has bounded the span.
	dates := services.DateRangeBetween(start, end)

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	log.Printf("Handler: Searching %s-%s, %d dates (%s..%s), passengers=%d, maxTransfers=%d\n",
		origin, destination, len(dates), dates[0], dates[len(dates)-1], passengers, maxTransfers)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	terminalSent := false
	sendEvent := func(payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Handler: ERROR marshalling stream event: %v", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	sendProgress := func(current, total int, date string, ticketsFound int) {
		sendEvent(models.ProgressEvent{
			Type:         "progress",
			Current:      current,
			Total:        total,
			Date:         date,
			TicketsFound: ticketsFound,
			Percentage:   int(math.Round(float64(current) / float64(total) * 100)),
		})
	}

	// A failure outside the per-date loop still yields exactly one
	// terminal error frame before the stream closes.
	defer func() {
		if rec := recover(); rec != nil && !terminalSent {
			log.Printf("Handler: ERROR: panic during search stream: %v", rec)
			sendEvent(models.ErrorEvent{Type: "error", Error: fmt.Sprintf("internal error: %v", rec)})
		}
	}()

	sendProgress(0, len(dates), "", 0)

	service := services.NewFlightService(h.NewSearcher(token))
	input := services.SearchInput{
		Origin:       origin,
		Destination:  destination,
		Dates:        dates,
		Passengers:   passengers,
		MaxTransfers: maxTransfers,
	}

	allTickets, err := service.SearchDateRange(r.Context(), input, sendProgress)
	if err != nil {
		terminalSent = true
		sendEvent(models.ErrorEvent{Type: "error", Error: err.Error()})
		return
	}

	sorted := services.FinalizeTickets(allTickets)
	terminalSent = true
	sendEvent(models.CompleteEvent{
		Type:       "complete",
		Success:    len(sorted) > 0,
		Tickets:    sorted,
		TotalFound: len(allTickets),
	})

	recordSearch(origin, destination, dates, passengers, maxTransfers, sorted)
}

// recordSearch writes the completed search to the history store.
// Best effort: failures are logged and swallowed.
func recordSearch(origin, destination string, dates []string, passengers, maxTransfers int, sorted []models.Ticket) {
	if !database.Enabled() {
		return
	}
	rec := models.SearchRecord{
		Origin:       origin,
		Destination:  destination,
		StartDate:    dates[0],
		EndDate:      dates[len(dates)-1],
		Passengers:   passengers,
		MaxTransfers: maxTransfers,
		TicketsFound: len(sorted),
	}
	if len(sorted) > 0 {
		cheapest := sorted[0].Price
		rec.CheapestPrice = &cheapest
	}
	if err := database.SaveSearchRecord(rec); err != nil {
		log.Printf("WARN Handler: Failed to record search history: %v", err)
	}
}

// resolveDates determines the searched span: explicit startDate/endDate,
// the legacy days count, or the default 30 days from today. The date
// list itself is built by the caller once the span passes validation.
func resolveDates(r *http.Request) (start, end time.Time, err error) {
	startParam := r.URL.Query().Get("startDate")
	endParam := r.URL.Query().Get("endDate")
	daysParam := r.URL.Query().Get("days")

	switch {
	case startParam != "" && endParam != "":
		start, err = time.Parse("2006-01-02", startParam)
		if err != nil {
			return start, end, fmt.Errorf("invalid startDate %q, use YYYY-MM-DD", startParam)
		}
		end, err = time.Parse("2006-01-02", endParam)
		if err != nil {
			return start, end, fmt.Errorf("invalid endDate %q, use YYYY-MM-DD", endParam)
		}
	case daysParam != "":
		days, convErr := strconv.Atoi(daysParam)
		if convErr != nil || days < 1 {
			return start, end, fmt.Errorf("invalid days %q, use a positive integer", daysParam)
		}
		start = today()
		end = start.AddDate(0, 0, days-1)
	default:
		start = today()
		end = start.AddDate(0, 0, defaultSearchDays-1)
	}

	return start, end, nil
}

func today() time.Time {
	t, _ := time.Parse("2006-01-02", time.Now().Format("2006-01-02"))
	return t
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseIntOr(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
