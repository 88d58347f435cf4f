// handlers/airports_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/fow830/flyplaza/airports"
	"github.com/fow830/flyplaza/models"
	"github.com/fow830/flyplaza/services"
)

// Re-defining these helpers here for now. Consider moving to a common
// utils package if more handler files appear.
func respondWithJSON_Airport(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("AirportHandler ERROR: Marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError_Airport(w http.ResponseWriter, code int, message string) {
	log.Printf("AirportHandler API Error %d: %s", code, message)
	respondWithJSON_Airport(w, code, map[string]interface{}{"success": false, "error": message})
}

// AirportsHandler serves the airport/city search and validation endpoints.
type AirportsHandler struct {
	service *services.AirportService
}

func NewAirportsHandler(service *services.AirportService) *AirportsHandler {
	return &AirportsHandler{service: service}
}

// SearchAirports handles GET /api/airports/search?q=...
// Free-text query of at least 2 characters; matches city and airport
// names in both languages and exact IATA codes, capped at 10 results.
func (h *AirportsHandler) SearchAirports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError_Airport(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if utf8.RuneCountInString(query) < airports.MinQueryLength {
		respondWithError_Airport(w, http.StatusBadRequest, "Query parameter is required (min 2 characters)")
		return
	}

	results := h.service.SearchAirports(query)
	if results == nil {
		results = []models.AirportMatch{}
	}

	respondWithJSON_Airport(w, http.StatusOK, models.AirportSearchResponse{
		Success: true,
		Results: results,
	})
}

// ValidateAirport handles GET /api/airports/validate?code=...
func (h *AirportsHandler) ValidateAirport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError_Airport(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError_Airport(w, http.StatusBadRequest, "Code parameter is required")
		return
	}

	respondWithJSON_Airport(w, http.StatusOK, h.service.ValidateCode(r.Context(), code))
}
