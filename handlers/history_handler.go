// handlers/history_handler.go
package handlers

import (
	"net/http"

	"github.com/fow830/flyplaza/database"
	"github.com/fow830/flyplaza/models"
)

// GetSearchHistoryHandler handles GET /api/history?limit=N.
// Returns the most recent completed searches from the history store.
func GetSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	if !database.Enabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Search history store is not configured")
		return
	}

	limit := parseIntOr(r.URL.Query().Get("limit"), 20)
	records, err := database.GetRecentSearches(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load search history: "+err.Error())
		return
	}
	if records == nil {
		records = []models.SearchRecord{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": records,
	})
}
