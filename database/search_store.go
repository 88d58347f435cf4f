// database/search_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/fow830/flyplaza/models"
)

// SaveSearchRecord inserts one completed search into search_history.
// Callers treat this as best effort: a store failure must never fail
// the search that produced the record.
func SaveSearchRecord(rec models.SearchRecord) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	var cheapest sql.NullFloat64
	if rec.CheapestPrice != nil {
		cheapest = sql.NullFloat64{Float64: *rec.CheapestPrice, Valid: true}
	}

	query := `
		INSERT INTO search_history (
			origin, destination, start_date, end_date,
			passengers, max_transfers, tickets_found, cheapest_price, searched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`

	_, err := DB.Exec(query,
		rec.Origin, rec.Destination, rec.StartDate, rec.EndDate,
		rec.Passengers, rec.MaxTransfers, rec.TicketsFound, cheapest,
	)
	if err != nil {
		log.Printf("ERROR Database: Failed to save search record for %s-%s: %v", rec.Origin, rec.Destination, err)
		return fmt.Errorf("failed to save search record: %w", err)
	}
	return nil
}

// GetRecentSearches returns the newest search records, newest first.
func GetRecentSearches(limit int) ([]models.SearchRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := DB.Query(`
		SELECT id, origin, destination, start_date, end_date,
		       passengers, max_transfers, tickets_found, cheapest_price, searched_at
		FROM search_history
		ORDER BY searched_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search_history: %w", err)
	}
	defer rows.Close()

	var records []models.SearchRecord
	for rows.Next() {
		var rec models.SearchRecord
		var cheapest sql.NullFloat64

		err := rows.Scan(
			&rec.ID, &rec.Origin, &rec.Destination, &rec.StartDate, &rec.EndDate,
			&rec.Passengers, &rec.MaxTransfers, &rec.TicketsFound, &cheapest, &rec.SearchedAt,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan search_history row: %v", err)
			continue
		}
		if cheapest.Valid {
			rec.CheapestPrice = &cheapest.Float64
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search_history rows: %w", err)
	}
	return records, nil
}
