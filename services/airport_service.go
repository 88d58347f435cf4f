// services/airport_service.go
package services

import (
	"context"
	"log"

	"github.com/fow830/flyplaza/airports"
	"github.com/fow830/flyplaza/models"
)

// DestinationProber checks an airport code against the upstream API.
type DestinationProber interface {
	ProbeDestination(ctx context.Context, code string) error
}

// ProberFactory builds the prober for one validation call. It returns
// nil when no API token is currently configured, so a token exported
// after startup enables the fallback without a restart.
type ProberFactory func() DestinationProber

// AirportService validates airport codes against the local reference
// table, falling back to an upstream probe for codes the table lacks.
type AirportService struct {
	newProber ProberFactory // nil disables the probe fallback
}

func NewAirportService(newProber ProberFactory) *AirportService {
	return &AirportService{newProber: newProber}
}

// SearchAirports ranks reference-table matches for a free-text query.
func (s *AirportService) SearchAirports(query string) []models.AirportMatch {
	return airports.Search(query)
}

// ValidateCode checks the IATA format, then the reference table, then
// (when a prober is available) issues a throwaway upstream query to
// infer existence of codes the table does not carry.
func (s *AirportService) ValidateCode(ctx context.Context, code string) models.ValidateResponse {
	normalized := airports.NormalizeCode(code)
	if !airports.ValidIATA(normalized) {
		return models.ValidateResponse{Valid: false, Error: "Invalid IATA code format"}
	}

	if airport, ok := airports.ByCode(normalized); ok {
		return models.ValidateResponse{Success: true, Valid: true, Airport: &airport}
	}

	var prober DestinationProber
	if s.newProber != nil {
		prober = s.newProber()
	}
	if prober != nil {
		if err := prober.ProbeDestination(ctx, normalized); err == nil {
			// Upstream accepts the code but we know nothing else about it.
			return models.ValidateResponse{
				Success: true,
				Valid:   true,
				Airport: &models.Airport{
					Code:    normalized,
					Name:    "Airport",
					City:    "Unknown",
					Country: "Unknown",
				},
			}
		} else {
			log.Printf("Service: Probe for airport %s failed: %v\n", normalized, err)
			return models.ValidateResponse{Success: true, Valid: false, Error: "Airport not found"}
		}
	}

	return models.ValidateResponse{Success: true, Valid: false, Error: "Airport not found in database"}
}
