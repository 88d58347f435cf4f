// airports/airports.go
package airports

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	_ "embed"

	"github.com/jszwec/csvutil"

	"github.com/fow830/flyplaza/models"
)

//go:embed airports.csv
var airportsCSV []byte

// byCode is the static reference table, keyed by IATA code.
// Loaded once at process start, never mutated.
var byCode map[string]models.Airport

var iataCodeRegexp = regexp.MustCompile(`^[A-Z]{3}$`)

func init() {
	table, err := parseAirportsCSV(airportsCSV)
	if err != nil {
		// The CSV ships inside the binary; failing to parse it is a build defect.
		log.Fatalf("Failed to load embedded airport reference table: %v", err)
	}
	byCode = table
	buildCityIndex()
}

// parseAirportsCSV decodes the reference table CSV into a code-keyed map.
// csvutil maps the header row onto the csv tags of models.Airport.
func parseAirportsCSV(data []byte) (map[string]models.Airport, error) {
	var rows []models.Airport
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode airports CSV data: %w", err)
	}

	table := make(map[string]models.Airport, len(rows))
	for _, a := range rows {
		table[a.Code] = a
	}
	return table, nil
}

// NormalizeCode trims and uppercases an airport code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidIATA reports whether code is exactly three uppercase ASCII letters.
func ValidIATA(code string) bool {
	return iataCodeRegexp.MatchString(code)
}

// ByCode looks an airport up in the reference table.
func ByCode(code string) (models.Airport, bool) {
	a, ok := byCode[NormalizeCode(code)]
	return a, ok
}

// All returns the reference table contents ordered by code.
func All() []models.Airport {
	out := make([]models.Airport, 0, len(byCode))
	for _, a := range byCode {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// metroClusters lists the hand-maintained metro-area equivalences:
// a city code and the airport codes it covers. Kept as special cases
// rather than generalized from the reference table; see DESIGN.md.
var metroClusters = []struct {
	City     string
	Airports []string
}{
	{City: "IST", Airports: []string{"IST", "SAW"}},
	{City: "MOW", Airports: []string{"SVO", "DME", "VKO"}},
}

// MatchesDestination reports whether a raw ticket with the given
// destination and destination_airport codes satisfies the requested
// destination. Exact matches always pass; otherwise a metro city code
// is equivalent to each of its constituent airports and vice versa.
func MatchesDestination(requested, destination, destinationAirport string) bool {
	if destination == requested || destinationAirport == requested {
		return true
	}
	for _, cluster := range metroClusters {
		if requested == cluster.City {
			if destination == cluster.City {
				return true
			}
			for _, code := range cluster.Airports {
				if destinationAirport == code {
					return true
				}
			}
		}
		for _, code := range cluster.Airports {
			if requested == code && destination == cluster.City {
				return true
			}
		}
	}
	return false
}

// metroCityCode returns the metro city code covering an airport code,
// or the code itself when it belongs to no cluster.
func metroCityCode(code string) string {
	for _, cluster := range metroClusters {
		for _, a := range cluster.Airports {
			if a == code {
				return cluster.City
			}
		}
	}
	return code
}
