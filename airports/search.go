// airports/search.go
package airports

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fow830/flyplaza/models"
)

const (
	// Result caps, matching the reference data endpoints.
	maxCityMatches    = 10
	maxAirportMatches = 5
	maxTotalResults   = 10

	// MinQueryLength is the shortest accepted free-text query.
	MinQueryLength = 2
)

// city groups the airports serving one metropolitan area.
type city struct {
	Code     string
	Name     string
	NameEn   string
	Country  string
	Airports []models.Airport
}

var cityIndex []city

// buildCityIndex groups the reference table by city name. Metro-cluster
// cities get their city code (MOW, IST); single-airport cities reuse the
// airport code.
func buildCityIndex() {
	grouped := make(map[string][]models.Airport)
	for _, a := range byCode {
		grouped[a.City] = append(grouped[a.City], a)
	}

	cityIndex = cityIndex[:0]
	for name, list := range grouped {
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
		first := list[0]
		cityIndex = append(cityIndex, city{
			Code:     metroCityCode(first.Code),
			Name:     name,
			NameEn:   first.CityEn,
			Country:  first.Country,
			Airports: list,
		})
	}
	sort.Slice(cityIndex, func(i, j int) bool { return cityIndex[i].Name < cityIndex[j].Name })
}

// Search matches a free-text query against city and airport names in
// both languages, or exactly against IATA codes. City matches come
// first (each contributing all of its airports), then direct
// airport-name matches; at most 10 cities and 5 direct airports are
// considered and the result list is capped at 10.
func Search(query string) []models.AirportMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}

	var results []models.AirportMatch
	seen := make(map[string]bool)

	cityMatches := 0
	for _, c := range cityIndex {
		if cityMatches >= maxCityMatches {
			break
		}
		if !strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.NameEn), q) &&
			strings.ToLower(c.Code) != q {
			continue
		}
		cityMatches++
		for _, a := range c.Airports {
			if seen[a.Code] {
				continue
			}
			seen[a.Code] = true
			results = append(results, matchFor(c, a))
		}
	}

	airportMatches := 0
	for _, c := range cityIndex {
		for _, a := range c.Airports {
			if airportMatches >= maxAirportMatches {
				break
			}
			if seen[a.Code] {
				continue
			}
			if !strings.Contains(strings.ToLower(a.Name), q) &&
				!strings.Contains(strings.ToLower(a.NameEn), q) &&
				strings.ToLower(a.Code) != q {
				continue
			}
			airportMatches++
			seen[a.Code] = true
			results = append(results, matchFor(c, a))
		}
	}

	if len(results) > maxTotalResults {
		results = results[:maxTotalResults]
	}
	return results
}

func matchFor(c city, a models.Airport) models.AirportMatch {
	return models.AirportMatch{
		Type: "airport",
		City: models.MatchCity{
			Code:    c.Code,
			Name:    c.Name,
			NameEn:  c.NameEn,
			Country: c.Country,
		},
		Airport: models.MatchAirport{
			Code: a.Code,
			Name: a.Name,
			City: c.Name,
		},
		AirportsCount: len(c.Airports),
	}
}
