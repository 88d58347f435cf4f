package airports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceTableLoaded(t *testing.T) {
	led, ok := ByCode("LED")
	require.True(t, ok)
	assert.Equal(t, "Пулково", led.Name)
	assert.Equal(t, "Санкт-Петербург", led.City)
	assert.Equal(t, "Saint Petersburg", led.CityEn)

	_, ok = ByCode("led")
	assert.True(t, ok, "lookup is case-insensitive")

	_, ok = ByCode("XXX")
	assert.False(t, ok)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "LED", NormalizeCode(" led "))
	assert.Equal(t, "IST", NormalizeCode("IST"))
}

func TestValidIATA(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"LED", true},
		{"IST", true},
		{"led", false},
		{"LE", false},
		{"LEDD", false},
		{"L3D", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidIATA(tt.code))
		})
	}
}

func TestMatchesDestination(t *testing.T) {
	tests := []struct {
		name        string
		requested   string
		dest        string
		destAirport string
		want        bool
	}{
		{name: "exact destination match", requested: "IST", dest: "IST", want: true},
		{name: "exact airport match", requested: "SVO", destAirport: "SVO", want: true},
		{name: "metro city accepts member airport", requested: "MOW", dest: "", destAirport: "SVO", want: true},
		{name: "metro city accepts each member", requested: "MOW", destAirport: "VKO", want: true},
		{name: "member airport accepts metro city", requested: "SVO", dest: "MOW", want: true},
		{name: "istanbul city accepts sabiha", requested: "IST", destAirport: "SAW", want: true},
		{name: "sabiha accepts istanbul city", requested: "SAW", dest: "IST", want: true},
		{name: "unrelated city rejected", requested: "IST", dest: "MOW", destAirport: "SVO", want: false},
		{name: "different member airports do not match each other", requested: "DME", destAirport: "SVO", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesDestination(tt.requested, tt.dest, tt.destAirport))
		})
	}
}

func TestSearch(t *testing.T) {
	t.Run("query shorter than two characters yields nothing", func(t *testing.T) {
		assert.Nil(t, Search("м"))
	})

	t.Run("russian city substring", func(t *testing.T) {
		results := Search("москва")
		require.NotEmpty(t, results)
		codes := make(map[string]bool)
		for _, r := range results {
			assert.Equal(t, "MOW", r.City.Code)
			assert.Equal(t, 3, r.AirportsCount)
			codes[r.Airport.Code] = true
		}
		assert.True(t, codes["SVO"])
		assert.True(t, codes["DME"])
		assert.True(t, codes["VKO"])
	})

	t.Run("english city substring", func(t *testing.T) {
		results := Search("moscow")
		require.NotEmpty(t, results)
		assert.Equal(t, "MOW", results[0].City.Code)
	})

	t.Run("exact IATA code", func(t *testing.T) {
		results := Search("led")
		require.NotEmpty(t, results)
		assert.Equal(t, "LED", results[0].Airport.Code)
	})

	t.Run("airport name match", func(t *testing.T) {
		results := Search("пулково")
		require.NotEmpty(t, results)
		assert.Equal(t, "LED", results[0].Airport.Code)
	})

	t.Run("case-insensitive", func(t *testing.T) {
		assert.Equal(t, Search("СТАМБУЛ"), Search("стамбул"))
	})

	t.Run("no duplicates and capped at ten", func(t *testing.T) {
		results := Search("ан") // broad substring across several names
		assert.LessOrEqual(t, len(results), 10)
		seen := make(map[string]bool)
		for _, r := range results {
			assert.False(t, seen[r.Airport.Code], "duplicate %s", r.Airport.Code)
			seen[r.Airport.Code] = true
		}
	})

	t.Run("unknown query yields empty", func(t *testing.T) {
		assert.Empty(t, Search("zzzzzz"))
	})
}
