package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	err    error
	probed []string
}

func (f *fakeProber) ProbeDestination(_ context.Context, code string) error {
	f.probed = append(f.probed, code)
	return f.err
}

func proberFactory(p DestinationProber) ProberFactory {
	return func() DestinationProber { return p }
}

func TestValidateCode_Format(t *testing.T) {
	service := NewAirportService(nil)

	for _, code := range []string{"XX", "ABCD", "12A", ""} {
		resp := service.ValidateCode(context.Background(), code)
		assert.False(t, resp.Valid, "code %q", code)
		assert.Equal(t, "Invalid IATA code format", resp.Error)
	}
}

func TestValidateCode_KnownAirport(t *testing.T) {
	prober := &fakeProber{}
	service := NewAirportService(proberFactory(prober))

	resp := service.ValidateCode(context.Background(), "led")

	require.True(t, resp.Valid)
	require.NotNil(t, resp.Airport)
	assert.Equal(t, "LED", resp.Airport.Code)
	assert.Equal(t, "Санкт-Петербург", resp.Airport.City)
	assert.Empty(t, prober.probed, "no probe for locally known airports")
}

func TestValidateCode_ProbeFallback(t *testing.T) {
	t.Run("probe accepts unknown code", func(t *testing.T) {
		prober := &fakeProber{}
		service := NewAirportService(proberFactory(prober))

		resp := service.ValidateCode(context.Background(), "GOJ")

		require.True(t, resp.Valid)
		require.NotNil(t, resp.Airport)
		assert.Equal(t, "GOJ", resp.Airport.Code)
		assert.Equal(t, []string{"GOJ"}, prober.probed)
	})

	t.Run("probe rejects unknown code", func(t *testing.T) {
		prober := &fakeProber{err: errors.New("status code 400")}
		service := NewAirportService(proberFactory(prober))

		resp := service.ValidateCode(context.Background(), "QQQ")

		assert.True(t, resp.Success)
		assert.False(t, resp.Valid)
		assert.Equal(t, "Airport not found", resp.Error)
	})

	t.Run("no prober configured", func(t *testing.T) {
		service := NewAirportService(nil)

		resp := service.ValidateCode(context.Background(), "QQQ")

		assert.False(t, resp.Valid)
		assert.Equal(t, "Airport not found in database", resp.Error)
	})

	t.Run("prober resolved on every call", func(t *testing.T) {
		var current DestinationProber
		service := NewAirportService(func() DestinationProber { return current })

		resp := service.ValidateCode(context.Background(), "GOJ")
		assert.False(t, resp.Valid, "no probe while the factory yields nil")

		// Token exported after startup: the fallback comes alive.
		prober := &fakeProber{}
		current = prober

		resp = service.ValidateCode(context.Background(), "GOJ")
		assert.True(t, resp.Valid)
		assert.Equal(t, []string{"GOJ"}, prober.probed)
	})
}
