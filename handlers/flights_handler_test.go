package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fow830/flyplaza/aviasales"
	"github.com/fow830/flyplaza/models"
	"github.com/fow830/flyplaza/services"
)

func fprice(f float64) *float64 { return &f }

type stubSearcher struct {
	results map[string][]models.RawTicket
	calls   int
}

func (s *stubSearcher) SearchTickets(_ context.Context, params aviasales.SearchParams, _ time.Duration) ([]models.RawTicket, error) {
	s.calls++
	return s.results[params.DepartDate], nil
}

func newTestFlightsHandler(searcher services.TicketSearcher) *FlightsHandler {
	return &FlightsHandler{
		NewSearcher: func(token string) services.TicketSearcher { return searcher },
	}
}

// streamFrames decodes the data: lines of an SSE body into JSON frames.
func streamFrames(t *testing.T, body string) []map[string]interface{} {
	t.Helper()
	var frames []map[string]interface{}
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		require.True(t, strings.HasPrefix(chunk, "data: "), "unexpected frame %q", chunk)
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &frame))
		frames = append(frames, frame)
	}
	return frames
}

func TestSearchFlights_Stream(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "test-token")

	start := time.Now().AddDate(0, 0, 10)
	day1 := start.Format("2006-01-02")
	day2 := start.AddDate(0, 0, 1).Format("2006-01-02")

	searcher := &stubSearcher{results: map[string][]models.RawTicket{
		day1: {
			{Price: fprice(7000), Destination: "IST", NumberOfChanges: new(int)},
			{Price: fprice(5000), Destination: "IST", NumberOfChanges: new(int)},
		},
		day2: {},
	}}
	handler := newTestFlightsHandler(searcher)

	url := fmt.Sprintf("/api/flights/search?origin=LED&destination=IST&startDate=%s&endDate=%s&maxTransfers=0", day1, day2)
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()

	handler.SearchFlights(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	frames := streamFrames(t, rec.Body.String())
	require.Len(t, frames, 4, "initial progress + one per date + terminal")

	// Initial frame.
	assert.Equal(t, "progress", frames[0]["type"])
	assert.Equal(t, 0.0, frames[0]["current"])
	assert.Equal(t, 2.0, frames[0]["total"])

	// Per-date progress, strictly increasing current.
	assert.Equal(t, "progress", frames[1]["type"])
	assert.Equal(t, 1.0, frames[1]["current"])
	assert.Equal(t, day1, frames[1]["date"])
	assert.Equal(t, 50.0, frames[1]["percentage"])
	assert.Equal(t, "progress", frames[2]["type"])
	assert.Equal(t, 2.0, frames[2]["current"])
	assert.Equal(t, 2.0, frames[2]["ticketsFound"])
	assert.Equal(t, 100.0, frames[2]["percentage"])

	// Exactly one terminal frame, last.
	terminal := frames[3]
	assert.Equal(t, "complete", terminal["type"])
	assert.Equal(t, true, terminal["success"])
	assert.Equal(t, 2.0, terminal["totalFound"])

	tickets, ok := terminal["tickets"].([]interface{})
	require.True(t, ok)
	require.Len(t, tickets, 2)
	first := tickets[0].(map[string]interface{})
	second := tickets[1].(map[string]interface{})
	assert.Equal(t, 5000.0, first["price"], "sorted ascending by price")
	assert.Equal(t, 7000.0, second["price"])

	assert.Equal(t, 2, searcher.calls)
}

func TestSearchFlights_EmptyResultIsSuccessfulCompletion(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "test-token")

	day := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	handler := newTestFlightsHandler(&stubSearcher{})

	url := fmt.Sprintf("/api/flights/search?origin=LED&destination=IST&startDate=%s&endDate=%s", day, day)
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()

	handler.SearchFlights(rec, req)

	frames := streamFrames(t, rec.Body.String())
	terminal := frames[len(frames)-1]
	assert.Equal(t, "complete", terminal["type"], "zero tickets is a completed search, not an error")
	assert.Equal(t, false, terminal["success"])
	assert.Equal(t, 0.0, terminal["totalFound"])
}

// failingSearcher surfaces the request context's error, the way the
// real client does when the browser disconnects mid-stream.
type failingSearcher struct{}

func (failingSearcher) SearchTickets(ctx context.Context, _ aviasales.SearchParams, _ time.Duration) ([]models.RawTicket, error) {
	return nil, ctx.Err()
}

type panickingSearcher struct{}

func (panickingSearcher) SearchTickets(context.Context, aviasales.SearchParams, time.Duration) ([]models.RawTicket, error) {
	panic("upstream client bug")
}

// countTerminalFrames counts complete and error frames in a stream.
func countTerminalFrames(frames []map[string]interface{}) int {
	n := 0
	for _, f := range frames {
		if f["type"] == "complete" || f["type"] == "error" {
			n++
		}
	}
	return n
}

func TestSearchFlights_MidStreamFailureEmitsSingleErrorFrame(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "test-token")

	day := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	handler := newTestFlightsHandler(failingSearcher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	url := fmt.Sprintf("/api/flights/search?origin=LED&destination=IST&startDate=%s&endDate=%s", day, day)
	req := httptest.NewRequest("GET", url, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.SearchFlights(rec, req)

	frames := streamFrames(t, rec.Body.String())
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.Equal(t, "error", last["type"])
	assert.NotEmpty(t, last["error"])
	assert.Equal(t, 1, countTerminalFrames(frames), "exactly one terminal frame, and it closes the stream")
}

func TestSearchFlights_PanicEmitsSingleErrorFrame(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "test-token")

	day := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	handler := newTestFlightsHandler(panickingSearcher{})

	url := fmt.Sprintf("/api/flights/search?origin=LED&destination=IST&startDate=%s&endDate=%s", day, day)
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()

	handler.SearchFlights(rec, req)

	frames := streamFrames(t, rec.Body.String())
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.Equal(t, "error", last["type"])
	assert.Contains(t, last["error"], "internal error")
	assert.Equal(t, 1, countTerminalFrames(frames))
}

func TestSearchFlights_MissingToken(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "")
	t.Setenv("TRAVELPAYOUTS_TOKEN", "")

	handler := newTestFlightsHandler(&stubSearcher{})
	req := httptest.NewRequest("GET", "/api/flights/search?origin=LED&destination=IST", nil)
	rec := httptest.NewRecorder()

	handler.SearchFlights(rec, req)

	assert.Equal(t, 500, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "API token not configured")
}

func TestSearchFlights_ValidationRejectedBeforeStreaming(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "test-token")

	future := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	past := time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	farFuture := time.Now().AddDate(0, 0, 150).Format("2006-01-02")

	tests := []struct {
		name  string
		query string
	}{
		{name: "start date in the past", query: fmt.Sprintf("origin=LED&destination=IST&startDate=%s&endDate=%s", past, future)},
		{name: "end before start", query: fmt.Sprintf("origin=LED&destination=IST&startDate=%s&endDate=%s", farFuture, future)},
		{name: "range over 90 days", query: fmt.Sprintf("origin=LED&destination=IST&startDate=%s&endDate=%s", future, farFuture)},
		{name: "bad origin", query: fmt.Sprintf("origin=XXXX&destination=IST&startDate=%s&endDate=%s", future, future)},
		{name: "bad date format", query: "origin=LED&destination=IST&startDate=June&endDate=July"},
		{name: "bad days value", query: "origin=LED&destination=IST&days=zero"},
		{name: "absurd days value", query: "origin=LED&destination=IST&days=5000000"},
		{name: "zero passengers", query: fmt.Sprintf("origin=LED&destination=IST&passengers=0&startDate=%s&endDate=%s", future, future)},
	}

	searcher := &stubSearcher{}
	handler := newTestFlightsHandler(searcher)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/flights/search?"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.SearchFlights(rec, req)

			assert.Equal(t, 400, rec.Code)
			assert.Zero(t, searcher.calls, "no upstream call for rejected input")
		})
	}
}

func TestSearchFlights_LegacyDaysParam(t *testing.T) {
	t.Setenv("AVIASALES_API_TOKEN", "test-token")

	today := time.Now().Format("2006-01-02")
	searcher := &stubSearcher{results: map[string][]models.RawTicket{
		today: {{Price: fprice(3000), Destination: "IST"}},
	}}
	handler := newTestFlightsHandler(searcher)

	req := httptest.NewRequest("GET", "/api/flights/search?origin=LED&destination=IST&days=1", nil)
	rec := httptest.NewRecorder()

	handler.SearchFlights(rec, req)

	assert.Equal(t, 200, rec.Code)
	frames := streamFrames(t, rec.Body.String())
	terminal := frames[len(frames)-1]
	assert.Equal(t, "complete", terminal["type"])
	assert.Equal(t, 1.0, terminal["totalFound"])
	assert.Equal(t, 1, searcher.calls)
}
