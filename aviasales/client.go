// aviasales/client.go
package aviasales

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fow830/flyplaza/config"
	"github.com/fow830/flyplaza/models"
)

// Sentinel errors callers branch on.
var (
	// ErrSearchTimeout means the asynchronous search did not complete
	// within the caller's wait budget.
	ErrSearchTimeout = errors.New("search timeout: results not ready within wait budget")
	// ErrSearchFailed means the upstream reported status "error" for
	// an asynchronous search.
	ErrSearchFailed = errors.New("search failed with error status")
)

// SearchParams describes a single priced-itinerary query:
// one (origin, destination, date) triple.
type SearchParams struct {
	Origin      string
	Destination string
	DepartDate  string // YYYY-MM-DD
	Adults      int
	Direct      bool
}

// Client issues price queries against the Aviasales data API.
// No state is retained between calls.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	currency     string
	pollInterval time.Duration
	probeTimeout time.Duration
}

// New builds a client from the loaded configuration and an API token.
func New(cfg config.AviasalesConfig, token string) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Per-request cap; the polling budget is separate.
		},
		baseURL:      cfg.APIBaseURL,
		token:        token,
		currency:     cfg.Currency,
		pollInterval: cfg.PollInterval,
		probeTimeout: cfg.ProbeTimeout,
	}
}

// searchEnvelope covers the object-shaped upstream responses: either an
// asynchronous handle (search_id) or the data under a "data" field.
type searchEnvelope struct {
	SearchID string          `json:"search_id"`
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
}

// resultsResponse is the body of the get_results polling endpoint.
type resultsResponse struct {
	Status string             `json:"status"`
	Data   []models.RawTicket `json:"data"`
}

// SearchTickets returns the raw ticket records for a single date.
// The upstream answers in one of three shapes: a bare JSON array
// (synchronous), an object carrying the tickets under "data", or an
// object with a search_id that must be polled until completion. maxWait
// bounds the polling phase.
func (c *Client) SearchTickets(ctx context.Context, params SearchParams, maxWait time.Duration) ([]models.RawTicket, error) {
	query := url.Values{}
	query.Set("origin", params.Origin)
	query.Set("destination", params.Destination)
	query.Set("departure_at", params.DepartDate)
	query.Set("adults", strconv.Itoa(params.Adults))
	query.Set("currency", c.currency)
	query.Set("one_way", "true")
	query.Set("direct", strconv.FormatBool(params.Direct))
	query.Set("limit", "30")
	query.Set("page", "1")
	query.Set("token", c.token)

	body, err := c.get(ctx, c.baseURL+"/prices_for_dates", query)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// Synchronous response: bare ticket array.
		var tickets []models.RawTicket
		if err := json.Unmarshal(trimmed, &tickets); err != nil {
			return nil, fmt.Errorf("failed to decode ticket array response: %w", err)
		}
		return tickets, nil
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected response shape (not an array or object): %w", err)
	}

	if envelope.SearchID != "" {
		return c.pollResults(ctx, envelope.SearchID, maxWait)
	}

	if len(envelope.Data) > 0 {
		var tickets []models.RawTicket
		if err := json.Unmarshal(envelope.Data, &tickets); err != nil {
			return nil, fmt.Errorf("unexpected response shape: 'data' field is not a ticket array: %w", err)
		}
		return tickets, nil
	}

	return nil, fmt.Errorf("unexpected response shape: no search_id and no data field (body starts with %q)", truncate(trimmed, 120))
}

// pollResults polls the results endpoint every pollInterval until the
// search completes, fails, or the wait budget elapses.
func (c *Client) pollResults(ctx context.Context, searchID string, maxWait time.Duration) ([]models.RawTicket, error) {
	log.Printf("Client: Got search_id %s, polling for results...\n", searchID)
	deadline := time.Now().Add(maxWait)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrSearchTimeout
		}
		wait := c.pollInterval
		if wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		if time.Now().After(deadline) {
			return nil, ErrSearchTimeout
		}

		results, err := c.getResults(ctx, searchID)
		if err != nil {
			return nil, err
		}

		switch results.Status {
		case "completed":
			log.Printf("Client: Search %s completed with %d tickets\n", searchID, len(results.Data))
			return results.Data, nil
		case "error":
			return nil, ErrSearchFailed
		}
		// "pending" / "processing": keep waiting.
	}
}

func (c *Client) getResults(ctx context.Context, searchID string) (*resultsResponse, error) {
	query := url.Values{}
	query.Set("search_id", searchID)
	query.Set("token", c.token)

	body, err := c.get(ctx, c.baseURL+"/get_results", query)
	if err != nil {
		return nil, err
	}

	var results resultsResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results response: %w", err)
	}
	return &results, nil
}

// ProbeDestination issues a throwaway price query to infer whether the
// upstream knows an airport code that is absent from the local
// reference table. A clean 200 means the code exists.
func (c *Client) ProbeDestination(ctx context.Context, code string) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("origin", code)
	query.Set("destination", "LED") // Known-good counterpart for the probe.
	query.Set("departure_at", time.Now().Format("2006-01-02"))
	query.Set("adults", "1")
	query.Set("currency", c.currency)
	query.Set("token", c.token)

	_, err := c.get(probeCtx, c.baseURL+"/prices_for_dates", query)
	return err
}

// get performs one GET request and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed: received status code %d", rawURL, resp.StatusCode)
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
