// Package pokeapi is the client for the upstream Pokémon data API.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/messages"
	"pokeproxy/pkg/metrics"
)

// Upper bound for a response body.
const maxBodySize = 8 << 20

// Client performs the upstream calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL, e.g. https://pokeapi.co/api/v2.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP creates a client using a custom http client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetPokemon returns the raw upstream representation of a pokemon.
func (c *Client) GetPokemon(ctx context.Context, key int) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("%s/pokemon/%d", c.baseURL, key), nil)
}

// ListPokemons returns a raw page of the upstream pokemon list.
func (c *Client) ListPokemons(ctx context.Context, limit int, offset int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	return c.get(ctx, c.baseURL+"/pokemon", params)
}

// FetchPokemon returns the decoded pokemon alongside its raw payload.
func (c *Client) FetchPokemon(ctx context.Context, key int) (*Pokemon, error) {
	raw, err := c.GetPokemon(ctx, key)
	if err != nil {
		return nil, err
	}

	var pokemon Pokemon
	if err := json.Unmarshal(raw, &pokemon); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("%s: %w", messages.FailedToParseMsg, err))
	}
	if pokemon.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("%s: missing name", messages.FailedToParseMsg))
	}
	pokemon.Raw = raw

	return &pokemon, nil
}

// Create the request, run it and check the status code.
// 404 is a not found, any other failure is an upstream error.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf(messages.RequestFailedMsg+": %w", rawURL, err))
	}
	defer resp.Body.Close()

	// Check the status code.
	if resp.StatusCode == http.StatusNotFound {
		metrics.UpstreamRequests.WithLabelValues("not_found").Inc()
		return nil, apperrors.Wrap(apperrors.ErrNotFound.WithMessage(messages.UpstreamNotFound), fmt.Errorf(messages.BadStatusCodeMsg, resp.StatusCode, rawURL))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf(messages.BadStatusCodeMsg, resp.StatusCode, rawURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("%s: %w", messages.FailedToParseMsg, err))
	}
	if !json.Valid(body) {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("%s: invalid json", messages.FailedToParseMsg))
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return json.RawMessage(body), nil
}
