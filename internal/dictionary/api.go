package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAPIBaseURL is the free dictionary API the game was built against
const DefaultAPIBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// maxBodySize caps how much of an API response is read
const maxBodySize = 1 << 20

// ErrUnexpectedStatus is returned when the API answers with neither 2xx nor 404
var ErrUnexpectedStatus = errors.New("unexpected dictionary API status")

// APIConfig holds configuration for the HTTP dictionary source
type APIConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

// APISource checks words against a dictionaryapi.dev style endpoint:
// GET {base}/{word} returns a JSON array of entries, or 404 when unknown.
type APISource struct {
	baseURL string
	client  *http.Client
}

// NewAPISource creates a new HTTP dictionary source
func NewAPISource(cfg *APIConfig) (*APISource, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultAPIBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &APISource{
		baseURL: base,
		client:  client,
	}, nil
}

// Check implements Source
func (a *APISource) Check(ctx context.Context, word string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var entries []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&entries); err != nil {
		return false, fmt.Errorf("failed to decode dictionary response: %w", err)
	}

	return len(entries) > 0, nil
}
