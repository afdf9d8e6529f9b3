// Package lookup finds a restaurant's dialable phone number from a
// free-form name and location, through the Google Places API.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/orderline-ai/orderline/core/order"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// fieldMask limits the response to what a call needs; Places bills by
// requested fields.
const fieldMask = "places.displayName,places.formattedAddress,places.internationalPhoneNumber"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	apiKey, ok := os.LookupEnv("GOOGLE_PLACES_API_KEY")
	if !ok {
		return nil, fmt.Errorf("google places api key not found")
	}

	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchTextRequest struct {
	TextQuery string `json:"textQuery"`
}

type searchTextResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress         string `json:"formattedAddress"`
		InternationalPhoneNumber string `json:"internationalPhoneNumber"`
	} `json:"places"`
}

// FindRestaurant resolves the best match for a restaurant query like
// "Little Star Pizza, Valencia Street, San Francisco". The returned
// phone number is normalized to E.164.
func (c *Client) FindRestaurant(ctx context.Context, query string) (*order.Business, error) {
	requestBody, err := json.Marshal(searchTextRequest{TextQuery: query})
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/places:searchText", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("non-OK HTTP status %s: %s", resp.Status, body)
	}

	var parsed searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if len(parsed.Places) == 0 {
		return nil, fmt.Errorf("no places found for %q", query)
	}

	place := parsed.Places[0]
	phone, err := NormalizePhoneNumber(place.InternationalPhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("place %q has no dialable number: %w", place.DisplayName.Text, err)
	}

	return &order.Business{
		Name:        place.DisplayName.Text,
		Address:     place.FormattedAddress,
		PhoneNumber: phone,
	}, nil
}
