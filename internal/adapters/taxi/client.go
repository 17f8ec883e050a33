// Package taxi talks to the external taxi-registry pricing API.
package taxi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/platform/obs"
	"trip-fusion-service/internal/ports"
)

// Quoter implements ports.PriceQuoter against the taxi registry inquiry
// endpoint. Quotes are time-sensitive, so failures surface immediately
// instead of being retried. Safe for concurrent use.
type Quoter struct {
	session *http.Client
	baseURL string
	apiKey  string
}

func NewQuoter(baseURL, apiKey string) (*Quoter, error) {
	if baseURL == "" {
		return nil, errors.New("taxi quoter: base URL is empty")
	}
	if apiKey == "" {
		return nil, errors.New("taxi quoter: api key is empty")
	}

	return &Quoter{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// QuotePrice asks the registry for ranked price/time options covering the
// requested vehicle classes.
func (q *Quoter) QuotePrice(ctx context.Context, query ports.PriceQuery) (_ []domain.TaxiOption, err error) {
	defer obs.Time(ctx, "taxi.QuotePrice")(&err)

	assetTypes := make([]string, 0, 3)
	if query.Standard {
		assetTypes = append(assetTypes, assetStandard)
	}
	if query.Minivan {
		assetTypes = append(assetTypes, assetMinivan)
	}
	if query.SpecialNeed {
		assetTypes = append(assetTypes, assetSpecialNeed)
	}
	if len(assetTypes) == 0 {
		return nil, errors.New("taxi: quote price: no vehicle class selected")
	}

	body := inquiryRequest{
		From:          wireStop{Coordinates: wireCoordinates{Lat: query.From.Lat, Lon: query.From.Lon}},
		To:            wireStop{Coordinates: wireCoordinates{Lat: query.To.Lat, Lon: query.To.Lon}},
		UseAssetTypes: assetTypes,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("taxi: marshal inquiry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.baseURL+"/api/inquiry", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("taxi: create inquiry request: %w", err)
	}
	req.Header.Set("X-API-KEY", q.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := q.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taxi: inquiry failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("taxi: inquiry returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var wire inquiryResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("taxi: decode inquiry response: %w", err)
	}

	options := make([]domain.TaxiOption, 0, len(wire.Options))
	for i, o := range wire.Options {
		opt, err := o.toDomain()
		if err != nil {
			return nil, fmt.Errorf("taxi: inquiry option %d: %w", i, err)
		}
		options = append(options, opt)
	}

	return options, nil
}
