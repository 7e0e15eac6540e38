package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const GeocodingBaseURL = "https://geocoding-api.open-meteo.com/v1"

type Place struct {
	Name      string          `json:"name"`
	Country   string          `json:"country"`
	Label     string          `json:"label"`
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
}

type geocodingResponse struct {
	Results []struct {
		Name      string          `json:"name"`
		Country   string          `json:"country"`
		Latitude  decimal.Decimal `json:"latitude"`
		Longitude decimal.Decimal `json:"longitude"`
	} `json:"results"`
}

// GeocodingService resolves the city typed into the profile location field.
type GeocodingService struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

func NewGeocodingService() *GeocodingService {
	return &GeocodingService{
		baseURL: GeocodingBaseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logger.New("geocodingService"),
	}
}

// Lookup returns the best match for name, or types.ErrNotFound.
func (s *GeocodingService) Lookup(ctx context.Context, name string) (*Place, error) {
	log := s.log.TraceFromContext(ctx).Function("Lookup")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, log.ErrorWithType(types.ErrValidation, "location name is required")
	}

	query := url.Values{
		"name":     {name},
		"count":    {"5"},
		"language": {"en"},
		"format":   {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, log.Err("failed to build geocoding request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("geocoding request failed", err, "name", name)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, log.Error("geocoding service returned an error", "status", resp.StatusCode)
	}

	var body geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, log.Err("failed to decode geocoding response", err)
	}

	if len(body.Results) == 0 {
		return nil, fmt.Errorf("%w: no place named %q", types.ErrNotFound, name)
	}

	first := body.Results[0]
	return &Place{
		Name:      first.Name,
		Country:   first.Country,
		Label:     fmt.Sprintf("%s, %s", first.Name, first.Country),
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
	}, nil
}
