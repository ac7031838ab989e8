package location

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nattawatp/quakewatch/internal/models"
)

const (
	// DefaultIPAPIURL and DefaultGeolocationDBURL are the two public
	// IP-geolocation endpoints tried in order.
	DefaultIPAPIURL         = "https://ipapi.co/json/"
	DefaultGeolocationDBURL = "https://geolocation-db.com/json/"

	lookupTimeout = 5 * time.Second
)

// looseFloat decodes a JSON number, a numeric string, or placeholder text
// like "Not found" (which geolocation-db emits for unknown fields) to a
// float, defaulting to 0.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

// IPAPIProvider queries ipapi.co.
type IPAPIProvider struct {
	url    string
	client *http.Client
}

func NewIPAPIProvider(url string) *IPAPIProvider {
	if url == "" {
		url = DefaultIPAPIURL
	}
	return &IPAPIProvider{
		url:    url,
		client: &http.Client{Timeout: lookupTimeout},
	}
}

func (p *IPAPIProvider) Name() string { return "ipapi" }

func (p *IPAPIProvider) Lookup(ctx context.Context) (models.UserLocation, error) {
	var payload struct {
		Latitude    looseFloat `json:"latitude"`
		Longitude   looseFloat `json:"longitude"`
		City        string     `json:"city"`
		Region      string     `json:"region"`
		CountryName string     `json:"country_name"`
		Country     string     `json:"country"`
		Timezone    string     `json:"timezone"`
		Error       bool       `json:"error"`
	}
	if err := getJSON(ctx, p.client, p.url, &payload); err != nil {
		return models.UserLocation{}, err
	}
	if payload.Error {
		return models.UserLocation{}, fmt.Errorf("ipapi returned error payload")
	}

	country := payload.CountryName
	if country == "" {
		country = payload.Country
	}
	return models.UserLocation{
		Latitude:  float64(payload.Latitude),
		Longitude: float64(payload.Longitude),
		City:      orUnknown(payload.City),
		Region:    orUnknown(payload.Region),
		Country:   orUnknown(country),
		Timezone:  orDefault(payload.Timezone, "UTC"),
	}, nil
}

// GeolocationDBProvider queries geolocation-db.com.
type GeolocationDBProvider struct {
	url    string
	client *http.Client
}

func NewGeolocationDBProvider(url string) *GeolocationDBProvider {
	if url == "" {
		url = DefaultGeolocationDBURL
	}
	return &GeolocationDBProvider{
		url:    url,
		client: &http.Client{Timeout: lookupTimeout},
	}
}

func (p *GeolocationDBProvider) Name() string { return "geolocation-db" }

func (p *GeolocationDBProvider) Lookup(ctx context.Context) (models.UserLocation, error) {
	var payload struct {
		Latitude    looseFloat `json:"latitude"`
		Longitude   looseFloat `json:"longitude"`
		City        string     `json:"city"`
		State       string     `json:"state"`
		CountryName string     `json:"country_name"`
	}
	if err := getJSON(ctx, p.client, p.url, &payload); err != nil {
		return models.UserLocation{}, err
	}
	if payload.Latitude == 0 && payload.Longitude == 0 {
		return models.UserLocation{}, fmt.Errorf("geolocation-db returned no coordinates")
	}

	return models.UserLocation{
		Latitude:  float64(payload.Latitude),
		Longitude: float64(payload.Longitude),
		City:      orUnknown(payload.City),
		Region:    orUnknown(payload.State),
		Country:   orUnknown(payload.CountryName),
		Timezone:  "UTC",
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return nil
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
