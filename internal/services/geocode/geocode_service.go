package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arvind-kp/sevaconnect_backend/internal/workflow"
)

// ErrNoResult means neither provider could resolve the query. Callers
// treat it as advisory: the user can always type the address by hand.
var ErrNoResult = errors.New("no geocoding result")

const cacheTTL = 24 * time.Hour

// Service resolves Indian pincodes and device coordinates to address
// details. A keyed primary provider is tried first, then a keyless
// OpenStreetMap fallback. Results per pincode are cached in redis so
// rapid re-queries never hit the providers.
type Service struct {
	Client      *http.Client
	APIKey      string
	PrimaryURL  string
	FallbackURL string
	Cache       *redis.Client // optional
}

func NewService(cache *redis.Client) *Service {
	primary := os.Getenv("GEOCODE_PRIMARY_URL")
	if primary == "" {
		primary = "https://api.geoapify.com/v1/geocode"
	}
	fallback := os.Getenv("GEOCODE_FALLBACK_URL")
	if fallback == "" {
		fallback = "https://nominatim.openstreetmap.org"
	}

	return &Service{
		Client:      &http.Client{Timeout: 10 * time.Second},
		APIKey:      os.Getenv("GEOCODE_API_KEY"),
		PrimaryURL:  primary,
		FallbackURL: fallback,
		Cache:       cache,
	}
}

// primary provider shape (geoapify-style feature collection)
type primaryResponse struct {
	Features []struct {
		Properties struct {
			Formatted string  `json:"formatted"`
			City      string  `json:"city"`
			State     string  `json:"state"`
			Postcode  string  `json:"postcode"`
			Lat       float64 `json:"lat"`
			Lon       float64 `json:"lon"`
		} `json:"properties"`
	} `json:"features"`
}

// fallback provider shape (nominatim)
type fallbackResponse struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
	} `json:"address"`
}

func (r fallbackResponse) city() string {
	if r.Address.City != "" {
		return r.Address.City
	}
	if r.Address.Town != "" {
		return r.Address.Town
	}
	return r.Address.Village
}

// ByPincode forward-geocodes "pincode, India".
func (s *Service) ByPincode(ctx context.Context, pincode string) (workflow.Location, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKey(pincode)).Result(); err == nil {
			var loc workflow.Location
			if json.Unmarshal([]byte(cached), &loc) == nil {
				return loc, nil
			}
		}
	}

	loc, err := s.forwardPrimary(ctx, pincode)
	if err != nil {
		log.Printf("geocode: primary lookup failed for %s: %v", pincode, err)
		loc, err = s.forwardFallback(ctx, pincode)
	}
	if err != nil {
		return workflow.Location{}, err
	}

	if s.Cache != nil {
		if raw, merr := json.Marshal(loc); merr == nil {
			s.Cache.Set(ctx, cacheKey(pincode), raw, cacheTTL)
		}
	}
	return loc, nil
}

// Reverse resolves device coordinates to an address.
func (s *Service) Reverse(ctx context.Context, lat, lng float64) (workflow.Location, error) {
	loc, err := s.reversePrimary(ctx, lat, lng)
	if err != nil {
		log.Printf("geocode: primary reverse failed for %.4f,%.4f: %v", lat, lng, err)
		loc, err = s.reverseFallback(ctx, lat, lng)
	}
	if err != nil {
		return workflow.Location{}, err
	}
	return loc, nil
}

func cacheKey(pincode string) string {
	return "geocode:pincode:" + pincode
}

func (s *Service) forwardPrimary(ctx context.Context, pincode string) (workflow.Location, error) {
	if s.APIKey == "" {
		return workflow.Location{}, errors.New("primary geocoder not configured")
	}
	q := url.Values{}
	q.Set("text", pincode+", India")
	q.Set("filter", "countrycode:in")
	q.Set("format", "geojson")
	q.Set("apiKey", s.APIKey)
	return s.doPrimary(ctx, s.PrimaryURL+"/search?"+q.Encode())
}

func (s *Service) reversePrimary(ctx context.Context, lat, lng float64) (workflow.Location, error) {
	if s.APIKey == "" {
		return workflow.Location{}, errors.New("primary geocoder not configured")
	}
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("format", "geojson")
	q.Set("apiKey", s.APIKey)
	return s.doPrimary(ctx, s.PrimaryURL+"/reverse?"+q.Encode())
}

func (s *Service) doPrimary(ctx context.Context, reqURL string) (workflow.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return workflow.Location{}, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return workflow.Location{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return workflow.Location{}, fmt.Errorf("primary geocoder status %d", resp.StatusCode)
	}

	var body primaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return workflow.Location{}, fmt.Errorf("failed to parse primary response: %w", err)
	}
	if len(body.Features) == 0 {
		return workflow.Location{}, ErrNoResult
	}
	p := body.Features[0].Properties
	return workflow.Location{
		Address:   p.Formatted,
		City:      p.City,
		State:     p.State,
		Pincode:   p.Postcode,
		Latitude:  p.Lat,
		Longitude: p.Lon,
	}, nil
}

func (s *Service) forwardFallback(ctx context.Context, pincode string) (workflow.Location, error) {
	q := url.Values{}
	q.Set("postalcode", pincode)
	q.Set("country", "India")
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.FallbackURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return workflow.Location{}, err
	}
	req.Header.Set("User-Agent", "sevaconnect-backend")

	resp, err := s.Client.Do(req)
	if err != nil {
		return workflow.Location{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return workflow.Location{}, fmt.Errorf("fallback geocoder status %d", resp.StatusCode)
	}

	var results []fallbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return workflow.Location{}, fmt.Errorf("failed to parse fallback response: %w", err)
	}
	if len(results) == 0 {
		return workflow.Location{}, ErrNoResult
	}
	return normalizeFallback(results[0]), nil
}

func (s *Service) reverseFallback(ctx context.Context, lat, lng float64) (workflow.Location, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.FallbackURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return workflow.Location{}, err
	}
	req.Header.Set("User-Agent", "sevaconnect-backend")

	resp, err := s.Client.Do(req)
	if err != nil {
		return workflow.Location{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return workflow.Location{}, fmt.Errorf("fallback geocoder status %d", resp.StatusCode)
	}

	var result fallbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return workflow.Location{}, fmt.Errorf("failed to parse fallback response: %w", err)
	}
	if result.DisplayName == "" {
		return workflow.Location{}, ErrNoResult
	}
	return normalizeFallback(result), nil
}

func normalizeFallback(r fallbackResponse) workflow.Location {
	lat, _ := strconv.ParseFloat(r.Lat, 64)
	lon, _ := strconv.ParseFloat(r.Lon, 64)
	return workflow.Location{
		Address:   r.DisplayName,
		City:      r.city(),
		State:     r.Address.State,
		Pincode:   r.Address.Postcode,
		Latitude:  lat,
		Longitude: lon,
	}
}
