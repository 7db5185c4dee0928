package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestService(primary, fallback string) *Service {
	return &Service{
		Client:      &http.Client{Timeout: time.Second},
		APIKey:      "test-key",
		PrimaryURL:  primary,
		FallbackURL: fallback,
	}
}

func TestByPincodePrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"features":[{"properties":{
			"formatted":"MG Road, Bengaluru 560001, India",
			"city":"Bengaluru","state":"Karnataka","postcode":"560001",
			"lat":12.97,"lon":77.59}}]}`))
	}))
	defer primary.Close()

	svc := newTestService(primary.URL, "http://unreachable.invalid")
	loc, err := svc.ByPincode(context.Background(), "560001")
	if err != nil {
		t.Fatal(err)
	}
	if loc.City != "Bengaluru" || loc.State != "Karnataka" || loc.Pincode != "560001" {
		t.Fatalf("unexpected location: %+v", loc)
	}
	if loc.Latitude != 12.97 || loc.Longitude != 77.59 {
		t.Fatalf("coordinates not carried through: %+v", loc)
	}
}

func TestByPincodeFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("postalcode") != "400001" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"display_name":"Fort, Mumbai, Maharashtra, 400001, India",
			"lat":"18.93","lon":"72.83",
			"address":{"city":"Mumbai","state":"Maharashtra","postcode":"400001"}}]`))
	}))
	defer fallback.Close()

	svc := newTestService(primary.URL, fallback.URL)
	loc, err := svc.ByPincode(context.Background(), "400001")
	if err != nil {
		t.Fatal(err)
	}
	if loc.City != "Mumbai" || loc.State != "Maharashtra" {
		t.Fatalf("fallback result not normalized: %+v", loc)
	}
	if loc.Latitude == 0 || loc.Longitude == 0 {
		t.Fatal("fallback string coordinates must be parsed")
	}
}

func TestByPincodeNoResultAnywhere(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer empty.Close()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer primary.Close()

	svc := newTestService(primary.URL, empty.URL)
	_, err := svc.ByPincode(context.Background(), "999999")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestFallbackCityFromTown(t *testing.T) {
	r := fallbackResponse{}
	r.Address.Town = "Ponda"
	if got := r.city(); got != "Ponda" {
		t.Fatalf("expected town to stand in for city, got %q", got)
	}
}

func TestReverseUsesFallbackWithoutKey(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"Connaught Place, New Delhi, 110001, India",
			"lat":"28.63","lon":"77.22",
			"address":{"city":"New Delhi","state":"Delhi","postcode":"110001"}}`))
	}))
	defer fallback.Close()

	svc := newTestService("http://unreachable.invalid", fallback.URL)
	svc.APIKey = "" // primary skipped entirely
	loc, err := svc.Reverse(context.Background(), 28.63, 77.22)
	if err != nil {
		t.Fatal(err)
	}
	if loc.City != "New Delhi" || loc.Pincode != "110001" {
		t.Fatalf("unexpected reverse result: %+v", loc)
	}
}
