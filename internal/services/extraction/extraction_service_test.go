package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestService(baseURL string) *Service {
	return &Service{
		Client:  &http.Client{Timeout: time.Second},
		APIKey:  "test-key",
		BaseURL: baseURL,
	}
}

func TestExtractSingleNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract/aadhaar" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req extractRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Side != "front" {
			t.Errorf("side indicator missing, got %q", req.Side)
		}
		w.Write([]byte(`{"success":true,"data":{
			"name":"  Ravi Kumar ",
			"dob":"15-08-1990",
			"gender":"MALE",
			"address":"12 MG Road\n  Bengaluru\nKarnataka",
			"id_number":"2345 6789 0123"}}`))
	}))
	defer srv.Close()

	got, err := newTestService(srv.URL).ExtractSingle(context.Background(), "front.jpg", "front")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Ravi Kumar" {
		t.Errorf("name not trimmed: %q", got.Name)
	}
	if got.DOB != "15/08/1990" {
		t.Errorf("DOB not normalized: %q", got.DOB)
	}
	if got.Gender != "Male" {
		t.Errorf("gender not normalized: %q", got.Gender)
	}
	if got.Address != "12 MG Road Bengaluru Karnataka" {
		t.Errorf("address whitespace not collapsed: %q", got.Address)
	}
	if got.IDNumber != "234567890123" {
		t.Errorf("id number not stripped: %q", got.IDNumber)
	}
}

func TestExtractPairUsesCombinedEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"success":true,"data":{"name":"Ravi Kumar"}}`))
	}))
	defer srv.Close()

	if _, err := newTestService(srv.URL).ExtractPair(context.Background(), "f.jpg", "b.jpg"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/extract/aadhaar/combined" {
		t.Fatalf("expected combined endpoint, got %s", gotPath)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"http 402", http.StatusPaymentRequired, "", ErrPaymentRequired},
		{"payment code", http.StatusOK, `{"success":false,"code":"payment_required"}`, ErrPaymentRequired},
		{"not configured code", http.StatusOK, `{"success":false,"code":"not_configured"}`, ErrNotConfigured},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestService(srv.URL).ExtractSingle(context.Background(), "f.jpg", "front")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGenericFailureIsNotSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"code":"bad_image","message":"image too blurry"}`))
	}))
	defer srv.Close()

	_, err := newTestService(srv.URL).ExtractSingle(context.Background(), "f.jpg", "front")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrPaymentRequired) || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("generic failure must not map to a sentinel: %v", err)
	}
}

func TestMissingKeyIsNotConfigured(t *testing.T) {
	svc := newTestService("http://unreachable.invalid")
	svc.APIKey = ""
	_, err := svc.ExtractSingle(context.Background(), "f.jpg", "front")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGroupID(t *testing.T) {
	if got := GroupID("234567890123"); got != "2345 6789 0123" {
		t.Fatalf("GroupID = %q", got)
	}
	if got := GroupID("12345"); got != "12345" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}
