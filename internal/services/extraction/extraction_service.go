package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// Errors the caller is expected to branch on. Payment-required and
// not-configured both mean extraction cannot work for this deployment;
// the workflow reacts by unlocking manual entry rather than retrying.
var (
	ErrPaymentRequired = errors.New("extraction service payment required")
	ErrNotConfigured   = errors.New("extraction service not configured")
)

// Fields are the identity values read off an Aadhaar card. Every field is
// optional; whatever the service could not read comes back empty.
type Fields struct {
	Name     string `json:"name"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
	IDNumber string `json:"id_number"`
}

// Service calls the external OCR provider. One endpoint takes a single
// side plus an indicator, the other takes front and back in one request.
type Service struct {
	Client  *http.Client
	APIKey  string
	BaseURL string
}

func NewService() *Service {
	baseURL := os.Getenv("EXTRACTION_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.docscan.example.com/v1"
	}
	return &Service{
		Client:  &http.Client{Timeout: 30 * time.Second},
		APIKey:  os.Getenv("EXTRACTION_API_KEY"),
		BaseURL: baseURL,
	}
}

type extractRequest struct {
	ImageURL      string `json:"image_url,omitempty"`
	Side          string `json:"side,omitempty"`
	FrontImageURL string `json:"front_image_url,omitempty"`
	BackImageURL  string `json:"back_image_url,omitempty"`
}

type extractResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    Fields `json:"data"`
}

// ExtractSingle reads one side of the card.
func (s *Service) ExtractSingle(ctx context.Context, imageURL, side string) (Fields, error) {
	return s.do(ctx, "/extract/aadhaar", extractRequest{ImageURL: imageURL, Side: side})
}

// ExtractPair reads both sides in a single call.
func (s *Service) ExtractPair(ctx context.Context, frontURL, backURL string) (Fields, error) {
	return s.do(ctx, "/extract/aadhaar/combined", extractRequest{
		FrontImageURL: frontURL,
		BackImageURL:  backURL,
	})
}

func (s *Service) do(ctx context.Context, path string, body extractRequest) (Fields, error) {
	if s.APIKey == "" {
		return Fields{}, ErrNotConfigured
	}

	jsonBody, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return Fields{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return Fields{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired {
		return Fields{}, ErrPaymentRequired
	}

	var apiResp extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Fields{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if !apiResp.Success {
		switch apiResp.Code {
		case "payment_required":
			return Fields{}, ErrPaymentRequired
		case "not_configured":
			return Fields{}, ErrNotConfigured
		}
		return Fields{}, fmt.Errorf("extraction failed: %s", apiResp.Message)
	}

	return normalize(apiResp.Data), nil
}

var (
	dobSeparators = strings.NewReplacer("-", "/", ".", "/")
	spaceRe       = regexp.MustCompile(`\s+`)
	nonDigitRe    = regexp.MustCompile(`[^0-9]`)
)

func normalize(f Fields) Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.DOB = NormalizeDOB(f.DOB)
	f.Gender = normalizeGender(f.Gender)
	f.Address = CollapseWhitespace(f.Address)
	f.IDNumber = nonDigitRe.ReplaceAllString(f.IDNumber, "")
	return f
}

// NormalizeDOB rewrites DD-MM-YYYY and DD.MM.YYYY to DD/MM/YYYY. Values
// in any other shape pass through untouched and get caught by validation.
func NormalizeDOB(dob string) string {
	return dobSeparators.Replace(strings.TrimSpace(dob))
}

// CollapseWhitespace flattens the newline-riddled address block OCR
// produces into a single line.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func normalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "m", "male":
		return "Male"
	case "f", "female":
		return "Female"
	case "t", "transgender":
		return "Transgender"
	case "o", "other":
		return "Other"
	case "":
		return ""
	}
	return strings.TrimSpace(g)
}

// GroupID formats a 12-digit Aadhaar number as "XXXX XXXX XXXX" for
// display. Anything that is not 12 digits is returned as-is.
func GroupID(id string) string {
	digits := nonDigitRe.ReplaceAllString(id, "")
	if len(digits) != 12 {
		return id
	}
	return digits[0:4] + " " + digits[4:8] + " " + digits[8:12]
}
