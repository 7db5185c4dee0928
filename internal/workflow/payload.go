package workflow

import (
	"strings"

	"github.com/google/uuid"
)

// Payload is the assembled submission sent to the profile store: strings
// trimmed, blank list entries dropped, optional fields nil rather than
// zero so the store can tell "absent" from "zero".
type Payload struct {
	ProviderID uuid.UUID `json:"provider_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	CategoryID      *uuid.UUID `json:"category_id"`
	ServiceID       *uuid.UUID `json:"service_id"`
	Specialization  *string    `json:"specialization"`
	ExperienceYears *int       `json:"experience_years"`
	HourlyRate      *float64   `json:"hourly_rate"`

	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Bio            *string  `json:"bio"`
	Qualifications []string `json:"qualifications"`
	Certifications []string `json:"certifications"`
	Languages      []string `json:"languages"`

	PhotoURL *string `json:"photo_url"`

	AadhaarNumber  *string `json:"aadhaar_number"`
	AadhaarName    *string `json:"aadhaar_name"`
	AadhaarDOB     *string `json:"aadhaar_dob"`
	AadhaarGender  *string `json:"aadhaar_gender"`
	AadhaarAddress *string `json:"aadhaar_address"`
}

func optString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func filterBlank(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if t := strings.TrimSpace(e); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// BuildPayload converts the draft into its submission form. Aadhaar
// fields stay nil when no document data was captured, so the store
// records them as null instead of empty strings.
func BuildPayload(d *Draft) Payload {
	return Payload{
		ProviderID: d.ProviderID,

		FirstName: strings.TrimSpace(d.FirstName),
		LastName:  strings.TrimSpace(d.LastName),
		Phone:     strings.TrimSpace(d.Phone),

		CategoryID:      d.CategoryID,
		ServiceID:       d.ServiceID,
		Specialization:  optString(d.Specialization),
		ExperienceYears: d.ExperienceYears,
		HourlyRate:      d.HourlyRate,

		Address:   strings.TrimSpace(d.Address),
		City:      strings.TrimSpace(d.City),
		State:     strings.TrimSpace(d.State),
		Pincode:   strings.TrimSpace(d.Pincode),
		Latitude:  d.Latitude,
		Longitude: d.Longitude,

		Bio:            optString(d.Bio),
		Qualifications: filterBlank(d.Qualifications),
		Certifications: filterBlank(d.Certifications),
		Languages:      filterBlank(d.Languages),

		PhotoURL: optString(d.PhotoURL),

		AadhaarNumber:  optString(strings.ReplaceAll(d.Aadhaar.Number, " ", "")),
		AadhaarName:    optString(d.Aadhaar.Name),
		AadhaarDOB:     optString(d.Aadhaar.DOB),
		AadhaarGender:  optString(d.Aadhaar.Gender),
		AadhaarAddress: optString(d.Aadhaar.Address),
	}
}
