package workflow

import (
	"strings"

	"github.com/google/uuid"
)

// AadhaarDetails are the identity fields extracted from (or typed in for)
// the uploaded ID card. All optional until submission.
type AadhaarDetails struct {
	Number  string `json:"number"`
	Name    string `json:"name"`
	DOB     string `json:"dob"` // DD/MM/YYYY
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

// Draft is the in-progress profile of a provider working through the
// five-step completion flow. It is loaded from and saved back to the
// provider_profiles row between requests; inside a request it is plain
// memory the controller mutates.
type Draft struct {
	ProviderID uuid.UUID `json:"provider_id"`

	// Step 1 - personal
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	// Step 2 - service details. Category, service, specialization and the
	// rate are set by admins; only the experience years are user-editable.
	CategoryID      *uuid.UUID `json:"category_id"`
	ServiceID       *uuid.UUID `json:"service_id"`
	Specialization  string     `json:"specialization"`
	ExperienceYears *int       `json:"experience_years"`
	HourlyRate      *float64   `json:"hourly_rate"`

	// Step 3 - location
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Step 4 - professional
	Bio            string   `json:"bio"`
	Qualifications []string `json:"qualifications"`
	Certifications []string `json:"certifications"`
	Languages      []string `json:"languages"`

	// Step 5 - documents
	PhotoURL      string         `json:"photo_url"`
	FrontImageRef string         `json:"front_image_ref"`
	BackImageRef  string         `json:"back_image_ref"`
	Aadhaar       AadhaarDetails `json:"aadhaar"`

	// ManualAadhaarEntry unlocks typing the identity fields by hand when
	// the extraction service cannot be used.
	ManualAadhaarEntry bool `json:"manual_aadhaar_entry"`

	// LastPincodeQueried is the pincode of the most recent successful
	// geocode lookup; a lookup for it is not issued again until the
	// value changes. Failed lookups are not recorded here.
	LastPincodeQueried string `json:"last_pincode_queried"`
}

// Location is a normalized geocoding result, whichever provider produced
// it.
type Location struct {
	Address   string
	City      string
	State     string
	Pincode   string
	Latitude  float64
	Longitude float64
}

// Extraction carries the identity fields returned by the document
// extraction service. Empty string means the service did not return that
// field.
type Extraction struct {
	Name    string
	DOB     string
	Gender  string
	Address string
	Number  string
}

// mergeLocation fills location fields the user has not typed yet;
// coordinates always win because the user never enters them directly.
func (d *Draft) mergeLocation(loc Location) {
	if strings.TrimSpace(d.City) == "" && loc.City != "" {
		d.City = loc.City
	}
	if strings.TrimSpace(d.State) == "" && loc.State != "" {
		d.State = loc.State
	}
	if strings.TrimSpace(d.Address) == "" && loc.Address != "" {
		d.Address = loc.Address
	}
	if strings.TrimSpace(d.Pincode) == "" && loc.Pincode != "" {
		d.Pincode = loc.Pincode
	}
	if loc.Latitude != 0 || loc.Longitude != 0 {
		lat, lng := loc.Latitude, loc.Longitude
		d.Latitude = &lat
		d.Longitude = &lng
	}
}

// mergeExtraction overwrites the extracted-identity fields with whatever
// the service returned. These fields are machine-owned: re-running the
// extraction is the way to refresh them, so the newest result wins even
// over manual edits.
func (d *Draft) mergeExtraction(ex Extraction) {
	if ex.Number != "" {
		d.Aadhaar.Number = ex.Number
	}
	if ex.Name != "" {
		d.Aadhaar.Name = ex.Name
	}
	if ex.DOB != "" {
		d.Aadhaar.DOB = ex.DOB
	}
	if ex.Gender != "" {
		d.Aadhaar.Gender = ex.Gender
	}
	if ex.Address != "" {
		d.Aadhaar.Address = ex.Address
	}
}
