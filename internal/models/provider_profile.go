package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProfileStatus string

const (
	ProfileDraft     ProfileStatus = "draft"
	ProfileSubmitted ProfileStatus = "submitted"
)

// ProviderProfile is the persisted form of the completion-flow draft plus
// the admin-managed service assignment. List-valued fields are JSONB
// arrays of strings; the Aadhaar number is stored encrypted.
type ProviderProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	CurrentStep int           `gorm:"not null;default:1" json:"current_step"` // 1..5
	Status      ProfileStatus `gorm:"type:varchar(30);not null;default:'draft'" json:"status"`

	// Step 1 - personal
	FirstName string `gorm:"type:varchar(80)" json:"first_name"`
	LastName  string `gorm:"type:varchar(80)" json:"last_name"`
	Phone     string `gorm:"type:varchar(30)" json:"phone"`

	// Step 2 - service assignment (admin-managed except experience)
	CategoryID      *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	ServiceID       *uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Specialization  string     `gorm:"type:varchar(120)" json:"specialization"`
	ExperienceYears *int       `json:"experience_years"`
	HourlyRate      *float64   `json:"hourly_rate"`

	// Step 3 - location
	Address   string   `gorm:"type:text" json:"address"`
	City      string   `gorm:"type:varchar(120)" json:"city"`
	State     string   `gorm:"type:varchar(120)" json:"state"`
	Pincode   string   `gorm:"type:varchar(10);index" json:"pincode"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Step 4 - professional
	Bio            string         `gorm:"type:text" json:"bio"`
	Qualifications datatypes.JSON `gorm:"type:jsonb" json:"qualifications"`
	Certifications datatypes.JSON `gorm:"type:jsonb" json:"certifications"`
	Languages      datatypes.JSON `gorm:"type:jsonb" json:"languages"`

	// Step 5 - documents
	PhotoURL      string `gorm:"type:text" json:"photo_url"`
	FrontImageRef string `gorm:"type:text" json:"front_image_ref"`
	BackImageRef  string `gorm:"type:text" json:"back_image_ref"`

	AadhaarNumberEnc string `gorm:"type:text" json:"-"` // AES, see utils.EncryptSecret
	AadhaarName      string `gorm:"type:varchar(120)" json:"aadhaar_name"`
	AadhaarDOB       string `gorm:"type:varchar(10)" json:"aadhaar_dob"` // DD/MM/YYYY
	AadhaarGender    string `gorm:"type:varchar(20)" json:"aadhaar_gender"`
	AadhaarAddress   string `gorm:"type:text" json:"aadhaar_address"`

	ManualAadhaarEntry bool   `gorm:"default:false" json:"manual_aadhaar_entry"`
	LastPincodeQueried string `gorm:"type:varchar(10)" json:"-"`

	SubmittedAt *time.Time `json:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
