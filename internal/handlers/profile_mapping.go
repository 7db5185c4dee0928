package handlers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/arvind-kp/sevaconnect_backend/internal/models"
	"github.com/arvind-kp/sevaconnect_backend/internal/utils"
	"github.com/arvind-kp/sevaconnect_backend/internal/workflow"
)

func jsonList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func toJSONList(entries []string) datatypes.JSON {
	if entries == nil {
		entries = []string{}
	}
	raw, _ := json.Marshal(entries)
	return raw
}

// draftFromProfile rebuilds the in-memory draft from its persisted row.
// The Aadhaar number is decrypted here and nowhere else.
func draftFromProfile(p *models.ProviderProfile, secretKey string) (workflow.Draft, error) {
	aadhaar, err := utils.DecryptSecret(p.AadhaarNumberEnc, secretKey)
	if err != nil {
		return workflow.Draft{}, fmt.Errorf("decrypt aadhaar number: %w", err)
	}

	return workflow.Draft{
		ProviderID: p.UserID,

		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,

		CategoryID:      p.CategoryID,
		ServiceID:       p.ServiceID,
		Specialization:  p.Specialization,
		ExperienceYears: p.ExperienceYears,
		HourlyRate:      p.HourlyRate,

		Address:   p.Address,
		City:      p.City,
		State:     p.State,
		Pincode:   p.Pincode,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,

		Bio:            p.Bio,
		Qualifications: jsonList(p.Qualifications),
		Certifications: jsonList(p.Certifications),
		Languages:      jsonList(p.Languages),

		PhotoURL:      p.PhotoURL,
		FrontImageRef: p.FrontImageRef,
		BackImageRef:  p.BackImageRef,
		Aadhaar: workflow.AadhaarDetails{
			Number:  aadhaar,
			Name:    p.AadhaarName,
			DOB:     p.AadhaarDOB,
			Gender:  p.AadhaarGender,
			Address: p.AadhaarAddress,
		},

		ManualAadhaarEntry: p.ManualAadhaarEntry,
		LastPincodeQueried: p.LastPincodeQueried,
	}, nil
}

// applyDraft writes the draft back onto the row.
func applyDraft(p *models.ProviderProfile, d workflow.Draft, secretKey string) error {
	enc, err := utils.EncryptSecret(d.Aadhaar.Number, secretKey)
	if err != nil {
		return fmt.Errorf("encrypt aadhaar number: %w", err)
	}

	p.FirstName = d.FirstName
	p.LastName = d.LastName
	p.Phone = d.Phone

	p.CategoryID = d.CategoryID
	p.ServiceID = d.ServiceID
	p.Specialization = d.Specialization
	p.ExperienceYears = d.ExperienceYears
	p.HourlyRate = d.HourlyRate

	p.Address = d.Address
	p.City = d.City
	p.State = d.State
	p.Pincode = d.Pincode
	p.Latitude = d.Latitude
	p.Longitude = d.Longitude

	p.Bio = d.Bio
	p.Qualifications = toJSONList(d.Qualifications)
	p.Certifications = toJSONList(d.Certifications)
	p.Languages = toJSONList(d.Languages)

	p.PhotoURL = d.PhotoURL
	p.FrontImageRef = d.FrontImageRef
	p.BackImageRef = d.BackImageRef
	p.AadhaarNumberEnc = enc
	p.AadhaarName = d.Aadhaar.Name
	p.AadhaarDOB = d.Aadhaar.DOB
	p.AadhaarGender = d.Aadhaar.Gender
	p.AadhaarAddress = d.Aadhaar.Address

	p.ManualAadhaarEntry = d.ManualAadhaarEntry
	p.LastPincodeQueried = d.LastPincodeQueried

	return nil
}
