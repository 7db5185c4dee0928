package workflow

import (
	"time"

	"github.com/arvind-kp/sevaconnect_backend/internal/validation"
)

// Step is one of the five stages of the completion flow, 1-based to match
// what the client shows.
type Step int

const (
	StepPersonal Step = iota + 1
	StepService
	StepLocation
	StepProfessional
	StepDocuments
)

const StepCount = 5

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepService:
		return "service_details"
	case StepLocation:
		return "location"
	case StepProfessional:
		return "professional"
	case StepDocuments:
		return "documents"
	default:
		return "unknown"
	}
}

// Experience is capped at 20 years on the completion form; admins may
// record up to 50 when they manage a profile directly.
const (
	FormExperienceCap  = 20
	AdminExperienceCap = 50
)

var stepFields = map[Step][]validation.Field{
	StepPersonal: {
		validation.FieldFirstName,
		validation.FieldLastName,
		validation.FieldPhone,
	},
	// Category, service, specialization and rate are admin-controlled and
	// excluded from user-side validation.
	StepService: {
		validation.FieldExperienceYears,
	},
	StepLocation: {
		validation.FieldAddress,
		validation.FieldCity,
		validation.FieldState,
		validation.FieldPincode,
	},
	StepProfessional: {
		validation.FieldBio,
		validation.FieldQualifications,
		validation.FieldCertifications,
		validation.FieldLanguages,
	},
	StepDocuments: {
		validation.FieldAadhaarNumber,
		validation.FieldAadhaarName,
		validation.FieldAadhaarDOB,
		validation.FieldAadhaarGender,
	},
}

// fieldRules maps every field to its rule against the draft. A test
// checks the map covers validation.AllFields.
var fieldRules = map[validation.Field]func(*Draft) validation.Result{
	validation.FieldFirstName: func(d *Draft) validation.Result {
		return validation.Name("First name", d.FirstName)
	},
	validation.FieldLastName: func(d *Draft) validation.Result {
		return validation.Name("Last name", d.LastName)
	},
	validation.FieldPhone: func(d *Draft) validation.Result {
		return validation.Phone(d.Phone)
	},
	validation.FieldExperienceYears: func(d *Draft) validation.Result {
		return validation.ExperienceYears(d.ExperienceYears, FormExperienceCap)
	},
	validation.FieldHourlyRate: func(d *Draft) validation.Result {
		return validation.HourlyRate(d.HourlyRate)
	},
	validation.FieldAddress: func(d *Draft) validation.Result {
		return validation.Address(d.Address)
	},
	validation.FieldCity: func(d *Draft) validation.Result {
		return validation.Place("City", d.City)
	},
	validation.FieldState: func(d *Draft) validation.Result {
		return validation.Place("State", d.State)
	},
	validation.FieldPincode: func(d *Draft) validation.Result {
		return validation.Pincode(d.Pincode)
	},
	validation.FieldBio: func(d *Draft) validation.Result {
		return validation.Bio(d.Bio)
	},
	validation.FieldQualifications: func(d *Draft) validation.Result {
		return validation.Qualifications(d.Qualifications)
	},
	validation.FieldCertifications: func(d *Draft) validation.Result {
		return validation.Certifications(d.Certifications)
	},
	validation.FieldLanguages: func(d *Draft) validation.Result {
		return validation.Languages(d.Languages)
	},
	validation.FieldAadhaarNumber: func(d *Draft) validation.Result {
		return validation.AadhaarNumber(d.Aadhaar.Number)
	},
	validation.FieldAadhaarName: func(d *Draft) validation.Result {
		// Optional until extraction or manual entry fills it.
		if d.Aadhaar.Name == "" {
			return validation.Result{Valid: true}
		}
		return validation.Name("Name on Aadhaar", d.Aadhaar.Name)
	},
	validation.FieldAadhaarDOB: func(d *Draft) validation.Result {
		return validation.AadhaarDOB(d.Aadhaar.DOB, time.Now())
	},
	validation.FieldAadhaarGender: func(d *Draft) validation.Result {
		return validation.AadhaarGender(d.Aadhaar.Gender)
	},
}

// StepState is the validation snapshot of one step.
type StepState struct {
	Step    Step
	Results map[validation.Field]validation.Result
	Valid   bool
}

// FirstError returns the message of the first failing field in form
// order, or "" when the step is valid.
func (s StepState) FirstError() string {
	for _, f := range stepFields[s.Step] {
		if r, okr := s.Results[f]; okr && !r.Valid {
			return r.Error
		}
	}
	return ""
}

// FieldsForStep returns the fields validated at the given step, in form
// order.
func FieldsForStep(s Step) []validation.Field {
	return stepFields[s]
}

// ValidateStep runs every rule of the step against the draft.
func ValidateStep(s Step, d *Draft) StepState {
	state := StepState{
		Step:    s,
		Results: make(map[validation.Field]validation.Result, len(stepFields[s])),
		Valid:   true,
	}
	for _, f := range stepFields[s] {
		r := fieldRules[f](d)
		state.Results[f] = r
		if !r.Valid {
			state.Valid = false
		}
	}
	return state
}

// ValidateField runs a single field's rule; used by the PATCH handlers to
// report errors while the user types.
func ValidateField(f validation.Field, d *Draft) validation.Result {
	rule, okr := fieldRules[f]
	if !okr {
		return validation.Result{Valid: true}
	}
	return rule(d)
}
