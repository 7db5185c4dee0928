package validation

// Field identifies one input of the provider profile form. Validators are
// keyed by Field so dispatch is a lookup, not a string switch.
type Field string

const (
	FieldFirstName       Field = "first_name"
	FieldLastName        Field = "last_name"
	FieldPhone           Field = "phone"
	FieldExperienceYears Field = "experience_years"
	FieldHourlyRate      Field = "hourly_rate"
	FieldAddress         Field = "address"
	FieldCity            Field = "city"
	FieldState           Field = "state"
	FieldPincode         Field = "pincode"
	FieldBio             Field = "bio"
	FieldQualifications  Field = "qualifications"
	FieldCertifications  Field = "certifications"
	FieldLanguages       Field = "languages"
	FieldAadhaarNumber   Field = "aadhaar_number"
	FieldAadhaarName     Field = "aadhaar_name"
	FieldAadhaarDOB      Field = "aadhaar_dob"
	FieldAadhaarGender   Field = "aadhaar_gender"
)

// AllFields lists every validated field, in form order. Tests iterate this
// to make sure no field is left without a rule.
var AllFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldPhone,
	FieldExperienceYears,
	FieldHourlyRate,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldPincode,
	FieldBio,
	FieldQualifications,
	FieldCertifications,
	FieldLanguages,
	FieldAadhaarNumber,
	FieldAadhaarName,
	FieldAadhaarDOB,
	FieldAadhaarGender,
}

// Result is the outcome of validating a single field.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ok() Result {
	return Result{Valid: true}
}

func fail(msg string) Result {
	return Result{Valid: false, Error: msg}
}
