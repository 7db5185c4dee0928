package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nameRe     = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]*$`)
	placeRe    = regexp.MustCompile(`^[A-Za-z][A-Za-z '.\-]*$`)
	languageRe = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]*$`)
	pincodeRe  = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	aadhaarRe  = regexp.MustCompile(`^[2-9][0-9]{11}$`)
	digitsRe   = regexp.MustCompile(`[^0-9]`)
)

// Name validates a person-name field: required, 2-50 chars, letters with
// spaces, hyphens and apostrophes.
func Name(label, value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail(label + " is required")
	}
	if len(v) < 2 || len(v) > 50 {
		return fail(label + " must be 2-50 characters")
	}
	if !nameRe.MatchString(v) {
		return fail(label + " may only contain letters, spaces, hyphens and apostrophes")
	}
	return ok()
}

// Place validates city/state style fields; same as Name but periods are
// also allowed ("Dist. Pune").
func Place(label, value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail(label + " is required")
	}
	if len(v) < 2 || len(v) > 50 {
		return fail(label + " must be 2-50 characters")
	}
	if !placeRe.MatchString(v) {
		return fail(label + " contains invalid characters")
	}
	return ok()
}

// StripPhone removes everything except digits.
func StripPhone(value string) string {
	return digitsRe.ReplaceAllString(value, "")
}

// Phone validates an Indian mobile number: 10 digits starting 6-9, or the
// same with a 91 country prefix. Degenerate numbers (all one digit, the
// ascending 6789012345-style run) are rejected even when they match the
// pattern.
func Phone(value string) Result {
	digits := StripPhone(value)
	if digits == "" {
		return fail("Phone number is required")
	}
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) != 10 {
		return fail("Phone number must be 10 digits (optionally prefixed with +91)")
	}
	if digits[0] < '6' || digits[0] > '9' {
		return fail("Phone number must start with 6, 7, 8 or 9")
	}
	if sameDigits(digits) || ascendingRun(digits) {
		return fail("Phone number looks invalid")
	}
	return ok()
}

func sameDigits(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func ascendingRun(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != '0'+(s[i-1]-'0'+1)%10 {
			return false
		}
	}
	return true
}

// ExperienceYears validates the years-of-experience input against an
// inclusive upper bound (the onboarding form caps at 20, the admin panel
// at 50).
func ExperienceYears(value *int, max int) Result {
	if value == nil {
		return fail("Experience is required")
	}
	if *value < 0 {
		return fail("Experience cannot be negative")
	}
	if *value > max {
		return fail(fmt.Sprintf("Experience must be between 0 and %d years", max))
	}
	return ok()
}

// HourlyRate validates the hourly rate in rupees; optional, 0-10000 when
// present.
func HourlyRate(value *float64) Result {
	if value == nil {
		return ok()
	}
	if *value < 0 {
		return fail("Hourly rate cannot be negative")
	}
	if *value > 10000 {
		return fail("Hourly rate must be at most 10000")
	}
	return ok()
}

// Pincode validates an Indian postal code: exactly 6 digits, no leading
// zero.
func Pincode(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Pincode is required")
	}
	if !pincodeRe.MatchString(v) {
		return fail("Pincode must be 6 digits and cannot start with 0")
	}
	return ok()
}

// Address validates the free-form street address: required, 5-250 chars.
func Address(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Address is required")
	}
	if len(v) < 5 {
		return fail("Address is too short")
	}
	if len(v) > 250 {
		return fail("Address must be at most 250 characters")
	}
	return ok()
}

// Bio is optional, capped at 500 characters.
func Bio(value string) Result {
	if len(strings.TrimSpace(value)) > 500 {
		return fail("Bio must be at most 500 characters")
	}
	return ok()
}

// Qualifications requires every entry non-empty: an empty slot in the list
// is a user mistake, not an omission.
func Qualifications(entries []string) Result {
	if len(entries) > 10 {
		return fail("Maximum 10 qualifications allowed")
	}
	for _, e := range entries {
		t := strings.TrimSpace(e)
		if t == "" {
			return fail("Qualifications cannot contain empty entries")
		}
		if len(t) > 100 {
			return fail("Each qualification must be at most 100 characters")
		}
	}
	return ok()
}

// Certifications tolerates blank slots; only filled entries are checked.
func Certifications(entries []string) Result {
	if len(entries) > 10 {
		return fail("Maximum 10 certifications allowed")
	}
	for _, e := range entries {
		t := strings.TrimSpace(e)
		if t != "" && len(t) > 100 {
			return fail("Each certification must be at most 100 characters")
		}
	}
	return ok()
}

// Languages requires at least one non-blank entry after filtering.
func Languages(entries []string) Result {
	filled := 0
	for _, e := range entries {
		t := strings.TrimSpace(e)
		if t == "" {
			continue
		}
		filled++
		if len(t) > 30 {
			return fail("Each language must be at most 30 characters")
		}
		if !languageRe.MatchString(t) {
			return fail("Languages may only contain letters, spaces, hyphens and apostrophes")
		}
	}
	if filled == 0 {
		return fail("At least one language is required")
	}
	if filled > 10 {
		return fail("Maximum 10 languages allowed")
	}
	return ok()
}

// AadhaarNumber is optional; when present it must be 12 digits starting
// 2-9 after stripping spaces.
func AadhaarNumber(value string) Result {
	v := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if v == "" {
		return ok()
	}
	if !aadhaarRe.MatchString(v) {
		return fail("Aadhaar number must be 12 digits and start with 2-9")
	}
	return ok()
}

// AadhaarDOB is optional; accepts DD/MM/YYYY, DD-MM-YYYY or DD.MM.YYYY,
// must be in the past and imply an age between 18 and 100.
func AadhaarDOB(value string, now time.Time) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return ok()
	}
	var parsed time.Time
	var err error
	for _, layout := range []string{"02/01/2006", "02-01-2006", "02.01.2006"} {
		parsed, err = time.Parse(layout, v)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fail("Date of birth must be in DD/MM/YYYY format")
	}
	if !parsed.Before(now) {
		return fail("Date of birth must be in the past")
	}
	age := now.Year() - parsed.Year()
	if now.YearDay() < parsed.YearDay() {
		age--
	}
	if age < 18 {
		return fail("Provider must be at least 18 years old")
	}
	if age > 100 {
		return fail("Date of birth implies an age above 100")
	}
	return ok()
}

var genders = map[string]bool{
	"Male":        true,
	"Female":      true,
	"Other":       true,
	"Transgender": true,
}

// AadhaarGender is optional; when present it must be one of the fixed set.
func AadhaarGender(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return ok()
	}
	if !genders[v] {
		return fail("Gender must be Male, Female, Other or Transgender")
	}
	return ok()
}
