package validation

import (
	"strings"
	"testing"
	"time"
)

func TestName(t *testing.T) {
	cases := []struct {
		name  string
		value string
		valid bool
	}{
		{"simple", "Ravi", true},
		{"with space", "Ravi Kumar", true},
		{"hyphenated", "Anne-Marie", true},
		{"apostrophe", "O'Brien", true},
		{"empty", "", false},
		{"one char", "R", false},
		{"digits", "Ravi2", false},
		{"symbols", "Ravi@Kumar", false},
		{"too long", strings.Repeat("a", 51), false},
		{"fifty chars", strings.Repeat("a", 50), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Name("First name", tc.value)
			if got.Valid != tc.valid {
				t.Fatalf("Name(%q) valid = %v, want %v (%s)", tc.value, got.Valid, tc.valid, got.Error)
			}
			if !got.Valid && got.Error == "" {
				t.Fatal("invalid result must carry an error message")
			}
		})
	}
}

func TestPlaceAllowsPeriod(t *testing.T) {
	if got := Place("City", "Dist. Pune"); !got.Valid {
		t.Fatalf("expected period to be allowed in place names: %s", got.Error)
	}
	if got := Name("First name", "Dist. Pune"); got.Valid {
		t.Fatal("period must not be allowed in person names")
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		name  string
		value string
		valid bool
	}{
		{"plain 10 digit", "9876543210", true},
		{"starts 6", "6123456780", true},
		{"with 91 prefix", "919876543210", true},
		{"with plus and spaces", "+91 98765 43210", true},
		{"starts 5", "5876543210", false},
		{"nine digits", "987654321", false},
		{"eleven digits", "98765432100", false},
		{"all same", "9999999999", false},
		{"all same via 91", "919999999999", false},
		{"ascending run", "6789012345", false},
		{"empty", "", false},
		{"letters only", "abcdefghij", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Phone(tc.value)
			if got.Valid != tc.valid {
				t.Fatalf("Phone(%q) valid = %v, want %v (%s)", tc.value, got.Valid, tc.valid, got.Error)
			}
		})
	}
}

func TestPincode(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"400001", true},
		{"560001", true},
		{"04000", false},
		{"000001", false},
		{"40000", false},
		{"4000011", false},
		{"", false},
		{"40000a", false},
	}
	for _, tc := range cases {
		got := Pincode(tc.value)
		if got.Valid != tc.valid {
			t.Errorf("Pincode(%q) valid = %v, want %v", tc.value, got.Valid, tc.valid)
		}
	}
}

func TestExperienceYears(t *testing.T) {
	five, fifty, neg := 5, 50, -1
	if got := ExperienceYears(nil, 20); got.Valid {
		t.Fatal("nil experience must be invalid")
	}
	if got := ExperienceYears(&five, 20); !got.Valid {
		t.Fatalf("5 years should pass: %s", got.Error)
	}
	if got := ExperienceYears(&fifty, 20); got.Valid {
		t.Fatal("50 must fail against the 20-year cap")
	}
	if got := ExperienceYears(&fifty, 50); !got.Valid {
		t.Fatalf("50 should pass against the 50-year cap: %s", got.Error)
	}
	if got := ExperienceYears(&neg, 50); got.Valid {
		t.Fatal("negative experience must fail")
	}
}

func TestHourlyRate(t *testing.T) {
	if got := HourlyRate(nil); !got.Valid {
		t.Fatal("absent rate is allowed")
	}
	over := 10001.0
	if got := HourlyRate(&over); got.Valid {
		t.Fatal("rate above 10000 must fail")
	}
	edge := 10000.0
	if got := HourlyRate(&edge); !got.Valid {
		t.Fatalf("rate of exactly 10000 should pass: %s", got.Error)
	}
}

func TestQualifications(t *testing.T) {
	ten := make([]string, 10)
	for i := range ten {
		ten[i] = "B.Tech"
	}
	if got := Qualifications(ten); !got.Valid {
		t.Fatalf("10 entries should pass: %s", got.Error)
	}
	eleven := append(append([]string{}, ten...), "M.Tech")
	got := Qualifications(eleven)
	if got.Valid {
		t.Fatal("11 entries must fail")
	}
	if !strings.Contains(got.Error, "10") {
		t.Fatalf("error should mention the limit of 10, got %q", got.Error)
	}
	if got := Qualifications([]string{"B.Tech", "  "}); got.Valid {
		t.Fatal("blank qualification entry must fail")
	}
	if got := Qualifications([]string{strings.Repeat("x", 101)}); got.Valid {
		t.Fatal("entry above 100 chars must fail")
	}
}

func TestCertificationsSkipBlanks(t *testing.T) {
	if got := Certifications([]string{"", "  "}); !got.Valid {
		t.Fatalf("blank-only certifications are allowed: %s", got.Error)
	}
	if got := Certifications([]string{strings.Repeat("x", 101)}); got.Valid {
		t.Fatal("filled entry above 100 chars must fail")
	}
}

func TestLanguages(t *testing.T) {
	if got := Languages(nil); got.Valid {
		t.Fatal("empty language list must fail")
	}
	if got := Languages([]string{"", "   "}); got.Valid {
		t.Fatal("blank-only language list must fail")
	}
	if got := Languages([]string{"English"}); !got.Valid {
		t.Fatalf("single language should pass: %s", got.Error)
	}
	if got := Languages([]string{"English", "Hindi2"}); got.Valid {
		t.Fatal("digits in a language must fail")
	}
	if got := Languages([]string{strings.Repeat("a", 31)}); got.Valid {
		t.Fatal("language above 30 chars must fail")
	}
}

func TestAadhaarNumber(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"", true},
		{"234567890123", true},
		{"2345 6789 0123", true},
		{"1234 5678 9012", false},
		{"23456789012", false},
		{"2345678901234", false},
		{"23456789012a", false},
	}
	for _, tc := range cases {
		got := AadhaarNumber(tc.value)
		if got.Valid != tc.valid {
			t.Errorf("AadhaarNumber(%q) valid = %v, want %v", tc.value, got.Valid, tc.valid)
		}
	}
}

func TestAadhaarDOB(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		value string
		valid bool
	}{
		{"empty is allowed", "", true},
		{"slash format", "15/08/1990", true},
		{"dash format", "15-08-1990", true},
		{"dot format", "15.08.1990", true},
		{"future", "15/08/2030", false},
		{"under 18", "15/08/2010", false},
		{"over 100", "15/08/1910", false},
		{"garbage", "1990-08-15", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AadhaarDOB(tc.value, now)
			if got.Valid != tc.valid {
				t.Fatalf("AadhaarDOB(%q) valid = %v, want %v (%s)", tc.value, got.Valid, tc.valid, got.Error)
			}
		})
	}
}

func TestAadhaarGender(t *testing.T) {
	for _, v := range []string{"", "Male", "Female", "Other", "Transgender"} {
		if got := AadhaarGender(v); !got.Valid {
			t.Errorf("AadhaarGender(%q) should pass: %s", v, got.Error)
		}
	}
	for _, v := range []string{"male", "M", "unknown"} {
		if got := AadhaarGender(v); got.Valid {
			t.Errorf("AadhaarGender(%q) must fail", v)
		}
	}
}
