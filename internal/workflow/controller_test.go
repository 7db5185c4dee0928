package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type stubGeocoder struct {
	byPincode func(pincode string) (Location, error)
	calls     int
}

func (g *stubGeocoder) ByPincode(_ context.Context, pincode string) (Location, error) {
	g.calls++
	if g.byPincode != nil {
		return g.byPincode(pincode)
	}
	return Location{}, nil
}

func (g *stubGeocoder) Reverse(_ context.Context, lat, lng float64) (Location, error) {
	g.calls++
	return Location{City: "Bengaluru", State: "Karnataka", Latitude: lat, Longitude: lng}, nil
}

type stubExtractor struct {
	single   int
	combined int
	result   Extraction
	err      error
}

func (e *stubExtractor) ExtractSide(_ context.Context, _ string, _ DocumentSide) (Extraction, error) {
	e.single++
	return e.result, e.err
}

func (e *stubExtractor) ExtractPair(_ context.Context, _, _ string) (Extraction, error) {
	e.combined++
	return e.result, e.err
}

type stubSubmitter struct {
	err      error
	payloads []Payload
}

func (s *stubSubmitter) SubmitProfile(_ context.Context, p Payload) error {
	s.payloads = append(s.payloads, p)
	return s.err
}

func validDraft() *Draft {
	exp := 5
	return &Draft{
		ProviderID:      uuid.New(),
		FirstName:       "Ravi",
		LastName:        "Kumar",
		Phone:           "9876543210",
		ExperienceYears: &exp,
		Address:         "12 MG Road",
		City:            "Bengaluru",
		State:           "Karnataka",
		Pincode:         "560001",
		Qualifications:  []string{"B.Tech"},
		Languages:       []string{"English"},
	}
}

func TestNextBlockedUntilStepValid(t *testing.T) {
	d := &Draft{FirstName: "Ravi", LastName: "Kumar"}
	c := New(d, StepPersonal, Deps{})

	state := c.Next()
	if state.Valid {
		t.Fatal("empty phone must block Next")
	}
	if c.Step() != StepPersonal {
		t.Fatalf("step advanced despite invalid state: %v", c.Step())
	}

	c.Apply(func(d *Draft) { d.Phone = "9876543210" })
	state = c.Next()
	if !state.Valid {
		t.Fatalf("step should now be valid: %s", state.FirstError())
	}
	if c.Step() != StepService {
		t.Fatalf("expected step 2, got %v", c.Step())
	}
}

func TestPreviousNeverValidates(t *testing.T) {
	c := New(&Draft{}, StepLocation, Deps{})
	if got := c.Previous(); got != StepService {
		t.Fatalf("expected step 2, got %v", got)
	}
	c.Previous()
	if got := c.Previous(); got != StepPersonal {
		t.Fatalf("previous must floor at step 1, got %v", got)
	}
}

func TestNextCapsAtDocuments(t *testing.T) {
	c := New(validDraft(), StepDocuments, Deps{})
	c.Next()
	if c.Step() != StepDocuments {
		t.Fatalf("step must cap at 5, got %v", c.Step())
	}
}

func TestSubmitEnumeratesMissingFields(t *testing.T) {
	d := validDraft()
	d.City = ""
	sub := &stubSubmitter{}
	c := New(d, StepDocuments, Deps{Submitter: sub})

	res := c.Submit(context.Background())
	if res.Submitted {
		t.Fatal("submit must be blocked")
	}
	found := false
	for _, m := range res.Missing {
		if m == "city" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing list must enumerate city, got %v", res.Missing)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("no payload may reach the store when fields are missing")
	}
}

func TestSubmitHappyPathOmitsAadhaar(t *testing.T) {
	sub := &stubSubmitter{}
	c := New(validDraft(), StepDocuments, Deps{Submitter: sub})

	res := c.Submit(context.Background())
	if !res.Submitted {
		t.Fatalf("submit should succeed: missing=%v err=%v", res.Missing, res.Err)
	}
	if !c.Succeeded() {
		t.Fatal("controller must record success")
	}
	if len(sub.payloads) != 1 {
		t.Fatalf("expected one submission, got %d", len(sub.payloads))
	}
	p := sub.payloads[0]
	if p.AadhaarNumber != nil || p.AadhaarName != nil || p.AadhaarDOB != nil {
		t.Fatal("Aadhaar fields must be null when no documents were provided")
	}
	if p.Bio != nil {
		t.Fatal("empty bio must be null in the payload")
	}
}

func TestSubmitRejectedBeforeDocumentsStep(t *testing.T) {
	sub := &stubSubmitter{}
	c := New(validDraft(), StepLocation, Deps{Submitter: sub})

	res := c.Submit(context.Background())
	if res.Submitted {
		t.Fatal("submit must be rejected before the documents step")
	}
	if !errors.Is(res.Err, ErrNotOnDocumentsStep) {
		t.Fatalf("expected the not-on-documents sentinel, got %v", res.Err)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("no payload may reach the store")
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	sub := &stubSubmitter{err: ErrStoreNotProvisioned}
	d := validDraft()
	c := New(d, StepDocuments, Deps{Submitter: sub})

	res := c.Submit(context.Background())
	if res.Submitted || c.Succeeded() {
		t.Fatal("a failed submit must not count as success")
	}
	if !errors.Is(res.Err, ErrStoreNotProvisioned) {
		t.Fatalf("expected store-not-provisioned, got %v", res.Err)
	}
	if c.Step() != StepDocuments {
		t.Fatal("the flow must stay on the documents step after a failure")
	}
	if got := c.Draft(); got.FirstName != "Ravi" {
		t.Fatal("the draft must survive a failed submit")
	}
}

func TestPincodeLookupSuppressedWhenUnchanged(t *testing.T) {
	geo := &stubGeocoder{byPincode: func(string) (Location, error) {
		return Location{City: "Mumbai", State: "Maharashtra"}, nil
	}}
	d := &Draft{Pincode: "400001"}
	c := New(d, StepLocation, Deps{Geocoder: geo})

	applied, err := c.LookupPincode(context.Background())
	if err != nil || !applied {
		t.Fatalf("first lookup should apply: applied=%v err=%v", applied, err)
	}
	applied, _ = c.LookupPincode(context.Background())
	if applied {
		t.Fatal("second lookup for the same pincode must be suppressed")
	}
	if geo.calls != 1 {
		t.Fatalf("expected exactly one geocoder call, got %d", geo.calls)
	}
}

func TestPincodeLookupRetriesAfterFailure(t *testing.T) {
	attempts := 0
	geo := &stubGeocoder{byPincode: func(string) (Location, error) {
		attempts++
		if attempts == 1 {
			return Location{}, errors.New("provider timeout")
		}
		return Location{City: "Mumbai", State: "Maharashtra"}, nil
	}}
	d := &Draft{Pincode: "400001"}
	c := New(d, StepLocation, Deps{Geocoder: geo})

	if applied, err := c.LookupPincode(context.Background()); err == nil || applied {
		t.Fatalf("first lookup should fail: applied=%v err=%v", applied, err)
	}
	if got := c.Draft(); got.LastPincodeQueried != "" {
		t.Fatalf("a failed lookup must not be recorded, got %q", got.LastPincodeQueried)
	}

	applied, err := c.LookupPincode(context.Background())
	if err != nil || !applied {
		t.Fatalf("re-click for the same pincode must reach the geocoder: applied=%v err=%v", applied, err)
	}
	if geo.calls != 2 {
		t.Fatalf("expected two geocoder calls, got %d", geo.calls)
	}
	if got := c.Draft(); got.City != "Mumbai" {
		t.Fatalf("retry result not merged, city=%q", got.City)
	}
}

func TestPincodeLookupFillsOnlyBlanks(t *testing.T) {
	geo := &stubGeocoder{byPincode: func(string) (Location, error) {
		return Location{City: "Mumbai", State: "Maharashtra", Address: "Fort Area", Latitude: 18.9, Longitude: 72.8}, nil
	}}
	d := &Draft{Pincode: "400001", City: "Navi Mumbai"}
	c := New(d, StepLocation, Deps{Geocoder: geo})

	if _, err := c.LookupPincode(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := c.Draft()
	if got.City != "Navi Mumbai" {
		t.Fatalf("user-entered city must be preserved, got %q", got.City)
	}
	if got.State != "Maharashtra" || got.Address != "Fort Area" {
		t.Fatal("blank fields must be filled from the lookup")
	}
	if got.Latitude == nil || *got.Latitude != 18.9 {
		t.Fatal("coordinates must always be set")
	}
}

func TestStaleLookupDiscarded(t *testing.T) {
	release := make(chan struct{})
	geo := &stubGeocoder{byPincode: func(pin string) (Location, error) {
		if pin == "400001" {
			<-release
			return Location{City: "Mumbai"}, nil
		}
		return Location{City: "Bengaluru"}, nil
	}}
	d := &Draft{Pincode: "400001"}
	c := New(d, StepLocation, Deps{Geocoder: geo})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.LookupPincode(context.Background())
	}()

	// A newer pincode lands while the first lookup is still in flight.
	c.Apply(func(d *Draft) { d.Pincode = "560001" })
	if _, err := c.LookupPincode(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(release)
	<-done

	if got := c.Draft(); got.City != "Bengaluru" {
		t.Fatalf("stale response must not overwrite the newer result, got %q", got.City)
	}
}

func TestFrontThenBackTriggersOneCombinedCall(t *testing.T) {
	ex := &stubExtractor{result: Extraction{Name: "Ravi Kumar"}}
	c := New(&Draft{}, StepDocuments, Deps{Extractor: ex})

	if err := c.DocumentUploaded(context.Background(), SideFront, "front.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := c.DocumentUploaded(context.Background(), SideBack, "back.jpg"); err != nil {
		t.Fatal(err)
	}

	if ex.single != 1 {
		t.Fatalf("expected one single-side call for the lone front image, got %d", ex.single)
	}
	if ex.combined != 1 {
		t.Fatalf("expected exactly one combined call once both sides exist, got %d", ex.combined)
	}
	if got := c.Draft(); got.Aadhaar.Name != "Ravi Kumar" {
		t.Fatalf("extraction result not merged: %+v", got.Aadhaar)
	}
}

func TestUnavailableExtractorUnlocksManualEntry(t *testing.T) {
	ex := &stubExtractor{err: ErrExtractorUnavailable}
	c := New(&Draft{}, StepDocuments, Deps{Extractor: ex})

	err := c.DocumentUploaded(context.Background(), SideFront, "front.jpg")
	if !errors.Is(err, ErrExtractorUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if !c.Draft().ManualAadhaarEntry {
		t.Fatal("manual entry must be unlocked")
	}
}

func TestExtractionOverwritesManualEdits(t *testing.T) {
	ex := &stubExtractor{result: Extraction{Name: "Ravi Kumar", Number: "234567890123"}}
	d := &Draft{Aadhaar: AadhaarDetails{Name: "Typo Name"}}
	c := New(d, StepDocuments, Deps{Extractor: ex})

	if err := c.DocumentUploaded(context.Background(), SideFront, "front.jpg"); err != nil {
		t.Fatal(err)
	}
	got := c.Draft()
	if got.Aadhaar.Name != "Ravi Kumar" {
		t.Fatalf("extraction must overwrite identity fields, got %q", got.Aadhaar.Name)
	}
	if got.Aadhaar.Number != "234567890123" {
		t.Fatalf("extracted number not merged: %q", got.Aadhaar.Number)
	}
}

// The full walk of the five steps, with pincode enrichment in step 3 and
// no documents in step 5.
func TestEndToEndCompletion(t *testing.T) {
	geo := &stubGeocoder{byPincode: func(string) (Location, error) {
		return Location{City: "Bengaluru", State: "Karnataka", Latitude: 12.97, Longitude: 77.59}, nil
	}}
	sub := &stubSubmitter{}
	d := &Draft{ProviderID: uuid.New()}
	c := New(d, StepPersonal, Deps{Geocoder: geo, Submitter: sub})

	c.Apply(func(d *Draft) {
		d.FirstName = "Ravi"
		d.LastName = "Kumar"
		d.Phone = "9876543210"
	})
	if state := c.Next(); !state.Valid {
		t.Fatalf("step 1: %s", state.FirstError())
	}

	exp := 5
	c.Apply(func(d *Draft) { d.ExperienceYears = &exp })
	if state := c.Next(); !state.Valid {
		t.Fatalf("step 2: %s", state.FirstError())
	}

	c.Apply(func(d *Draft) { d.Pincode = "560001" })
	if _, err := c.LookupPincode(context.Background()); err != nil {
		t.Fatalf("pincode lookup: %v", err)
	}
	if got := c.Draft(); got.City != "Bengaluru" || got.State != "Karnataka" {
		t.Fatalf("auto-fill failed: city=%q state=%q", got.City, got.State)
	}
	c.Apply(func(d *Draft) { d.Address = "12 MG Road" })
	if state := c.Next(); !state.Valid {
		t.Fatalf("step 3: %s", state.FirstError())
	}

	c.Apply(func(d *Draft) {
		d.Qualifications = []string{"B.Tech"}
		d.Languages = []string{"English"}
	})
	if state := c.Next(); !state.Valid {
		t.Fatalf("step 4: %s", state.FirstError())
	}

	res := c.Submit(context.Background())
	if !res.Submitted {
		t.Fatalf("submit failed: missing=%v err=%v", res.Missing, res.Err)
	}
	p := sub.payloads[0]
	if p.AadhaarNumber != nil || p.AadhaarDOB != nil || p.AadhaarGender != nil || p.AadhaarAddress != nil {
		t.Fatal("Aadhaar fields must be null with no documents uploaded")
	}
	if p.City != "Bengaluru" || p.Latitude == nil {
		t.Fatalf("payload missing enriched location: %+v", p)
	}
}
