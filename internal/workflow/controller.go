package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/arvind-kp/sevaconnect_backend/internal/validation"
)

// ErrExtractorUnavailable marks extraction failures that the user cannot
// fix by retrying: the service rejected the account (payment required) or
// was never configured. The controller reacts by unlocking manual entry.
var ErrExtractorUnavailable = errors.New("document extraction unavailable")

// ErrStoreNotProvisioned marks a submit failure caused by the backing
// profile table not existing yet. It gets an operator-facing message
// rather than a generic retry prompt.
var ErrStoreNotProvisioned = errors.New("profile store not provisioned")

// ErrNotOnDocumentsStep rejects a submit issued before the flow reached
// the final step. A client-state problem, not a server fault.
var ErrNotOnDocumentsStep = errors.New("submit is only allowed from the documents step")

// DocumentSide tells the extractor which face of the ID card an image
// shows.
type DocumentSide string

const (
	SideFront DocumentSide = "front"
	SideBack  DocumentSide = "back"
)

// Geocoder resolves location details. Both calls are best effort; an
// error never blocks the flow.
type Geocoder interface {
	ByPincode(ctx context.Context, pincode string) (Location, error)
	Reverse(ctx context.Context, lat, lng float64) (Location, error)
}

// Extractor reads identity fields from uploaded ID images.
type Extractor interface {
	ExtractSide(ctx context.Context, imageRef string, side DocumentSide) (Extraction, error)
	ExtractPair(ctx context.Context, frontRef, backRef string) (Extraction, error)
}

// Submitter receives the final assembled payload.
type Submitter interface {
	SubmitProfile(ctx context.Context, p Payload) error
}

// Deps are the external collaborators of a Controller. Geocoder and
// Extractor may be nil, in which case the matching enrichment is simply
// skipped.
type Deps struct {
	Geocoder  Geocoder
	Extractor Extractor
	Submitter Submitter
}

// Controller drives the five-step completion flow over one Draft. Steps
// advance only through Next/Submit; enrichment results merge whenever
// they arrive, guarded by a generation counter so a stale response for an
// old pincode or an old image set is dropped instead of clobbering the
// draft.
type Controller struct {
	mu    sync.Mutex
	draft *Draft
	step  Step
	deps  Deps

	submitting bool
	succeeded  bool

	locGen uint64
	extGen uint64
}

// New builds a controller positioned at the given step. A step outside
// 1..5 is clamped.
func New(draft *Draft, step Step, deps Deps) *Controller {
	if step < StepPersonal {
		step = StepPersonal
	}
	if step > StepDocuments {
		step = StepDocuments
	}
	return &Controller{draft: draft, step: step, deps: deps}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Succeeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.succeeded
}

// Draft returns a snapshot copy of the current draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.draft
}

// Apply runs a mutation against the draft under the controller lock. The
// per-step PATCH handlers use this for their field updates.
func (c *Controller) Apply(mutate func(*Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mutate(c.draft)
}

// Next validates the current step; when valid the flow advances (capped
// at the documents step). The returned state carries the per-field
// results either way.
func (c *Controller) Next() StepState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := ValidateStep(c.step, c.draft)
	if state.Valid && c.step < StepDocuments {
		c.step++
	}
	return state
}

// Previous always steps back (floor 1); going back to fix mistakes never
// requires the current step to be valid.
func (c *Controller) Previous() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step > StepPersonal {
		c.step--
	}
	return c.step
}

// LookupPincode resolves the draft's pincode through the geocoder and
// merges the result into still-empty location fields. The lookup is
// skipped when the pincode is invalid or already resolved by an earlier
// successful lookup; a failed lookup records nothing, so a re-click for
// the same pincode reaches the geocoder again. The geocoder runs outside
// the lock; the generation counter makes sure a slow response for a
// superseded pincode is discarded.
func (c *Controller) LookupPincode(ctx context.Context) (bool, error) {
	c.mu.Lock()
	pin := strings.TrimSpace(c.draft.Pincode)
	if c.deps.Geocoder == nil || !validation.Pincode(pin).Valid || pin == c.draft.LastPincodeQueried {
		c.mu.Unlock()
		return false, nil
	}
	c.locGen++
	gen := c.locGen
	c.mu.Unlock()

	loc, err := c.deps.Geocoder.ByPincode(ctx, pin)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.locGen {
		return false, nil
	}
	c.draft.mergeLocation(loc)
	c.draft.LastPincodeQueried = pin
	return true, nil
}

// UseCurrentLocation reverse-geocodes device coordinates. Coordinates are
// stored even when the reverse lookup fails, so the provider's pin is
// never lost.
func (c *Controller) UseCurrentLocation(ctx context.Context, lat, lng float64) error {
	c.mu.Lock()
	c.draft.Latitude = &lat
	c.draft.Longitude = &lng
	if c.deps.Geocoder == nil {
		c.mu.Unlock()
		return nil
	}
	c.locGen++
	gen := c.locGen
	c.mu.Unlock()

	loc, err := c.deps.Geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.locGen {
		return nil
	}
	loc.Latitude, loc.Longitude = lat, lng
	c.draft.mergeLocation(loc)
	return nil
}

// DocumentUploaded records an uploaded ID image and triggers extraction:
// a single-side call while only one face is present, one combined call
// once both are. An unavailable extractor flips the draft into manual
// entry instead of failing the step.
func (c *Controller) DocumentUploaded(ctx context.Context, side DocumentSide, imageRef string) error {
	c.mu.Lock()
	switch side {
	case SideFront:
		c.draft.FrontImageRef = imageRef
	case SideBack:
		c.draft.BackImageRef = imageRef
	default:
		c.mu.Unlock()
		return errors.New("unknown document side")
	}
	front, back := c.draft.FrontImageRef, c.draft.BackImageRef
	if c.deps.Extractor == nil {
		c.mu.Unlock()
		return nil
	}
	c.extGen++
	gen := c.extGen
	c.mu.Unlock()

	var (
		ex  Extraction
		err error
	)
	if front != "" && back != "" {
		ex, err = c.deps.Extractor.ExtractPair(ctx, front, back)
	} else if front != "" {
		ex, err = c.deps.Extractor.ExtractSide(ctx, front, SideFront)
	} else {
		ex, err = c.deps.Extractor.ExtractSide(ctx, back, SideBack)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrExtractorUnavailable) {
			c.draft.ManualAadhaarEntry = true
		}
		return err
	}
	if gen != c.extGen {
		return nil
	}
	c.draft.mergeExtraction(ex)
	return nil
}

// requiredOnSubmit is the hard gate re-checked at submit time regardless
// of what the per-step validation said earlier.
var requiredOnSubmit = []struct {
	name  string
	empty func(*Draft) bool
}{
	{"provider_id", func(d *Draft) bool { return d.ProviderID == uuid.Nil }},
	{"first_name", func(d *Draft) bool { return strings.TrimSpace(d.FirstName) == "" }},
	{"last_name", func(d *Draft) bool { return strings.TrimSpace(d.LastName) == "" }},
	{"phone", func(d *Draft) bool { return strings.TrimSpace(d.Phone) == "" }},
	{"pincode", func(d *Draft) bool { return strings.TrimSpace(d.Pincode) == "" }},
	{"city", func(d *Draft) bool { return strings.TrimSpace(d.City) == "" }},
	{"state", func(d *Draft) bool { return strings.TrimSpace(d.State) == "" }},
	{"address", func(d *Draft) bool { return strings.TrimSpace(d.Address) == "" }},
}

// SubmitResult reports how a submit attempt ended. Exactly one of the
// rejection fields is populated on failure; Submitted is true only when
// the payload reached the store.
type SubmitResult struct {
	Submitted bool
	Missing   []string
	Invalid   StepState
	Err       error
	Payload   Payload
}

// Submit re-validates the documents step, re-checks the hard required
// list, assembles the payload and hands it to the submitter. Any failure
// leaves the flow on the documents step with the draft intact.
func (c *Controller) Submit(ctx context.Context) SubmitResult {
	c.mu.Lock()
	if c.step != StepDocuments {
		c.mu.Unlock()
		return SubmitResult{Err: ErrNotOnDocumentsStep}
	}

	state := ValidateStep(StepDocuments, c.draft)
	if !state.Valid {
		c.mu.Unlock()
		return SubmitResult{Invalid: state}
	}

	var missing []string
	for _, req := range requiredOnSubmit {
		if req.empty(c.draft) {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		c.mu.Unlock()
		return SubmitResult{Missing: missing}
	}

	payload := BuildPayload(c.draft)
	c.submitting = true
	c.mu.Unlock()

	var err error
	if c.deps.Submitter != nil {
		err = c.deps.Submitter.SubmitProfile(ctx, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return SubmitResult{Err: err, Payload: payload}
	}
	c.succeeded = true
	return SubmitResult{Submitted: true, Payload: payload}
}
