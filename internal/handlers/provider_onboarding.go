package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arvind-kp/sevaconnect_backend/internal/middleware"
	"github.com/arvind-kp/sevaconnect_backend/internal/models"
	"github.com/arvind-kp/sevaconnect_backend/internal/services/extraction"
	"github.com/arvind-kp/sevaconnect_backend/internal/utils"
	"github.com/arvind-kp/sevaconnect_backend/internal/workflow"
)

const maxUploadBytes = 5 * 1024 * 1024

// ProviderOnboardingHandler exposes the five-step profile-completion
// flow. Each request loads the profile row, replays it into a workflow
// controller, applies the operation and saves the draft back.
type ProviderOnboardingHandler struct {
	DB            *gorm.DB
	Geo           workflow.Geocoder
	Extract       *extraction.Service
	UploadDir     string
	PublicBaseURL string
	SecretKey     string
	JWTSecret     string
	ExpiresMin    int
	Notify        func(ctx context.Context, userID uuid.UUID, title, body string)
}

func (h *ProviderOnboardingHandler) Routes(r fiber.Router) {
	g := r.Group("/provider/onboarding")
	g.Get("/", h.Get)
	g.Patch("/personal", h.UpdatePersonal)
	g.Patch("/experience", h.UpdateExperience)
	g.Patch("/location", h.UpdateLocation)
	g.Post("/location/pincode-lookup", h.LookupPincode)
	g.Post("/location/geolocate", h.Geolocate)
	g.Patch("/professional", h.UpdateProfessional)
	g.Patch("/identity", h.UpdateIdentity)
	g.Post("/photo", h.UploadPhoto)
	g.Post("/documents/:side", h.UploadDocument)
	g.Post("/next", h.Next)
	g.Post("/previous", h.Previous)
	g.Post("/submit", h.Submit)
}

// ========= Helpers =========

func fail200(c *fiber.Ctx, message string, extra ...fiber.Map) error {
	resp := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(extra) > 0 {
		for k, v := range extra[0] {
			resp[k] = v
		}
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func fail500(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func getAuth(c *fiber.Ctx) (uuid.UUID, error) {
	rawID, okr := c.Locals("userId").(string)
	if !okr || rawID == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	uID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user id")
	}
	return uID, nil
}

// findOrCreateProfile loads the user's profile row, creating a fresh one
// pre-populated from the user record on first open. The name split and
// phone are a best-effort seed; the user can overwrite them in step 1.
func (h *ProviderOnboardingHandler) findOrCreateProfile(tx *gorm.DB, userID uuid.UUID) (*models.ProviderProfile, error) {
	var p models.ProviderProfile
	err := tx.Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var u models.User
	if err := tx.First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "user is inactive")
	}

	p = models.ProviderProfile{
		UserID:      userID,
		CurrentStep: int(workflow.StepPersonal),
		Status:      models.ProfileDraft,
	}
	first, last := splitName(u.Name)
	p.FirstName = first
	p.LastName = last
	p.Phone = u.Phone

	if err := tx.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (h *ProviderOnboardingHandler) controller(p *models.ProviderProfile, submitter workflow.Submitter) (*workflow.Controller, error) {
	d, err := draftFromProfile(p, h.SecretKey)
	if err != nil {
		return nil, err
	}
	deps := workflow.Deps{
		Geocoder:  h.Geo,
		Submitter: submitter,
	}
	if h.Extract != nil {
		deps.Extractor = extractorAdapter{svc: h.Extract}
	}
	return workflow.New(&d, workflow.Step(p.CurrentStep), deps), nil
}

func (h *ProviderOnboardingHandler) persist(tx *gorm.DB, p *models.ProviderProfile, ctrl *workflow.Controller) error {
	if err := applyDraft(p, ctrl.Draft(), h.SecretKey); err != nil {
		return err
	}
	p.CurrentStep = int(ctrl.Step())
	p.UpdatedAt = time.Now()
	return tx.Save(p).Error
}

func stepResponse(c *fiber.Ctx, p *models.ProviderProfile, ctrl *workflow.Controller, extra ...fiber.Map) error {
	d := ctrl.Draft()
	d.Aadhaar.Number = extraction.GroupID(d.Aadhaar.Number)
	data := fiber.Map{
		"step":   int(ctrl.Step()),
		"status": p.Status,
		"draft":  d,
	}
	if len(extra) > 0 {
		for k, v := range extra[0] {
			data[k] = v
		}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// extractorAdapter maps the extraction service onto the workflow's
// Extractor port, folding both "cannot pay" and "never configured" into
// the single unavailable sentinel the controller branches on.
type extractorAdapter struct {
	svc *extraction.Service
}

func (a extractorAdapter) ExtractSide(ctx context.Context, imageRef string, side workflow.DocumentSide) (workflow.Extraction, error) {
	f, err := a.svc.ExtractSingle(ctx, imageRef, string(side))
	return toExtraction(f), mapExtractionErr(err)
}

func (a extractorAdapter) ExtractPair(ctx context.Context, frontRef, backRef string) (workflow.Extraction, error) {
	f, err := a.svc.ExtractPair(ctx, frontRef, backRef)
	return toExtraction(f), mapExtractionErr(err)
}

func toExtraction(f extraction.Fields) workflow.Extraction {
	return workflow.Extraction{
		Name:    f.Name,
		DOB:     f.DOB,
		Gender:  f.Gender,
		Address: f.Address,
		Number:  f.IDNumber,
	}
}

func mapExtractionErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, extraction.ErrPaymentRequired) || errors.Is(err, extraction.ErrNotConfigured) {
		return fmt.Errorf("%w: %v", workflow.ErrExtractorUnavailable, err)
	}
	return err
}

// ========= Handlers =========

func (h *ProviderOnboardingHandler) Get(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	p, err := h.findOrCreateProfile(h.DB, userID)
	if err != nil {
		return fail500(c, "failed to load profile")
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		return fail500(c, "failed to load profile")
	}
	return stepResponse(c, p, ctrl)
}

// loadDraftProfile is the shared preamble of every mutating endpoint:
// auth, profile row, draft-status gate. On a nil profile the response has
// already been written (or err carries a fiber error); callers just
// rollback and return err.
func (h *ProviderOnboardingHandler) loadDraftProfile(c *fiber.Ctx, tx *gorm.DB) (*models.ProviderProfile, error) {
	userID, err := getAuth(c)
	if err != nil {
		return nil, err
	}
	p, err := h.findOrCreateProfile(tx, userID)
	if err != nil {
		return nil, fail500(c, "failed to load profile")
	}
	if p.Status != models.ProfileDraft {
		return nil, fail200(c, "profile already submitted")
	}
	return p, nil
}

type updatePersonalReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UpdatePersonal stores the step-1 fields. Invalid values are saved too
// (the draft holds whatever the user typed); they are reported in the
// response and block only the step transition.
func (h *ProviderOnboardingHandler) UpdatePersonal(c *fiber.Ctx) error {
	var req updatePersonalReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	return h.mutate(c, workflow.StepPersonal, func(d *workflow.Draft) {
		d.FirstName = strings.TrimSpace(req.FirstName)
		d.LastName = strings.TrimSpace(req.LastName)
		d.Phone = strings.TrimSpace(req.Phone)
	})
}

type updateExperienceReq struct {
	ExperienceYears *int `json:"experience_years"`
}

func (h *ProviderOnboardingHandler) UpdateExperience(c *fiber.Ctx) error {
	var req updateExperienceReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	return h.mutate(c, workflow.StepService, func(d *workflow.Draft) {
		d.ExperienceYears = req.ExperienceYears
	})
}

type updateLocationReq struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (h *ProviderOnboardingHandler) UpdateLocation(c *fiber.Ctx) error {
	var req updateLocationReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	return h.mutate(c, workflow.StepLocation, func(d *workflow.Draft) {
		d.Address = strings.TrimSpace(req.Address)
		d.City = strings.TrimSpace(req.City)
		d.State = strings.TrimSpace(req.State)
		d.Pincode = strings.TrimSpace(req.Pincode)
	})
}

type updateProfessionalReq struct {
	Bio            string   `json:"bio"`
	Qualifications []string `json:"qualifications"`
	Certifications []string `json:"certifications"`
	Languages      []string `json:"languages"`
}

func (h *ProviderOnboardingHandler) UpdateProfessional(c *fiber.Ctx) error {
	var req updateProfessionalReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	return h.mutate(c, workflow.StepProfessional, func(d *workflow.Draft) {
		d.Bio = strings.TrimSpace(req.Bio)
		d.Qualifications = req.Qualifications
		d.Certifications = req.Certifications
		d.Languages = req.Languages
	})
}

type updateIdentityReq struct {
	Number  string `json:"number"`
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

// UpdateIdentity is the manual fallback for the extracted identity
// fields; it is only open once extraction has been ruled out.
func (h *ProviderOnboardingHandler) UpdateIdentity(c *fiber.Ctx) error {
	var req updateIdentityReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}
	if !p.ManualAadhaarEntry {
		tx.Rollback()
		return fail200(c, "manual identity entry is not enabled; upload the document instead")
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}
	ctrl.Apply(func(d *workflow.Draft) {
		d.Aadhaar = workflow.AadhaarDetails{
			Number:  strings.ReplaceAll(strings.TrimSpace(req.Number), " ", ""),
			Name:    strings.TrimSpace(req.Name),
			DOB:     extraction.NormalizeDOB(req.DOB),
			Gender:  strings.TrimSpace(req.Gender),
			Address: extraction.CollapseWhitespace(req.Address),
		}
	})

	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update")
	}
	tx.Commit()

	state := workflow.ValidateStep(workflow.StepDocuments, &workflow.Draft{Aadhaar: ctrl.Draft().Aadhaar})
	if !state.Valid {
		return fail200(c, state.FirstError(), fiber.Map{"errors": state.Results})
	}
	return stepResponse(c, p, ctrl)
}

// mutate is the shared body of the PATCH endpoints.
func (h *ProviderOnboardingHandler) mutate(c *fiber.Ctx, step workflow.Step, apply func(*workflow.Draft)) error {
	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}
	ctrl.Apply(apply)

	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update")
	}
	tx.Commit()

	d := ctrl.Draft()
	state := workflow.ValidateStep(step, &d)
	resp := fiber.Map{
		"success": true,
		"data": fiber.Map{
			"step":  int(ctrl.Step()),
			"valid": state.Valid,
		},
	}
	if !state.Valid {
		resp["errors"] = state.Results
	}
	return c.JSON(resp)
}

// LookupPincode resolves the stored pincode into city/state/address
// suggestions. Best effort: a geocoding failure is reported but never
// blocks anything, and a repeat lookup for the same pincode is a no-op.
func (h *ProviderOnboardingHandler) LookupPincode(c *fiber.Ctx) error {
	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	applied, lookupErr := ctrl.LookupPincode(c.Context())
	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update")
	}
	tx.Commit()

	if lookupErr != nil {
		return fail200(c, "could not resolve the pincode; please fill the address manually")
	}
	return stepResponse(c, p, ctrl, fiber.Map{"applied": applied})
}

type geolocateReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *ProviderOnboardingHandler) Geolocate(c *fiber.Ctx) error {
	var req geolocateReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	lookupErr := ctrl.UseCurrentLocation(c.Context(), req.Latitude, req.Longitude)
	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update")
	}
	tx.Commit()

	if lookupErr != nil {
		// coordinates are stored regardless
		return fail200(c, "could not resolve your location; please fill the address manually")
	}
	return stepResponse(c, p, ctrl)
}

// UploadPhoto stores the profile photo (multipart field: photo).
func (h *ProviderOnboardingHandler) UploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return fail200(c, "photo is required (multipart field: photo)")
	}
	if msg := checkImageUpload(file.Header.Get("Content-Type"), file.Filename, file.Size); msg != "" {
		return fail200(c, msg)
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	publicURL, err := h.saveUpload(c, file, p.UserID)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to save file")
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}
	ctrl.Apply(func(d *workflow.Draft) { d.PhotoURL = publicURL })

	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update profile")
	}
	tx.Commit()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "photo uploaded",
		"data":    fiber.Map{"photo_url": publicURL},
	})
}

// UploadDocument stores one side of the ID card (multipart field:
// document, :side front|back) and triggers extraction: single-side while
// only one face exists, one combined call once both do.
func (h *ProviderOnboardingHandler) UploadDocument(c *fiber.Ctx) error {
	side := workflow.DocumentSide(strings.ToLower(c.Params("side")))
	if side != workflow.SideFront && side != workflow.SideBack {
		return fail200(c, "side must be front or back")
	}

	file, err := c.FormFile("document")
	if err != nil {
		return fail200(c, "document is required (multipart field: document)")
	}
	if msg := checkImageUpload(file.Header.Get("Content-Type"), file.Filename, file.Size); msg != "" {
		return fail200(c, msg)
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	publicURL, err := h.saveUpload(c, file, p.UserID)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to save file")
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	extractErr := ctrl.DocumentUploaded(c.Context(), side, publicURL)

	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update profile")
	}
	tx.Commit()

	if extractErr != nil {
		if errors.Is(extractErr, workflow.ErrExtractorUnavailable) {
			return fail200(c, "automatic extraction is unavailable; please enter the details manually", fiber.Map{
				"manual_entry": true,
			})
		}
		return fail200(c, "could not read the document; try a clearer photo or enter the details manually")
	}
	return stepResponse(c, p, ctrl)
}

func checkImageUpload(contentType, filename string, size int64) string {
	if size > maxUploadBytes {
		return "image max size is 5MB"
	}
	if strings.HasPrefix(contentType, "image/") {
		return ""
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ""
	}
	return "file must be an image"
}

func (h *ProviderOnboardingHandler) saveUpload(c *fiber.Ctx, file *multipart.FileHeader, userID uuid.UUID) (string, error) {
	dir := filepath.Join(h.UploadDir, "providers", userID.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		return "", err
	}

	base := strings.TrimRight(h.PublicBaseURL, "/")
	// with no public base configured the relative path still works
	return fmt.Sprintf("%s/uploads/providers/%s/%s", base, userID.String(), filename), nil
}

// ========= Step transitions =========

func (h *ProviderOnboardingHandler) Next(c *fiber.Ctx) error {
	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	state := ctrl.Next()
	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update")
	}
	tx.Commit()

	if !state.Valid {
		return fail200(c, state.FirstError(), fiber.Map{"errors": state.Results})
	}
	return stepResponse(c, p, ctrl)
}

func (h *ProviderOnboardingHandler) Previous(c *fiber.Ctx) error {
	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.loadDraftProfile(c, tx)
	if err != nil || p == nil {
		tx.Rollback()
		return err
	}

	ctrl, err := h.controller(p, nil)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	ctrl.Previous()
	if err := h.persist(tx, p, ctrl); err != nil {
		tx.Rollback()
		return fail500(c, "failed to update")
	}
	tx.Commit()

	return stepResponse(c, p, ctrl)
}

// ========= Submit =========

// storeSubmitter persists the final payload inside the request
// transaction and upgrades the user to the provider role.
type storeSubmitter struct {
	tx        *gorm.DB
	profile   *models.ProviderProfile
	secretKey string
}

func (s *storeSubmitter) SubmitProfile(ctx context.Context, pay workflow.Payload) error {
	enc, err := utils.EncryptSecret(deref(pay.AadhaarNumber), s.secretKey)
	if err != nil {
		return err
	}

	now := time.Now()
	p := s.profile
	p.FirstName = pay.FirstName
	p.LastName = pay.LastName
	p.Phone = pay.Phone
	p.CategoryID = pay.CategoryID
	p.ServiceID = pay.ServiceID
	p.Specialization = deref(pay.Specialization)
	p.ExperienceYears = pay.ExperienceYears
	p.HourlyRate = pay.HourlyRate
	p.Address = pay.Address
	p.City = pay.City
	p.State = pay.State
	p.Pincode = pay.Pincode
	p.Latitude = pay.Latitude
	p.Longitude = pay.Longitude
	p.Bio = deref(pay.Bio)
	p.Qualifications = toJSONList(pay.Qualifications)
	p.Certifications = toJSONList(pay.Certifications)
	p.Languages = toJSONList(pay.Languages)
	p.PhotoURL = deref(pay.PhotoURL)
	p.AadhaarNumberEnc = enc
	p.AadhaarName = deref(pay.AadhaarName)
	p.AadhaarDOB = deref(pay.AadhaarDOB)
	p.AadhaarGender = deref(pay.AadhaarGender)
	p.AadhaarAddress = deref(pay.AadhaarAddress)
	p.Status = models.ProfileSubmitted
	p.CurrentStep = int(workflow.StepDocuments)
	p.SubmittedAt = &now
	p.UpdatedAt = now

	if err := s.tx.WithContext(ctx).Save(p).Error; err != nil {
		if isMissingTable(err) {
			return fmt.Errorf("%w: %v", workflow.ErrStoreNotProvisioned, err)
		}
		return err
	}

	var u models.User
	if err := s.tx.First(&u, "id = ?", pay.ProviderID).Error; err != nil {
		return err
	}
	u.Role = models.RoleProvider
	u.UpdatedAt = now
	return s.tx.Save(&u).Error
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation") ||
		strings.Contains(msg, "undefined table") ||
		strings.Contains(msg, "sqlstate 42p01")
}

func (h *ProviderOnboardingHandler) Submit(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.findOrCreateProfile(tx, userID)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}
	if p.Status != models.ProfileDraft {
		tx.Rollback()
		return fail200(c, "profile already submitted")
	}

	ctrl, err := h.controller(p, &storeSubmitter{tx: tx, profile: p, secretKey: h.SecretKey})
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	res := ctrl.Submit(c.Context())
	switch {
	case len(res.Missing) > 0:
		tx.Rollback()
		return fail200(c, "profile is incomplete", fiber.Map{"missing": res.Missing})
	case res.Invalid.Results != nil && !res.Invalid.Valid:
		tx.Rollback()
		return fail200(c, res.Invalid.FirstError(), fiber.Map{"errors": res.Invalid.Results})
	case res.Err != nil:
		tx.Rollback()
		if errors.Is(res.Err, workflow.ErrNotOnDocumentsStep) {
			return fail200(c, res.Err.Error())
		}
		if errors.Is(res.Err, workflow.ErrStoreNotProvisioned) {
			return fail500(c, "profile store is not provisioned; contact support")
		}
		return fail500(c, "failed to submit profile; please try again")
	}

	if err := tx.Commit().Error; err != nil {
		return fail500(c, "failed to commit")
	}

	// the session carries the role, so reissue it as provider
	signed, err := utils.SignJWT(h.JWTSecret, userID.String(), string(models.RoleProvider), h.ExpiresMin)
	if err != nil {
		return fail500(c, "profile submitted but failed to refresh session; please log in again")
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    signed,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   h.ExpiresMin * 60,
	})

	if h.Notify != nil {
		h.Notify(context.Background(), userID, "Profile submitted",
			"Your provider profile is complete. You can now receive bookings.")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "profile submitted, role updated to provider",
		"data":    fiber.Map{"profile": p},
	})
}
