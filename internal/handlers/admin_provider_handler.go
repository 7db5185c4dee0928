package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arvind-kp/sevaconnect_backend/internal/models"
	"github.com/arvind-kp/sevaconnect_backend/internal/validation"
	"github.com/arvind-kp/sevaconnect_backend/internal/workflow"
)

// AdminProviderHandler covers the admin side of provider management.
// Category, service and specialization are assigned here rather than by
// the provider; experience set through this path allows a higher ceiling
// than the self-service form.
type AdminProviderHandler struct {
	DB *gorm.DB
}

func NewAdminProviderHandler(db *gorm.DB) *AdminProviderHandler {
	return &AdminProviderHandler{DB: db}
}

func (h *AdminProviderHandler) ListProviders(c *fiber.Ctx) error {
	var profiles []models.ProviderProfile
	q := h.DB.Order("updated_at DESC")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&profiles).Error; err != nil {
		return fail500(c, "failed to load providers")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    profiles,
	})
}

func (h *AdminProviderHandler) GetProvider(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid provider id")
	}

	var profile models.ProviderProfile
	if err := h.DB.First(&profile, "id = ?", id).Error; err != nil {
		return fail200(c, "provider not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type serviceDetailsReq struct {
	CategoryID      string   `json:"category_id"`
	ServiceID       string   `json:"service_id"`
	Specialization  string   `json:"specialization"`
	ExperienceYears *int     `json:"experience_years"`
	HourlyRate      *float64 `json:"hourly_rate"`
}

// AssignServiceDetails sets the step-2 fields on a provider profile. The
// category/service pair must be consistent; experience is validated with
// the admin ceiling.
func (h *AdminProviderHandler) AssignServiceDetails(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid provider id")
	}

	var req serviceDetailsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var profile models.ProviderProfile
	if err := h.DB.First(&profile, "id = ?", id).Error; err != nil {
		return fail200(c, "provider not found")
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(req.CategoryID))
	if err != nil {
		return fail200(c, "invalid category id")
	}
	serviceID, err := uuid.Parse(strings.TrimSpace(req.ServiceID))
	if err != nil {
		return fail200(c, "invalid service id")
	}

	var svc models.Service
	if err := h.DB.First(&svc, "id = ? AND category_id = ?", serviceID, categoryID).Error; err != nil {
		return fail200(c, "service does not belong to that category")
	}

	if res := validation.ExperienceYears(req.ExperienceYears, workflow.AdminExperienceCap); !res.Valid {
		return fail200(c, res.Error)
	}
	if res := validation.HourlyRate(req.HourlyRate); !res.Valid {
		return fail200(c, res.Error)
	}

	profile.CategoryID = &categoryID
	profile.ServiceID = &serviceID
	profile.Specialization = strings.TrimSpace(req.Specialization)
	profile.ExperienceYears = req.ExperienceYears
	profile.HourlyRate = req.HourlyRate

	if err := h.DB.Save(&profile).Error; err != nil {
		return fail500(c, "failed to update provider")
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
