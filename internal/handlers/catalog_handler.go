package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arvind-kp/sevaconnect_backend/internal/models"
)

// CatalogHandler serves the category/service catalog. Reads are public;
// writes are admin-only (wired in main).
type CatalogHandler struct {
	DB *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db}
}

func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.DB.
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return fail500(c, "failed to load categories")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
	})
}

func (h *CatalogHandler) GetServices(c *fiber.Ctx) error {
	categoryID, err := uuid.Parse(c.Params("categoryId"))
	if err != nil {
		return fail200(c, "invalid category id")
	}

	var services []models.Service
	if err := h.DB.
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return fail500(c, "failed to load services")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services,
	})
}

type upsertCategoryReq struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req upsertCategoryReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail200(c, "name is required")
	}

	cat := models.Category{Name: name, IsActive: true}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&cat).Error; err != nil {
		if isUniqueViolation(err) {
			return fail200(c, "category already exists")
		}
		return fail500(c, "failed to create category")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cat})
}

type upsertServiceReq struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	IsActive   *bool  `json:"is_active"`
}

func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	var req upsertServiceReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(req.CategoryID))
	if err != nil {
		return fail200(c, "invalid category id")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail200(c, "name is required")
	}

	var cat models.Category
	if err := h.DB.First(&cat, "id = ?", categoryID).Error; err != nil {
		return fail200(c, "category not found")
	}

	svc := models.Service{CategoryID: categoryID, Name: name, IsActive: true}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&svc).Error; err != nil {
		return fail500(c, "failed to create service")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": svc})
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid category id")
	}

	var req upsertCategoryReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var cat models.Category
	if err := h.DB.First(&cat, "id = ?", id).Error; err != nil {
		return fail200(c, "category not found")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		cat.Name = name
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&cat).Error; err != nil {
		if isUniqueViolation(err) {
			return fail200(c, "category already exists")
		}
		return fail500(c, "failed to update category")
	}

	return c.JSON(fiber.Map{"success": true, "data": cat})
}

// DeleteCategory deactivates rather than deletes; profiles may still
// reference the row.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid category id")
	}

	res := h.DB.Model(&models.Category{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fail500(c, "failed to delete category")
	}
	if res.RowsAffected == 0 {
		return fail200(c, "category not found")
	}
	// services under the category disappear from listings with it
	if err := h.DB.Model(&models.Service{}).
		Where("category_id = ?", id).
		Update("is_active", false).Error; err != nil {
		return fail500(c, "failed to delete category")
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid service id")
	}

	var req upsertServiceReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var svc models.Service
	if err := h.DB.First(&svc, "id = ?", id).Error; err != nil {
		return fail200(c, "service not found")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		svc.Name = name
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&svc).Error; err != nil {
		return fail500(c, "failed to update service")
	}

	return c.JSON(fiber.Map{"success": true, "data": svc})
}

func (h *CatalogHandler) DeleteService(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid service id")
	}

	res := h.DB.Model(&models.Service{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fail500(c, "failed to delete service")
	}
	if res.RowsAffected == 0 {
		return fail200(c, "service not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "unique constraint")
}
