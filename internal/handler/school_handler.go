package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
	"github.com/classfit/backend/internal/dto"
	"github.com/classfit/backend/internal/repository"
)

type SchoolHandler struct {
	schools *repository.SchoolRepository
}

func NewSchoolHandler(schools *repository.SchoolRepository) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// Create handles POST /schools
func (h *SchoolHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "invalid request body"))
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "name is required"))
	}

	school := &domain.School{
		Name:       strings.TrimSpace(req.Name),
		CountyName: strings.TrimSpace(req.CountyName),
		Address:    req.Address,
		Phone:      req.Phone,
	}
	if err := h.schools.Create(school); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to create school"))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(school, "school created"))
}

// Get handles GET /schools/:id
func (h *SchoolHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_ID", "id must be a valid id"))
	}

	school, err := h.schools.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("SCHOOL_NOT_FOUND", "no school with that id"))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to fetch school"))
	}

	return c.JSON(dto.SuccessResponse(school, ""))
}

// List handles GET /schools
func (h *SchoolHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	schools, total, err := h.schools.List(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to list schools"))
	}

	return c.JSON(dto.SuccessWithMeta(schools, &dto.Meta{
		CurrentPage: page,
		PerPage:     pageSize,
		TotalCount:  total,
	}))
}
