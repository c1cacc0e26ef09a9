package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
	"github.com/classfit/backend/internal/dto"
	"github.com/classfit/backend/internal/repository"
)

type StudentHandler struct {
	students *repository.StudentRepository
	records  *repository.SportRecordRepository
}

func NewStudentHandler(students *repository.StudentRepository, records *repository.SportRecordRepository) *StudentHandler {
	return &StudentHandler{
		students: students,
		records:  records,
	}
}

// Create handles POST /students
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "invalid request body"))
	}

	schoolID, err := uuid.Parse(req.SchoolID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_SCHOOL_ID", "school_id must be a valid id"))
	}
	if strings.TrimSpace(req.StudentNumber) == "" || strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "student_number and name are required"))
	}
	gender := domain.Gender(req.Gender)
	if gender != domain.GenderMale && gender != domain.GenderFemale {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "gender must be male or female"))
	}
	if req.Grade < 1 || req.Grade > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "grade must be between 1 and 12"))
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "birth_date must be YYYY-MM-DD"))
		}
		birthDate = &parsed
	}

	student := &domain.Student{
		SchoolID:      schoolID,
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		Name:          strings.TrimSpace(req.Name),
		Gender:        gender,
		Grade:         req.Grade,
		Class:         strings.TrimSpace(req.Class),
		BirthDate:     birthDate,
	}
	if err := h.students.Create(student); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to create student"))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(student, "student created"))
}

// Get handles GET /students/:id
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_ID", "id must be a valid id"))
	}

	student, err := h.students.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("STUDENT_NOT_FOUND", "no student with that id"))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to fetch student"))
	}

	return c.JSON(dto.SuccessResponse(student, ""))
}

// GetRecords handles GET /students/:id/records
func (h *StudentHandler) GetRecords(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_ID", "id must be a valid id"))
	}

	records, err := h.records.ListByStudent(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to list records"))
	}

	return c.JSON(dto.SuccessResponse(records, ""))
}

// List handles GET /students, optionally filtered by school_id.
func (h *StudentHandler) List(c *fiber.Ctx) error {
	schoolID := uuid.Nil
	if raw := c.Query("school_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_SCHOOL_ID", "school_id must be a valid id"))
		}
		schoolID = parsed
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	students, total, err := h.students.List(schoolID, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to list students"))
	}

	return c.JSON(dto.SuccessWithMeta(students, &dto.Meta{
		CurrentPage: page,
		PerPage:     pageSize,
		TotalCount:  total,
	}))
}

// Delete handles DELETE /students/:id
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_ID", "id must be a valid id"))
	}

	if err := h.students.Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to delete student"))
	}

	return c.JSON(dto.SuccessResponse(nil, "student deleted"))
}
