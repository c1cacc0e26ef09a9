package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/classfit/backend/internal/domain"
	"github.com/classfit/backend/internal/dto"
	"github.com/classfit/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ImportHandler struct {
	imports   *service.ImportService
	templates *service.TemplateService
}

func NewImportHandler(imports *service.ImportService, templates *service.TemplateService) *ImportHandler {
	return &ImportHandler{
		imports:   imports,
		templates: templates,
	}
}

// PreviewStudents handles POST /import/students/preview
func (h *ImportHandler) PreviewStudents(c *fiber.Ctx) error {
	fileName, data, errResp := h.readUpload(c)
	if errResp != nil {
		return errResp(c)
	}

	schoolID, err := uuid.Parse(c.FormValue("school_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_SCHOOL_ID", "school_id must be a valid id"))
	}

	preview, err := h.imports.CreatePreview(c.UserContext(), fileName, data, domain.ImportContext{
		Kind:     domain.ImportKindStudents,
		SchoolID: schoolID,
	})
	if err != nil {
		return previewError(c, err)
	}

	return c.JSON(dto.SuccessResponse(dto.NewImportPreviewView(preview), "preview created"))
}

// PreviewRecords handles POST /import/records/preview
func (h *ImportHandler) PreviewRecords(c *fiber.Ctx) error {
	fileName, data, errResp := h.readUpload(c)
	if errResp != nil {
		return errResp(c)
	}

	schoolID, err := uuid.Parse(c.FormValue("school_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_SCHOOL_ID", "school_id must be a valid id"))
	}
	grade, err := strconv.Atoi(c.FormValue("grade"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_GRADE", "grade must be a number between 1 and 12"))
	}

	preview, err := h.imports.CreatePreview(c.UserContext(), fileName, data, domain.ImportContext{
		Kind:     domain.ImportKindRecords,
		SchoolID: schoolID,
		Grade:    grade,
		Class:    c.FormValue("class"),
	})
	if err != nil {
		return previewError(c, err)
	}

	return c.JSON(dto.SuccessResponse(dto.NewImportPreviewView(preview), "preview created"))
}

// GetPreview handles GET /import/preview/:preview_id
func (h *ImportHandler) GetPreview(c *fiber.Ctx) error {
	preview, err := h.imports.GetPreview(c.UserContext(), c.Params("preview_id"))
	if errors.Is(err, service.ErrPreviewNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("PREVIEW_NOT_FOUND", "preview not found or expired"))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", err.Error()))
	}
	return c.JSON(dto.SuccessResponse(dto.NewImportPreviewView(preview), ""))
}

// GetPreviewFile handles GET /import/preview/:preview_id/file, linking to
// the archived copy of the upload the preview was built from.
func (h *ImportHandler) GetPreviewFile(c *fiber.Ctx) error {
	url, err := h.imports.ArchivedUploadURL(c.UserContext(), c.Params("preview_id"))
	switch {
	case errors.Is(err, service.ErrArchiveDisabled):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("ARCHIVE_DISABLED", "upload archiving is not enabled"))
	case errors.Is(err, service.ErrPreviewNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("PREVIEW_NOT_FOUND", "preview not found or expired"))
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", err.Error()))
	}
	return c.JSON(dto.SuccessResponse(fiber.Map{"url": url}, ""))
}

// Execute handles POST /import/execute
func (h *ImportHandler) Execute(c *fiber.Ctx) error {
	var req dto.ExecuteImportRequest
	if err := c.BodyParser(&req); err != nil || req.PreviewID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_REQUEST", "preview_id is required"))
	}

	includeWarnings := true
	if req.IncludeWarnings != nil {
		includeWarnings = *req.IncludeWarnings
	}

	result, err := h.imports.Execute(c.UserContext(), req.PreviewID, includeWarnings)
	if errors.Is(err, service.ErrPreviewNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("PREVIEW_NOT_FOUND", "preview not found or expired, re-upload the file"))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("IMPORT_ERROR", err.Error()))
	}

	return c.JSON(dto.SuccessResponse(result, "import finished"))
}

// Cancel handles DELETE /import/preview/:preview_id. Cancelling an unknown,
// expired, or already-consumed preview succeeds; the outcome is the same.
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	if err := h.imports.Cancel(c.UserContext(), c.Params("preview_id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", err.Error()))
	}
	return c.JSON(dto.SuccessResponse(nil, "preview cancelled"))
}

// DownloadStudentTemplate handles GET /import/templates/students
func (h *ImportHandler) DownloadStudentTemplate(c *fiber.Ctx) error {
	buffer, err := h.templates.GenerateStudentTemplate()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("TEMPLATE_ERROR", err.Error()))
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=student-roster-template.xlsx")
	return c.Send(buffer.Bytes())
}

// DownloadRecordsTemplate handles GET /import/templates/records. With
// school_id + grade (+ class) query params the student columns come
// pre-filled from the actual roster.
func (h *ImportHandler) DownloadRecordsTemplate(c *fiber.Ctx) error {
	var roster []domain.Student

	if c.Query("school_id") != "" && c.Query("grade") != "" {
		schoolID, err := uuid.Parse(c.Query("school_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_SCHOOL_ID", "school_id must be a valid id"))
		}
		grade, err := strconv.Atoi(c.Query("grade"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_GRADE", "grade must be a number"))
		}
		roster, err = h.templates.RosterFor(schoolID, grade, c.Query("class"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", err.Error()))
		}
	}

	buffer, err := h.templates.GenerateRecordsTemplate(roster)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("TEMPLATE_ERROR", err.Error()))
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=sport-records-template.xlsx")
	return c.Send(buffer.Bytes())
}

// readUpload pulls the multipart file out of the request and enforces the
// upload constraints before reading it into memory.
func (h *ImportHandler) readUpload(c *fiber.Ctx) (string, []byte, func(*fiber.Ctx) error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("MISSING_FILE", "upload a spreadsheet under the \"file\" field"))
		}
	}

	if err := h.imports.ValidateUpload(file.Filename, file.Size); err != nil {
		message := err.Error()
		return "", nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_FILE", message))
		}
	}

	f, err := file.Open()
	if err != nil {
		return "", nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to open upload"))
		}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "failed to read upload"))
		}
	}

	return file.Filename, data, nil
}

func previewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSchoolNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("SCHOOL_NOT_FOUND", "no school with that id"))
	case service.IsParseError(err):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("PARSE_ERROR", err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", err.Error()))
	}
}
