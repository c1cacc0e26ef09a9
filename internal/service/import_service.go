package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classfit/backend/internal/domain"
)

// SchoolDirectory answers whether an import target school exists.
type SchoolDirectory interface {
	Exists(schoolID uuid.UUID) (bool, error)
}

// StudentDirectory is the roster side of the record store: lookups feed the
// validator, Create persists accepted roster rows.
type StudentDirectory interface {
	ListByClass(schoolID uuid.UUID, grade int, class string) ([]domain.Student, error)
	ExistingNumbers(schoolID uuid.UUID, numbers []string) ([]string, error)
	Create(student *domain.Student) error
}

// RecordWriter persists all measurements of one accepted records row as a
// single atomic batch, so a row never half-commits.
type RecordWriter interface {
	CreateBatch(records []domain.SportRecord) error
}

// SportTypeDirectory resolves measurement codes to sport type ids.
type SportTypeDirectory interface {
	IDsByCode() (map[string]uuid.UUID, error)
}

// UploadArchive keeps a copy of the uploaded file for audit. Store is best
// effort; archive failures never fail the preview.
type UploadArchive interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
	PresignView(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ImportService is the orchestrator behind the staged import flow:
// CreatePreview parses + validates + stages, Execute consumes and persists,
// Cancel discards. All shared state lives in the injected PreviewStore.
type ImportService struct {
	store    PreviewStore
	schools  SchoolDirectory
	students StudentDirectory
	records  RecordWriter
	types    SportTypeDirectory
	archive  UploadArchive
	ttl      time.Duration
	maxSize  int64
	now      func() time.Time
}

func NewImportService(
	store PreviewStore,
	schools SchoolDirectory,
	students StudentDirectory,
	records RecordWriter,
	types SportTypeDirectory,
	archive UploadArchive,
	ttl time.Duration,
	maxSize int64,
) *ImportService {
	return &ImportService{
		store:    store,
		schools:  schools,
		students: students,
		records:  records,
		types:    types,
		archive:  archive,
		ttl:      ttl,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// ValidateUpload rejects files by extension and size before any parsing.
func (s *ImportService) ValidateUpload(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".xlsx" && ext != ".csv" {
		return parseErrorf("unsupported file type %q, expected .xlsx or .csv", ext)
	}
	if size > s.maxSize {
		return parseErrorf("file exceeds the %d MB limit", s.maxSize/(1024*1024))
	}
	return nil
}

// CreatePreview runs the staging half of the pipeline: parse the upload,
// validate every row, stage the result under a fresh id. Nothing is stored
// when parsing fails.
func (s *ImportService) CreatePreview(ctx context.Context, fileName string, data []byte, ictx domain.ImportContext) (*domain.ImportPreview, error) {
	if err := s.ValidateUpload(fileName, int64(len(data))); err != nil {
		return nil, err
	}
	if err := validateContext(ictx); err != nil {
		return nil, err
	}

	exists, err := s.schools.Exists(ictx.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("look up school: %w", err)
	}
	if !exists {
		return nil, ErrSchoolNotFound
	}

	header, rawRows, err := ReadSheet(fileName, data)
	if err != nil {
		return nil, err
	}

	var rows []domain.ImportRow
	switch ictx.Kind {
	case domain.ImportKindStudents:
		if err := validateHeader(header, domain.StudentTemplateHeaders, 4); err != nil {
			return nil, err
		}
		rows, err = s.validateStudentRows(ictx, rawRows)
	case domain.ImportKindRecords:
		if err := validateHeader(header, domain.RecordsTemplateHeaders, 2); err != nil {
			return nil, err
		}
		rows, err = s.validateRecordRows(ictx, rawRows)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	preview := &domain.ImportPreview{
		ID:        uuid.NewString(),
		Context:   ictx,
		FileName:  fileName,
		Rows:      rows,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if s.archive != nil {
		if err := s.archive.Store(ctx, archiveKey(preview), data, contentTypeFor(fileName)); err != nil {
			log.Printf("archive upload for preview %s failed: %v", preview.ID, err)
		}
	}

	if err := s.store.Put(ctx, preview); err != nil {
		return nil, fmt.Errorf("stage preview: %w", err)
	}
	return preview, nil
}

func (s *ImportService) validateStudentRows(ictx domain.ImportContext, rawRows []RawSheetRow) ([]domain.ImportRow, error) {
	numbers := make([]string, 0, len(rawRows))
	for _, raw := range rawRows {
		if n := cell(raw.Cells, 0); n != "" {
			numbers = append(numbers, n)
		}
	}
	registered, err := s.students.ExistingNumbers(ictx.SchoolID, numbers)
	if err != nil {
		return nil, fmt.Errorf("check registered student numbers: %w", err)
	}
	existing := make(map[string]bool, len(registered))
	for _, n := range registered {
		existing[n] = true
	}

	seen := make(map[string]int)
	rows := make([]domain.ImportRow, 0, len(rawRows))
	for _, raw := range rawRows {
		rows = append(rows, validateStudentRow(raw.Number, raw.Cells, seen, existing))
	}
	return rows, nil
}

func (s *ImportService) validateRecordRows(ictx domain.ImportContext, rawRows []RawSheetRow) ([]domain.ImportRow, error) {
	students, err := s.students.ListByClass(ictx.SchoolID, ictx.Grade, ictx.Class)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	roster := make(map[string]*domain.Student, len(students))
	for i := range students {
		if _, ok := roster[students[i].StudentNumber]; !ok {
			roster[students[i].StudentNumber] = &students[i]
		}
	}

	rows := make([]domain.ImportRow, 0, len(rawRows))
	for _, raw := range rawRows {
		rows = append(rows, validateRecordRow(raw.Number, raw.Cells, roster))
	}
	return rows, nil
}

// GetPreview re-reads a staged preview without consuming it.
func (s *ImportService) GetPreview(ctx context.Context, id string) (*domain.ImportPreview, error) {
	return s.store.Get(ctx, id)
}

const archiveViewExpiry = 10 * time.Minute

// ArchivedUploadURL returns a short-lived link to the exact file the operator
// uploaded for a still-staged preview.
func (s *ImportService) ArchivedUploadURL(ctx context.Context, id string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	preview, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.archive.PresignView(ctx, archiveKey(preview), archiveViewExpiry)
}

func archiveKey(preview *domain.ImportPreview) string {
	return fmt.Sprintf("imports/%s/%s", preview.ID, filepath.Base(preview.FileName))
}

// Execute consumes the preview (first caller wins) and persists its eligible
// rows in ascending row order. A row that fails to persist is reported and
// skipped; the rest of the batch keeps going.
func (s *ImportService) Execute(ctx context.Context, id string, includeWarnings bool) (*domain.ImportResult, error) {
	// Peek before consuming so an infrastructure failure while resolving
	// sport types cannot burn the preview.
	peek, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var typeIDs map[string]uuid.UUID
	if peek.Context.Kind == domain.ImportKindRecords {
		typeIDs, err = s.types.IDsByCode()
		if err != nil {
			return nil, fmt.Errorf("resolve sport types: %w", err)
		}
	}

	preview, err := s.store.Take(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{
		PreviewID:  preview.ID,
		Kind:       preview.Context.Kind,
		Errors:     make([]domain.SkippedRow, 0),
		ExecutedAt: s.now(),
	}

	for _, row := range preview.Rows {
		switch {
		case row.Status == domain.RowStatusError:
			field, message := firstBlockingIssue(row.Issues)
			skip(result, row.RowNumber, field, message)
		case row.Status == domain.RowStatusWarning && !includeWarnings:
			field, message := firstIssue(row.Issues)
			skip(result, row.RowNumber, field, message+" (skipped: warnings excluded)")
		default:
			if err := s.persistRow(preview, row, typeIDs); err != nil {
				skip(result, row.RowNumber, "", err.Error())
			} else {
				result.SuccessCount++
			}
		}
	}

	return result, nil
}

// Cancel discards a staged preview without persisting anything. Idempotent:
// unknown, expired, and already-consumed ids all succeed.
func (s *ImportService) Cancel(ctx context.Context, id string) error {
	return s.store.Remove(ctx, id)
}

func (s *ImportService) persistRow(preview *domain.ImportPreview, row domain.ImportRow, typeIDs map[string]uuid.UUID) error {
	switch preview.Context.Kind {
	case domain.ImportKindStudents:
		data := row.Student
		return s.students.Create(&domain.Student{
			SchoolID:      preview.Context.SchoolID,
			StudentNumber: data.StudentNumber,
			Name:          data.Name,
			Gender:        data.GenderParsed,
			Grade:         data.GradeParsed,
			Class:         data.Class,
			BirthDate:     data.BirthDateParsed,
		})
	case domain.ImportKindRecords:
		data := row.Record
		if len(data.ValuesParsed) == 0 {
			return nil // nothing to write; the row still counts as imported
		}
		if data.StudentID == nil || data.TestDateParsed == nil {
			return fmt.Errorf("row %d passed validation without a resolved student or test date", row.RowNumber)
		}
		batch := make([]domain.SportRecord, 0, len(data.ValuesParsed))
		for _, field := range domain.MeasurementFields {
			value, ok := data.ValuesParsed[field]
			if !ok {
				continue
			}
			typeID, ok := typeIDs[field]
			if !ok {
				return fmt.Errorf("sport type %q is not seeded", field)
			}
			batch = append(batch, domain.SportRecord{
				StudentID:   *data.StudentID,
				SportTypeID: typeID,
				Value:       value,
				TestDate:    *data.TestDateParsed,
				Notes:       "bulk import - " + preview.FileName,
			})
		}
		return s.records.CreateBatch(batch)
	default:
		return fmt.Errorf("unknown import kind %q", preview.Context.Kind)
	}
}

func skip(result *domain.ImportResult, rowNumber int, field, message string) {
	result.SkipCount++
	result.Errors = append(result.Errors, domain.SkippedRow{
		RowNumber: rowNumber,
		Field:     field,
		Message:   message,
	})
}

// firstBlockingIssue picks the first error-level issue for reporting,
// falling back to the first issue of any level.
func firstBlockingIssue(issues []domain.FieldIssue) (field, message string) {
	for _, issue := range issues {
		if issue.Level == domain.IssueLevelError {
			return issue.Field, issue.Message
		}
	}
	return firstIssue(issues)
}

func firstIssue(issues []domain.FieldIssue) (field, message string) {
	if len(issues) == 0 {
		return "", "row skipped"
	}
	return issues[0].Field, issues[0].Message
}

func validateContext(ictx domain.ImportContext) error {
	switch ictx.Kind {
	case domain.ImportKindStudents:
		return nil
	case domain.ImportKindRecords:
		if ictx.Grade < 1 || ictx.Grade > 12 {
			return parseErrorf("records imports need a grade between 1 and 12")
		}
		if strings.TrimSpace(ictx.Class) == "" {
			return parseErrorf("records imports need a target class")
		}
		return nil
	default:
		return parseErrorf("unknown import kind %q", ictx.Kind)
	}
}

func contentTypeFor(fileName string) string {
	if strings.ToLower(filepath.Ext(fileName)) == ".csv" {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
