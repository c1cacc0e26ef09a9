package dto

import (
	"time"

	"github.com/classfit/backend/internal/domain"
)

// ExecuteImportRequest is the body of POST /import/execute. IncludeWarnings
// defaults to true when omitted.
type ExecuteImportRequest struct {
	PreviewID       string `json:"preview_id"`
	IncludeWarnings *bool  `json:"include_warnings"`
}

// ImportRowView is one preview row on the wire: the raw-ish row data under
// "data", whichever shape the import kind dictates.
type ImportRowView struct {
	RowNumber int                 `json:"row_number"`
	Status    domain.RowStatus    `json:"status"`
	Data      interface{}         `json:"data"`
	Issues    []domain.FieldIssue `json:"issues"`
}

// ImportPreviewView serializes a preview with its derived counts.
type ImportPreviewView struct {
	PreviewID   string            `json:"preview_id"`
	ImportKind  domain.ImportKind `json:"import_kind"`
	SchoolID    string            `json:"school_id"`
	Grade       int               `json:"grade,omitempty"`
	Class       string            `json:"class,omitempty"`
	FileName    string            `json:"file_name"`
	TotalRows   int               `json:"total_rows"`
	ValidRows   int               `json:"valid_rows"`
	WarningRows int               `json:"warning_rows"`
	ErrorRows   int               `json:"error_rows"`
	Rows        []ImportRowView   `json:"rows"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// NewImportPreviewView tallies counts from the rows at serialization time;
// the preview itself never stores them.
func NewImportPreviewView(preview *domain.ImportPreview) ImportPreviewView {
	total, valid, warning, errored := preview.Counts()

	rows := make([]ImportRowView, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		var data interface{}
		if row.Student != nil {
			data = row.Student
		} else {
			data = row.Record
		}
		issues := row.Issues
		if issues == nil {
			issues = []domain.FieldIssue{}
		}
		rows = append(rows, ImportRowView{
			RowNumber: row.RowNumber,
			Status:    row.Status,
			Data:      data,
			Issues:    issues,
		})
	}

	return ImportPreviewView{
		PreviewID:   preview.ID,
		ImportKind:  preview.Context.Kind,
		SchoolID:    preview.Context.SchoolID.String(),
		Grade:       preview.Context.Grade,
		Class:       preview.Context.Class,
		FileName:    preview.FileName,
		TotalRows:   total,
		ValidRows:   valid,
		WarningRows: warning,
		ErrorRows:   errored,
		Rows:        rows,
		CreatedAt:   preview.CreatedAt,
		ExpiresAt:   preview.ExpiresAt,
	}
}
