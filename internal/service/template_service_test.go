package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classfit/backend/internal/domain"
)

// A freshly generated template must survive its own parser and header check,
// otherwise operators could download a file the importer then rejects.
func TestStudentTemplate_RoundTripsThroughParser(t *testing.T) {
	svc := NewTemplateService(&stubStudents{})

	buffer, err := svc.GenerateStudentTemplate()
	require.NoError(t, err)

	header, rows, err := ReadSheet("template.xlsx", buffer.Bytes())
	require.NoError(t, err)
	require.NoError(t, validateHeader(header, domain.StudentTemplateHeaders, 4))

	// The example rows parse clean.
	seen := map[string]int{}
	for _, raw := range rows {
		row := validateStudentRow(raw.Number, raw.Cells, seen, map[string]bool{})
		assert.Equal(t, domain.RowStatusValid, row.Status, "row %d: %v", raw.Number, row.Issues)
	}
}

func TestRecordsTemplate_RoundTripsThroughParser(t *testing.T) {
	svc := NewTemplateService(&stubStudents{})

	buffer, err := svc.GenerateRecordsTemplate(nil)
	require.NoError(t, err)

	header, rows, err := ReadSheet("template.xlsx", buffer.Bytes())
	require.NoError(t, err)
	require.NoError(t, validateHeader(header, domain.RecordsTemplateHeaders, 2))
	assert.NotEmpty(t, rows)
}

func TestRecordsTemplate_PrefillsRoster(t *testing.T) {
	roster := []domain.Student{
		{BaseModel: domain.BaseModel{ID: uuid.New()}, StudentNumber: "1", Name: "Alex Chen"},
		{BaseModel: domain.BaseModel{ID: uuid.New()}, StudentNumber: "2", Name: "Mia Lin"},
	}
	svc := NewTemplateService(&stubStudents{roster: roster})

	buffer, err := svc.GenerateRecordsTemplate(roster)
	require.NoError(t, err)

	_, rows, err := ReadSheet("template.xlsx", buffer.Bytes())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "1", cell(rows[0].Cells, 0))
	assert.Equal(t, "Alex Chen", cell(rows[0].Cells, 1))
	assert.Equal(t, "2", cell(rows[1].Cells, 0))
	assert.Equal(t, "Mia Lin", cell(rows[1].Cells, 1))
}

func TestRosterFor_DelegatesToDirectory(t *testing.T) {
	roster := []domain.Student{
		{BaseModel: domain.BaseModel{ID: uuid.New()}, StudentNumber: "1", Name: "Alex Chen"},
	}
	svc := NewTemplateService(&stubStudents{roster: roster})

	got, err := svc.RosterFor(uuid.New(), 3, "A")
	require.NoError(t, err)
	assert.Equal(t, roster, got)
}
