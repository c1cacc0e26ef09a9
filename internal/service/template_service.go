package service

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/classfit/backend/internal/domain"
)

// TemplateService generates the XLSX templates operators fill in before
// uploading. The headers here are the same ones the parser validates
// against, so a freshly downloaded template always round-trips.
type TemplateService struct {
	students StudentDirectory
}

func NewTemplateService(students StudentDirectory) *TemplateService {
	return &TemplateService{students: students}
}

// GenerateStudentTemplate builds the roster import template.
func (s *TemplateService) GenerateStudentTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Students"
	f.SetSheetName("Sheet1", sheetName)

	widths := []float64{12, 18, 10, 8, 10, 14}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle := newHeaderStyle(f, "#E2EFDA")
	for i, header := range domain.StudentTemplateHeaders {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cellName, header)
		f.SetCellStyle(sheetName, cellName, cellName, headerStyle)
	}

	examples := [][]interface{}{
		{1, "Alex Chen", "male", 3, "A", "2015/03/15"},
		{2, "Mia Lin", "female", 3, "A", "2015/07/22"},
	}
	writeRows(f, sheetName, 2, examples)

	genderDV := excelize.NewDataValidation(true)
	genderDV.Sqref = "C2:C1000"
	genderDV.SetDropList([]string{"male", "female"})
	genderDV.SetError(excelize.DataValidationErrorStyleStop, "Invalid gender", "Pick male or female")
	f.AddDataValidation(sheetName, genderDV)

	gradeDV := excelize.NewDataValidation(true)
	gradeDV.Sqref = "D2:D1000"
	gradeDV.SetRange(1, 12, excelize.DataValidationTypeWhole, excelize.DataValidationOperatorBetween)
	gradeDV.SetError(excelize.DataValidationErrorStyleStop, "Invalid grade", "Grade must be a whole number from 1 to 12")
	f.AddDataValidation(sheetName, gradeDV)

	addInstructions(f, []string{
		"Student roster import template",
		"",
		"Columns:",
		"- Student No.* (required): the student's number within the class, up to 20 characters",
		"- Name* (required): up to 50 characters",
		"- Gender* (required): male or female",
		"- Grade* (required): whole number from 1 to 12",
		"- Class (optional): class label such as A, B, 1",
		"- Birth Date (optional): e.g. 2015/03/15 or 2015-03-15",
		"",
		"Notes:",
		"1. Do not change the header row",
		"2. Data starts on row 2",
		"3. Student numbers must be unique within the file",
		"4. The example rows can be overwritten or deleted",
	})

	return writeBuffer(f, sheetName)
}

// GenerateRecordsTemplate builds the sport-records import template. When
// roster is non-empty the student number and name columns come pre-filled.
func (s *TemplateService) GenerateRecordsTemplate(roster []domain.Student) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sport Records"
	f.SetSheetName("Sheet1", sheetName)

	widths := []float64{12, 18, 12, 12, 16, 18, 18, 12, 14}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle := newHeaderStyle(f, "#DDEBF7")
	for i, header := range domain.RecordsTemplateHeaders {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cellName, header)
		f.SetCellStyle(sheetName, cellName, cellName, headerStyle)
	}

	if len(roster) > 0 {
		rows := make([][]interface{}, 0, len(roster))
		for _, student := range roster {
			rows = append(rows, []interface{}{student.StudentNumber, student.Name})
		}
		writeRows(f, sheetName, 2, rows)
	} else {
		writeRows(f, sheetName, 2, [][]interface{}{
			{1, "Alex Chen", 125.5, 28.3, 15, 120, 25, 480, "2025/03/15"},
			{2, "Mia Lin", 122.0, 26.5, "", "", "", "", "2025/03/15"},
		})
	}

	addInstructions(f, []string{
		"Sport records import template",
		"",
		"Columns:",
		"- Student No.* (required): must match a student registered in the target class",
		"- Name* (required): checked against the registered student; a mismatch is a warning",
		"- Height (cm), Weight (kg), Sit & Reach (cm), Standing Jump (cm),",
		"  Sit-ups (reps/min), Cardio (sec): all optional, numeric",
		"- Test Date* (required): e.g. 2025/03/15",
		"",
		"Notes:",
		"1. Do not change the header row",
		"2. Empty measurements are skipped; fill in only what was tested",
		"3. Records are appended, existing data is never overwritten",
		"4. Values outside the plausible ranges import with a warning:",
		"   height 80-250, weight 10-200, sit & reach -30-60,",
		"   standing jump 20-350, sit-ups 0-100, cardio 60-1800",
	})

	return writeBuffer(f, sheetName)
}

// RosterFor loads the students to pre-fill a records template with.
func (s *TemplateService) RosterFor(schoolID uuid.UUID, grade int, class string) ([]domain.Student, error) {
	return s.students.ListByClass(schoolID, grade, class)
}

func newHeaderStyle(f *excelize.File, fill string) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

func writeRows(f *excelize.File, sheetName string, startRow int, rows [][]interface{}) {
	for r, row := range rows {
		for c, value := range row {
			cellName, _ := excelize.CoordinatesToCellName(c+1, startRow+r)
			f.SetCellValue(sheetName, cellName, value)
		}
	}
}

func addInstructions(f *excelize.File, lines []string) {
	sheet := "Instructions"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "A", 90)
	for i, text := range lines {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetCellValue(sheet, cellName, text)
	}
}

func writeBuffer(f *excelize.File, activeSheet string) (*bytes.Buffer, error) {
	idx, err := f.GetSheetIndex(activeSheet)
	if err != nil {
		return nil, fmt.Errorf("locate sheet %q: %w", activeSheet, err)
	}
	f.SetActiveSheet(idx)

	buffer := new(bytes.Buffer)
	if err := f.Write(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}
