package service

import (
	"fmt"

	"github.com/classfit/backend/internal/domain"
)

const (
	maxStudentNumberLen = 20
	maxNameLen          = 50
	maxClassLen         = 20
)

// validateStudentRow turns one raw roster row into a validated ImportRow.
// seen carries student numbers from earlier rows of the same preview (value
// = first row number); the first occurrence stays clean, repeats get the
// DUPLICATE error. existing holds numbers already registered for the school.
// Pure: identical inputs always produce identical output.
func validateStudentRow(rowNum int, cells []string, seen map[string]int, existing map[string]bool) domain.ImportRow {
	data := &domain.StudentRow{
		StudentNumber: cell(cells, 0),
		Name:          cell(cells, 1),
		Gender:        cell(cells, 2),
		Grade:         cell(cells, 3),
		Class:         cell(cells, 4),
		BirthDate:     cell(cells, 5),
	}

	var issues []domain.FieldIssue
	addIssue := func(field, code, message string, level domain.IssueLevel) {
		issues = append(issues, domain.FieldIssue{Field: field, Code: code, Message: message, Level: level})
	}

	switch {
	case isEmpty(data.StudentNumber):
		addIssue("student_number", domain.IssueCodeRequired, "student number is required", domain.IssueLevelError)
	case len(data.StudentNumber) > maxStudentNumberLen:
		addIssue("student_number", domain.IssueCodeMaxLength,
			fmt.Sprintf("student number exceeds %d characters", maxStudentNumberLen), domain.IssueLevelError)
	case existing[data.StudentNumber]:
		addIssue("student_number", domain.IssueCodeDuplicate,
			fmt.Sprintf("student number %s is already registered for this school", data.StudentNumber), domain.IssueLevelError)
	default:
		if firstRow, dup := seen[data.StudentNumber]; dup {
			addIssue("student_number", domain.IssueCodeDuplicate,
				fmt.Sprintf("student number %s duplicates row %d", data.StudentNumber, firstRow), domain.IssueLevelError)
		} else {
			seen[data.StudentNumber] = rowNum
		}
	}

	switch {
	case isEmpty(data.Name):
		addIssue("name", domain.IssueCodeRequired, "name is required", domain.IssueLevelError)
	case len(data.Name) > maxNameLen:
		addIssue("name", domain.IssueCodeMaxLength,
			fmt.Sprintf("name exceeds %d characters", maxNameLen), domain.IssueLevelError)
	}

	if isEmpty(data.Gender) {
		addIssue("gender", domain.IssueCodeRequired, "gender is required", domain.IssueLevelError)
	} else if gender, err := normalizeGender(data.Gender); err != nil {
		addIssue("gender", domain.IssueCodeInvalidValue, err.Error(), domain.IssueLevelError)
	} else {
		data.GenderParsed = gender
	}

	if isEmpty(data.Grade) {
		addIssue("grade", domain.IssueCodeRequired, "grade is required", domain.IssueLevelError)
	} else if grade, err := parseIntLoose(data.Grade); err != nil {
		addIssue("grade", domain.IssueCodeInvalidType, "grade must be a number", domain.IssueLevelError)
	} else if grade < 1 || grade > 12 {
		addIssue("grade", domain.IssueCodeOutOfRange, "grade must be between 1 and 12", domain.IssueLevelError)
	} else {
		data.GradeParsed = grade
	}

	if len(data.Class) > maxClassLen {
		addIssue("class", domain.IssueCodeMaxLength,
			fmt.Sprintf("class exceeds %d characters", maxClassLen), domain.IssueLevelError)
	}

	if !isEmpty(data.BirthDate) {
		if birthDate, err := parseDate(data.BirthDate); err != nil {
			addIssue("birth_date", domain.IssueCodeInvalidFormat, "birth date is not a recognizable date", domain.IssueLevelError)
		} else {
			data.BirthDateParsed = &birthDate
		}
	}

	return domain.ImportRow{
		RowNumber: rowNum,
		Status:    domain.StatusFromIssues(issues),
		Student:   data,
		Issues:    issues,
	}
}

// validateRecordRow turns one raw sport-record row into a validated
// ImportRow. roster maps student numbers of the target school/grade/class to
// the students they resolve to. A number with no roster match is an error
// (nothing to attach the record to); a match whose name disagrees with the
// upload is only a warning, since the number is authoritative.
func validateRecordRow(rowNum int, cells []string, roster map[string]*domain.Student) domain.ImportRow {
	data := &domain.RecordRow{
		StudentNumber: cell(cells, 0),
		Name:          cell(cells, 1),
		Height:        cell(cells, 2),
		Weight:        cell(cells, 3),
		SitReach:      cell(cells, 4),
		StandingJump:  cell(cells, 5),
		SitUps:        cell(cells, 6),
		Cardio:        cell(cells, 7),
		TestDate:      cell(cells, 8),
	}

	var issues []domain.FieldIssue
	addIssue := func(field, code, message string, level domain.IssueLevel) {
		issues = append(issues, domain.FieldIssue{Field: field, Code: code, Message: message, Level: level})
	}

	if isEmpty(data.StudentNumber) {
		addIssue("student_number", domain.IssueCodeRequired, "student number is required", domain.IssueLevelError)
	}
	if isEmpty(data.Name) {
		addIssue("name", domain.IssueCodeRequired, "name is required", domain.IssueLevelError)
	}

	if !isEmpty(data.StudentNumber) {
		if student, ok := roster[data.StudentNumber]; ok {
			id := student.ID
			data.StudentID = &id
			if !isEmpty(data.Name) && student.Name != data.Name {
				addIssue("name", domain.IssueCodeInvalidValue,
					fmt.Sprintf("name %q does not match the registered student %q for number %s; matched by number only",
						data.Name, student.Name, data.StudentNumber), domain.IssueLevelWarning)
			}
		} else {
			addIssue("student_number", domain.IssueCodeNotFound,
				fmt.Sprintf("no student with number %s in the target class", data.StudentNumber), domain.IssueLevelError)
		}
	}

	if isEmpty(data.TestDate) {
		addIssue("test_date", domain.IssueCodeRequired, "test date is required", domain.IssueLevelError)
	} else if testDate, err := parseDate(data.TestDate); err != nil {
		addIssue("test_date", domain.IssueCodeInvalidFormat, "test date is not a recognizable date", domain.IssueLevelError)
	} else {
		data.TestDateParsed = &testDate
	}

	raw := map[string]string{
		"height":        data.Height,
		"weight":        data.Weight,
		"sit_reach":     data.SitReach,
		"standing_jump": data.StandingJump,
		"sit_ups":       data.SitUps,
		"cardio":        data.Cardio,
	}

	parsed := make(map[string]float64)
	for _, field := range domain.MeasurementFields {
		value := raw[field]
		if isEmpty(value) {
			continue
		}
		f, err := parseFloat(value)
		if err != nil {
			addIssue(field, domain.IssueCodeInvalidType,
				fmt.Sprintf("%s must be a number", field), domain.IssueLevelError)
			continue
		}
		if bounds, ok := domain.MeasurementRanges[field]; ok && (f < bounds.Min || f > bounds.Max) {
			addIssue(field, domain.IssueCodeOutOfRange,
				fmt.Sprintf("%s %.1f is outside the plausible range %.0f-%.0f, please double-check",
					field, f, bounds.Min, bounds.Max), domain.IssueLevelWarning)
		}
		parsed[field] = f
	}
	if len(parsed) > 0 {
		data.ValuesParsed = parsed
	} else if domain.StatusFromIssues(issues) != domain.RowStatusError {
		addIssue("measurements", domain.IssueCodeNoData, "row has no measurements to import", domain.IssueLevelWarning)
	}

	return domain.ImportRow{
		RowNumber: rowNum,
		Status:    domain.StatusFromIssues(issues),
		Record:    data,
		Issues:    issues,
	}
}
