package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/classfit/backend/internal/domain"
)

// Date layouts accepted in uploads, most common first.
var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006/1/2",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseFloat(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	return f, nil
}

// parseIntLoose accepts float-formatted integers ("3.0"), which spreadsheet
// programs emit for numeric cells.
func parseIntLoose(value string) (int, error) {
	f, err := parseFloat(value)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func normalizeGender(value string) (domain.Gender, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m", "1", "男":
		return domain.GenderMale, nil
	case "female", "f", "2", "女":
		return domain.GenderFemale, nil
	default:
		return "", fmt.Errorf("gender must be male or female")
	}
}

// cell reads column index from a row, tolerating short rows.
func cell(cells []string, index int) string {
	if index < 0 || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

func isEmpty(value string) bool {
	return strings.TrimSpace(value) == ""
}
