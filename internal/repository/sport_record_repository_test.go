package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classfit/backend/internal/domain"
)

func seedSportType(t *testing.T, repo *SportTypeRepository, code, name, unit string) *domain.SportType {
	t.Helper()
	st := &domain.SportType{Code: code, Name: name, Unit: unit}
	require.NoError(t, repo.db.Create(st).Error)
	return st
}

func TestSportRecordRepository_CreateBatchAndList(t *testing.T) {
	db := setupTestDB(t)
	school := seedSchool(t, db)
	student := seedStudent(t, NewStudentRepository(db), school.ID, "1", "Alex Chen", 3, "A")

	typeRepo := NewSportTypeRepository(db)
	height := seedSportType(t, typeRepo, "height", "Height", "cm")
	weight := seedSportType(t, typeRepo, "weight", "Weight", "kg")

	repo := NewSportRecordRepository(db)
	testDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	err := repo.CreateBatch([]domain.SportRecord{
		{StudentID: student.ID, SportTypeID: height.ID, Value: 125.5, TestDate: testDate},
		{StudentID: student.ID, SportTypeID: weight.ID, Value: 28.3, TestDate: testDate},
	})
	require.NoError(t, err)

	records, err := repo.ListByStudent(student.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, student.ID, record.StudentID)
		require.NotNil(t, record.SportType)
	}
}

func TestSportRecordRepository_EmptyBatchIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSportRecordRepository(db)

	assert.NoError(t, repo.CreateBatch(nil))
}

func TestSportTypeRepository_IDsByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSportTypeRepository(db)

	height := seedSportType(t, repo, "height", "Height", "cm")
	cardio := seedSportType(t, repo, "cardio", "Cardio Endurance", "sec")

	byCode, err := repo.IDsByCode()
	require.NoError(t, err)
	assert.Equal(t, height.ID, byCode["height"])
	assert.Equal(t, cardio.ID, byCode["cardio"])
	assert.Len(t, byCode, 2)
}

func TestSportRecordRepository_ListUnknownStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSportRecordRepository(db)

	records, err := repo.ListByStudent(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, records)
}
