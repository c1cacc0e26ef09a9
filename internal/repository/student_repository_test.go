package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&domain.School{},
		&domain.SportType{},
		&domain.Student{},
		&domain.SportRecord{},
	)
	require.NoError(t, err)

	return db
}

func seedSchool(t *testing.T, db *gorm.DB) *domain.School {
	t.Helper()
	school := &domain.School{Name: "Test Elementary", CountyName: "Test County"}
	require.NoError(t, NewSchoolRepository(db).Create(school))
	return school
}

func seedStudent(t *testing.T, repo *StudentRepository, schoolID uuid.UUID, number, name string, grade int, class string) *domain.Student {
	t.Helper()
	student := &domain.Student{
		SchoolID:      schoolID,
		StudentNumber: number,
		Name:          name,
		Gender:        domain.GenderMale,
		Grade:         grade,
		Class:         class,
	}
	require.NoError(t, repo.Create(student))
	return student
}

func TestStudentRepository_CreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	school := seedSchool(t, db)
	repo := NewStudentRepository(db)

	student := seedStudent(t, repo, school.ID, "1", "Alex Chen", 3, "A")
	assert.NotEqual(t, uuid.Nil, student.ID)

	found, err := repo.FindByID(student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Chen", found.Name)
	require.NotNil(t, found.School)
	assert.Equal(t, school.ID, found.School.ID)
}

func TestStudentRepository_ListByClassOrdersByNumber(t *testing.T) {
	db := setupTestDB(t)
	school := seedSchool(t, db)
	repo := NewStudentRepository(db)

	seedStudent(t, repo, school.ID, "3", "Sam Wu", 3, "A")
	seedStudent(t, repo, school.ID, "1", "Alex Chen", 3, "A")
	seedStudent(t, repo, school.ID, "2", "Mia Lin", 3, "B") // other class
	seedStudent(t, repo, school.ID, "4", "Kim Park", 4, "A") // other grade

	students, err := repo.ListByClass(school.ID, 3, "A")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "1", students[0].StudentNumber)
	assert.Equal(t, "3", students[1].StudentNumber)

	// Empty class means the whole grade.
	students, err = repo.ListByClass(school.ID, 3, "")
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestStudentRepository_ExistingNumbers(t *testing.T) {
	db := setupTestDB(t)
	school := seedSchool(t, db)
	other := seedSchool(t, db)
	repo := NewStudentRepository(db)

	seedStudent(t, repo, school.ID, "1", "Alex Chen", 3, "A")
	seedStudent(t, repo, other.ID, "2", "Mia Lin", 3, "A")

	existing, err := repo.ExistingNumbers(school.ID, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, existing)

	existing, err = repo.ExistingNumbers(school.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestStudentRepository_DeleteIsSoft(t *testing.T) {
	db := setupTestDB(t)
	school := seedSchool(t, db)
	repo := NewStudentRepository(db)

	student := seedStudent(t, repo, school.ID, "1", "Alex Chen", 3, "A")
	require.NoError(t, repo.Delete(student.ID))

	_, err := repo.FindByID(student.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	existing, err := repo.ExistingNumbers(school.ID, []string{"1"})
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestSchoolRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	school := seedSchool(t, db)
	repo := NewSchoolRepository(db)

	exists, err := repo.Exists(school.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}
