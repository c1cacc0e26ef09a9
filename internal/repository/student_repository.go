package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(student *domain.Student) error {
	return r.db.Create(student).Error
}

func (r *StudentRepository) FindByID(id uuid.UUID) (*domain.Student, error) {
	var student domain.Student
	err := r.db.Preload("School").
		Where("id = ? AND deleted_at IS NULL", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByClass returns the roster of one school/grade/class, ordered by
// student number so template pre-fill and validation are deterministic.
func (r *StudentRepository) ListByClass(schoolID uuid.UUID, grade int, class string) ([]domain.Student, error) {
	var students []domain.Student
	query := r.db.Where("school_id = ? AND grade = ? AND deleted_at IS NULL", schoolID, grade)
	if class != "" {
		query = query.Where("class = ?", class)
	}
	err := query.Order("student_number ASC").Find(&students).Error
	return students, err
}

// ExistingNumbers returns which of the candidate student numbers are already
// registered for the school.
func (r *StudentRepository) ExistingNumbers(schoolID uuid.UUID, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.Model(&domain.Student{}).
		Where("school_id = ? AND student_number IN ? AND deleted_at IS NULL", schoolID, numbers).
		Pluck("student_number", &existing).Error
	return existing, err
}

func (r *StudentRepository) List(schoolID uuid.UUID, page, pageSize int) ([]domain.Student, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := r.db.Model(&domain.Student{}).Where("deleted_at IS NULL")
	if schoolID != uuid.Nil {
		query = query.Where("school_id = ?", schoolID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []domain.Student
	err := query.Order("grade ASC, class ASC, student_number ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&students).Error
	return students, total, err
}

// Delete soft-deletes; every read filters on deleted_at.
func (r *StudentRepository) Delete(id uuid.UUID) error {
	return r.db.Model(&domain.Student{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now()).Error
}
