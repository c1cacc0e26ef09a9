package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
)

type SchoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (r *SchoolRepository) Create(school *domain.School) error {
	return r.db.Create(school).Error
}

func (r *SchoolRepository) FindByID(id uuid.UUID) (*domain.School, error) {
	var school domain.School
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *SchoolRepository) Exists(id uuid.UUID) (bool, error) {
	_, err := r.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SchoolRepository) List(page, pageSize int) ([]domain.School, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := r.db.Model(&domain.School{}).Where("deleted_at IS NULL")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schools []domain.School
	err := query.Order("name ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&schools).Error
	return schools, total, err
}
