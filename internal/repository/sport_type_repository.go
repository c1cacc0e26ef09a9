package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
)

type SportTypeRepository struct {
	db *gorm.DB
}

func NewSportTypeRepository(db *gorm.DB) *SportTypeRepository {
	return &SportTypeRepository{db: db}
}

func (r *SportTypeRepository) List() ([]domain.SportType, error) {
	var types []domain.SportType
	err := r.db.Where("deleted_at IS NULL").Order("code ASC").Find(&types).Error
	return types, err
}

// IDsByCode maps measurement codes ("height", ...) to sport type ids.
func (r *SportTypeRepository) IDsByCode() (map[string]uuid.UUID, error) {
	types, err := r.List()
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]uuid.UUID, len(types))
	for _, t := range types {
		byCode[t.Code] = t.ID
	}
	return byCode, nil
}
