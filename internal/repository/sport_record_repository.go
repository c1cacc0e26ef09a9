package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/domain"
)

type SportRecordRepository struct {
	db *gorm.DB
}

func NewSportRecordRepository(db *gorm.DB) *SportRecordRepository {
	return &SportRecordRepository{db: db}
}

// CreateBatch writes all records of one import row in a single transaction.
// Either every measurement of the row lands or none does.
func (r *SportRecordRepository) CreateBatch(records []domain.SportRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SportRecordRepository) ListByStudent(studentID uuid.UUID) ([]domain.SportRecord, error) {
	var records []domain.SportRecord
	err := r.db.Preload("SportType").
		Where("student_id = ? AND deleted_at IS NULL", studentID).
		Order("test_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}
