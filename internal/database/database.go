package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/classfit/backend/internal/config"
	"github.com/classfit/backend/internal/domain"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate runs the schema migrations and seeds the sport type catalog.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.School{},
		&domain.SportType{},
		&domain.Student{},
		&domain.SportRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return seedSportTypes(db)
}

// The measured disciplines. Codes must stay in sync with the import
// pipeline's measurement fields.
var sportTypeSeed = []domain.SportType{
	{Code: "height", Name: "Height", Unit: "cm"},
	{Code: "weight", Name: "Weight", Unit: "kg"},
	{Code: "sit_reach", Name: "Sit & Reach", Unit: "cm"},
	{Code: "standing_jump", Name: "Standing Jump", Unit: "cm"},
	{Code: "sit_ups", Name: "Sit-ups", Unit: "reps/min"},
	{Code: "cardio", Name: "Cardio Endurance", Unit: "sec"},
}

func seedSportTypes(db *gorm.DB) error {
	for _, seed := range sportTypeSeed {
		var count int64
		if err := db.Model(&domain.SportType{}).Where("code = ?", seed.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check sport type %s: %w", seed.Code, err)
		}
		if count > 0 {
			continue
		}
		record := seed
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to seed sport type %s: %w", seed.Code, err)
		}
	}
	return nil
}
