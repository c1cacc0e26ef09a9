package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender values accepted for students.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Base model with soft delete
type BaseModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// School is the tenant every student and record hangs off.
type School struct {
	BaseModel
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	CountyName string `gorm:"type:varchar(50);not null;index" json:"county_name"`
	Address    string `gorm:"type:varchar(255)" json:"address"`
	Phone      string `gorm:"type:varchar(20)" json:"phone"`
}

func (School) TableName() string { return "schools" }

// Student belongs to a school. The (school, student_number) pair is unique
// among non-deleted rows; roster imports de-duplicate on it.
type Student struct {
	BaseModel
	SchoolID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"school_id"`
	StudentNumber string     `gorm:"type:varchar(20);not null" json:"student_number"`
	Name          string     `gorm:"type:varchar(50);not null;index" json:"name"`
	Gender        Gender     `gorm:"type:varchar(10);not null" json:"gender"`
	Grade         int        `gorm:"type:smallint;not null" json:"grade"`
	Class         string     `gorm:"type:varchar(20)" json:"class"`
	BirthDate     *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	School        *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

func (Student) TableName() string { return "students" }

// SportType is one measured discipline. Code is the machine name the import
// pipeline and the templates use ("height", "cardio", ...).
type SportType struct {
	BaseModel
	Code string `gorm:"type:varchar(30);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
	Unit string `gorm:"type:varchar(20);not null" json:"unit"`
}

func (SportType) TableName() string { return "sport_types" }

// SportRecord is one measurement of one student on one test date.
type SportRecord struct {
	BaseModel
	StudentID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	SportTypeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"sport_type_id"`
	Value       float64    `gorm:"type:decimal(10,2);not null" json:"value"`
	TestDate    time.Time  `gorm:"type:date;not null;index" json:"test_date"`
	Notes       string     `gorm:"type:varchar(500)" json:"notes"`
	Student     *Student   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	SportType   *SportType `gorm:"foreignKey:SportTypeID" json:"sport_type,omitempty"`
}

func (SportRecord) TableName() string { return "sport_records" }

func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BaseModel Hook
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&b.ID)
	return nil
}
