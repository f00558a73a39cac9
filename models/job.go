package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Job is a work listing owned by one client.
type Job struct {
	ID              uuid.UUID        `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ClientID        uuid.UUID        `json:"client_id" db:"client_id" gorm:"type:uuid;not null;index:idx_job_client_id"`
	Title           string           `json:"title" db:"title" gorm:"type:text;not null"`
	Description     string           `json:"description" db:"description" gorm:"type:text;not null"`
	Category        string           `json:"category" db:"category" gorm:"type:text;not null;index:idx_job_category"`
	SkillsRequired  pq.StringArray   `json:"skills_required" db:"skills_required" gorm:"type:text[]"`
	BudgetMin       float64          `json:"budget_min" db:"budget_min" gorm:"type:numeric(12,2);not null"`
	BudgetMax       float64          `json:"budget_max" db:"budget_max" gorm:"type:numeric(12,2);not null"`
	BudgetType      BudgetType       `json:"budget_type" db:"budget_type" gorm:"type:text;not null;check:budget_type IN ('fixed','hourly')"`
	Duration        *string          `json:"duration,omitempty" db:"duration" gorm:"type:text"`
	ExperienceLevel *ExperienceLevel `json:"experience_level,omitempty" db:"experience_level" gorm:"type:text"`
	Status          JobStatus        `json:"status" db:"status" gorm:"type:text;not null;default:open;index:idx_job_status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at" gorm:"not null;autoUpdateTime"`

	Client *Profile `json:"client,omitempty" gorm:"foreignKey:ClientID;references:ID;constraint:OnDelete:CASCADE"`
}
