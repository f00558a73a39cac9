package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is a freelancer's bid on a job. One per (job, freelancer).
type Application struct {
	ID           uuid.UUID    `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	JobID        uuid.UUID    `json:"job_id" db:"job_id" gorm:"type:uuid;not null;uniqueIndex:idx_application_job_freelancer"`
	FreelancerID uuid.UUID    `json:"freelancer_id" db:"freelancer_id" gorm:"type:uuid;not null;uniqueIndex:idx_application_job_freelancer;index:idx_application_freelancer_id"`
	CoverLetter  string       `json:"cover_letter" db:"cover_letter" gorm:"type:text;not null"`
	Pitch        string       `json:"pitch" db:"pitch" gorm:"type:text"`
	ProposedRate float64      `json:"proposed_rate" db:"proposed_rate" gorm:"type:numeric(12,2);not null"`
	Status       ReviewStatus `json:"status" db:"status" gorm:"type:text;not null;default:pending"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at" gorm:"not null;autoUpdateTime"`

	Job *Job `json:"job,omitempty" gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Application) TableName() string {
	return "job_applications"
}
