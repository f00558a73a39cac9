package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectSubmission is a deliverable handed in on a contract. Accepting one
// completes the contract and its job.
type ProjectSubmission struct {
	ID             uuid.UUID    `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ContractID     uuid.UUID    `json:"contract_id" db:"contract_id" gorm:"type:uuid;not null;index:idx_submission_contract_id"`
	FreelancerID   uuid.UUID    `json:"freelancer_id" db:"freelancer_id" gorm:"type:uuid;not null"`
	Description    string       `json:"description" db:"description" gorm:"type:text;not null"`
	DeliverableURL *string      `json:"deliverable_url,omitempty" db:"deliverable_url" gorm:"type:text"`
	Status         ReviewStatus `json:"status" db:"status" gorm:"type:text;not null;default:pending"`
	Feedback       *string      `json:"feedback,omitempty" db:"feedback" gorm:"type:text"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at" gorm:"not null;autoUpdateTime"`

	Contract *Contract `json:"-" gorm:"foreignKey:ContractID;references:ID;constraint:OnDelete:CASCADE"`
}
