package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectInquiry is a client's direct proposal to a freelancer.
type ProjectInquiry struct {
	ID                 uuid.UUID    `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ClientID           uuid.UUID    `json:"client_id" db:"client_id" gorm:"type:uuid;not null;index:idx_inquiry_client_id"`
	FreelancerID       uuid.UUID    `json:"freelancer_id" db:"freelancer_id" gorm:"type:uuid;not null;index:idx_inquiry_freelancer_id"`
	ProjectDescription string       `json:"project_description" db:"project_description" gorm:"type:text;not null"`
	Status             ReviewStatus `json:"status" db:"status" gorm:"type:text;not null;default:pending"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at" gorm:"not null;autoUpdateTime"`
}

// InquiryView is a ProjectInquiry joined with both parties' names.
type InquiryView struct {
	ProjectInquiry
	ClientName     string `json:"client_name" db:"client_name"`
	FreelancerName string `json:"freelancer_name" db:"freelancer_name"`
}
