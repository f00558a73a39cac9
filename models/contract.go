package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract binds a client and a freelancer. JobID is nil for contracts that
// came from a project inquiry; InquiryID is nil for job contracts. Both
// unique indexes ignore NULLs, so each path has its own idempotency key.
type Contract struct {
	ID           uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	JobID        *uuid.UUID     `json:"job_id" db:"job_id" gorm:"type:uuid;uniqueIndex:idx_contract_job_freelancer"`
	InquiryID    *uuid.UUID     `json:"inquiry_id,omitempty" db:"inquiry_id" gorm:"type:uuid;uniqueIndex:idx_contract_inquiry"`
	FreelancerID uuid.UUID      `json:"freelancer_id" db:"freelancer_id" gorm:"type:uuid;not null;uniqueIndex:idx_contract_job_freelancer;index:idx_contract_freelancer_id"`
	ClientID     uuid.UUID      `json:"client_id" db:"client_id" gorm:"type:uuid;not null;index:idx_contract_client_id;check:chk_contract_parties,client_id <> freelancer_id"`
	Rate         float64        `json:"rate" db:"rate" gorm:"type:numeric(12,2);not null"`
	Status       ContractStatus `json:"status" db:"status" gorm:"type:text;not null;default:active"`
	StartDate    time.Time      `json:"start_date" db:"start_date" gorm:"not null"`
	EndDate      *time.Time     `json:"end_date,omitempty" db:"end_date"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at" gorm:"not null;autoUpdateTime"`
}

// HasParty reports whether userID is the client or the freelancer.
func (c Contract) HasParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

// Counterpart returns the other party, or uuid.Nil when userID is not a party.
func (c Contract) Counterpart(userID uuid.UUID) uuid.UUID {
	switch userID {
	case c.ClientID:
		return c.FreelancerID
	case c.FreelancerID:
		return c.ClientID
	}
	return uuid.Nil
}
