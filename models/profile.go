package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Profile is the marketplace-side record of an auth provider user. ID equals
// the provider's user id (the token subject).
type Profile struct {
	ID         uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email      string         `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	FullName   string         `json:"full_name" db:"full_name" gorm:"type:text;not null"`
	Role       Role           `json:"role" db:"role" gorm:"type:text;not null;check:role IN ('client','freelancer')"`
	Bio        *string        `json:"bio,omitempty" db:"bio" gorm:"type:text"`
	AvatarURL  *string        `json:"avatar_url,omitempty" db:"avatar_url" gorm:"type:text"`
	Skills     pq.StringArray `json:"skills" db:"skills" gorm:"type:text[]"`
	HourlyRate *float64       `json:"hourly_rate,omitempty" db:"hourly_rate" gorm:"type:numeric(10,2)"`
	Metadata   datatypes.JSON `json:"metadata,omitempty" db:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at" gorm:"not null;autoUpdateTime"`
}

// AdminAccess grants a user the administrative surface.
type AdminAccess struct {
	UserID    uuid.UUID  `json:"user_id" db:"user_id" gorm:"type:uuid;primaryKey;not null"`
	GrantedBy *uuid.UUID `json:"granted_by,omitempty" db:"granted_by" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
}

func (AdminAccess) TableName() string {
	return "admin_access"
}
