package models

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ContractID uuid.UUID `json:"contract_id" db:"contract_id" gorm:"type:uuid;not null;index:idx_chat_message_contract_created,priority:1"`
	SenderID   uuid.UUID `json:"sender_id" db:"sender_id" gorm:"type:uuid;not null"`
	Message    string    `json:"message" db:"message" gorm:"type:text;not null"`
	ImageURL   *string   `json:"image_url,omitempty" db:"image_url" gorm:"type:text"`
	Read       bool      `json:"read" db:"read" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"not null;index:idx_chat_message_contract_created,priority:2"`

	Contract *Contract `json:"-" gorm:"foreignKey:ContractID;references:ID;constraint:OnDelete:CASCADE"`
}
