package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
)

type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db}
}

func (r *MessageRepo) Add(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepo) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepo) MarkRead(ctx context.Context, contractID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("contract_id = ? AND sender_id <> ? AND read = ?", contractID, readerID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *MessageRepo) CountUnread(ctx context.Context, contractID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("contract_id = ? AND sender_id <> ? AND read = ?", contractID, readerID, false).
		Count(&count).Error
	return count, err
}
