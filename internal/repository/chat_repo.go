package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRepository defines data access for project chat messages and reactions
type ChatRepository interface {
	CreateMessage(ctx context.Context, msg *model.ChatMessage) error
	GetMessage(ctx context.Context, id uuid.UUID) (*model.ChatMessage, error)
	// ListMessages returns up to limit messages for a project, newest first.
	// When before is non-nil, only messages created before that message are
	// returned (cursor paging for infinite scroll).
	ListMessages(ctx context.Context, projectID uuid.UUID, before *model.ChatMessage, limit int) ([]model.ChatMessage, error)
	AddReaction(ctx context.Context, reaction *model.ChatReaction) error
	RemoveReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error
	HasReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) (bool, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	return GetDB(ctx, r.db).Create(msg).Error
}

func (r *chatRepository) GetMessage(ctx context.Context, id uuid.UUID) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	if err := GetDB(ctx, r.db).
		Preload("Sender").Preload("Attachments").Preload("Reactions").
		First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, projectID uuid.UUID, before *model.ChatMessage, limit int) ([]model.ChatMessage, error) {
	query := GetDB(ctx, r.db).
		Preload("Sender").Preload("Attachments").Preload("Reactions").
		Where("project_id = ?", projectID)

	if before != nil {
		// Tie-break on id for messages sharing a created_at
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}

	var messages []model.ChatMessage
	if err := query.
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) AddReaction(ctx context.Context, reaction *model.ChatReaction) error {
	return GetDB(ctx, r.db).Create(reaction).Error
}

func (r *chatRepository) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error {
	return GetDB(ctx, r.db).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&model.ChatReaction{}).Error
}

func (r *chatRepository) HasReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ChatReaction{}).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Count(&count).Error
	return count > 0, err
}
