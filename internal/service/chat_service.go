package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"

	"github.com/google/uuid"
)

// --- DTOs ---

type ChatMessageResponse struct {
	ID          string                 `json:"id"`
	ProjectID   string                 `json:"project_id"`
	SenderID    string                 `json:"sender_id"`
	SenderName  string                 `json:"sender_name"`
	Message     string                 `json:"message"`
	Attachments []string               `json:"attachments"`
	Reactions   []ChatReactionResponse `json:"reactions"`
	CreatedAt   string                 `json:"created_at"`
}

type ChatReactionResponse struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"user_id"`
}

// ChatBroadcaster pushes a payload to everyone connected to a project room
type ChatBroadcaster interface {
	BroadcastToProject(projectID uuid.UUID, payload []byte)
}

// ChatService manages per-project chat threads with attachments and
// emoji reactions
type ChatService interface {
	Messages(ctx context.Context, projectID uuid.UUID, before *uuid.UUID, limit int) ([]ChatMessageResponse, error)
	SendMessage(ctx context.Context, projectID, senderID uuid.UUID, message string, attachments []*multipart.FileHeader) (ChatMessageResponse, error)
	AddReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error
	RemoveReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error
}

type chatService struct {
	chats    repository.ChatRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	files    storage.FileStorage
	hub      ChatBroadcaster
	txm      repository.TransactionManager
}

func NewChatService(
	chats repository.ChatRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	files storage.FileStorage,
	hub ChatBroadcaster,
	txm repository.TransactionManager,
) ChatService {
	return &chatService{
		chats:    chats,
		projects: projects,
		users:    users,
		files:    files,
		hub:      hub,
		txm:      txm,
	}
}

const defaultChatPageSize = 20

func (s *chatService) Messages(ctx context.Context, projectID uuid.UUID, before *uuid.UUID, limit int) ([]ChatMessageResponse, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "project %s", projectID)
	}

	if limit <= 0 {
		limit = defaultChatPageSize
	}

	var cursor *model.ChatMessage
	if before != nil {
		msg, err := s.chats.GetMessage(ctx, *before)
		if err != nil {
			return nil, notFoundOr(err, "message %s", *before)
		}
		cursor = msg
	}

	messages, err := s.chats.ListMessages(ctx, projectID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	result := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, toChatResponse(m))
	}
	return result, nil
}

func (s *chatService) SendMessage(ctx context.Context, projectID, senderID uuid.UUID, message string, attachments []*multipart.FileHeader) (ChatMessageResponse, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return ChatMessageResponse{}, notFoundOr(err, "project %s", projectID)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return ChatMessageResponse{}, notFoundOr(err, "user %s", senderID)
	}

	// Store files before opening the transaction; a failed upload aborts
	// the message without leaving a row behind
	var stored []model.ChatAttachment
	for _, fh := range attachments {
		url, storeErr := s.files.Store(fh)
		if storeErr != nil {
			return ChatMessageResponse{}, fmt.Errorf("failed to store attachment: %w", storeErr)
		}
		stored = append(stored, model.ChatAttachment{URL: url})
	}

	msg := model.ChatMessage{
		ProjectID:   project.ID,
		SenderID:    sender.ID,
		Message:     message,
		Attachments: stored,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		return s.chats.CreateMessage(txCtx, &msg)
	})
	if err != nil {
		return ChatMessageResponse{}, fmt.Errorf("failed to create message: %w", err)
	}

	msg.Sender = sender
	resp := toChatResponse(msg)

	if s.hub != nil {
		if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
			s.hub.BroadcastToProject(project.ID, payload)
		}
	}

	return resp, nil
}

func (s *chatService) AddReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error {
	if emoji == "" {
		return fmt.Errorf("emoji is required")
	}

	if _, err := s.chats.GetMessage(ctx, messageID); err != nil {
		return notFoundOr(err, "message %s", messageID)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return notFoundOr(err, "user %s", userID)
	}

	// Reacting twice with the same emoji is a no-op
	exists, err := s.chats.HasReaction(ctx, messageID, userID, emoji)
	if err != nil {
		return fmt.Errorf("failed to check reaction: %w", err)
	}
	if exists {
		return nil
	}

	return s.chats.AddReaction(ctx, &model.ChatReaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
}

func (s *chatService) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error {
	if _, err := s.chats.GetMessage(ctx, messageID); err != nil {
		return notFoundOr(err, "message %s", messageID)
	}
	return s.chats.RemoveReaction(ctx, messageID, userID, emoji)
}

func toChatResponse(m model.ChatMessage) ChatMessageResponse {
	resp := ChatMessageResponse{
		ID:          m.ID.String(),
		ProjectID:   m.ProjectID.String(),
		SenderID:    m.SenderID.String(),
		Message:     m.Message,
		Attachments: make([]string, 0, len(m.Attachments)),
		Reactions:   make([]ChatReactionResponse, 0, len(m.Reactions)),
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}

	if m.Sender != nil {
		resp.SenderName = m.Sender.FullName
	}
	for _, a := range m.Attachments {
		resp.Attachments = append(resp.Attachments, a.URL)
	}
	for _, r := range m.Reactions {
		resp.Reactions = append(resp.Reactions, ChatReactionResponse{
			Emoji:  r.Emoji,
			UserID: r.UserID.String(),
		})
	}

	return resp
}
