package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/findmyphone/backend/internal/dto"
	"github.com/findmyphone/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrNotChatMember  = errors.New("you are not a participant of this chat")
	ErrChatWithSelf   = errors.New("cannot open a chat about your own report")
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message exceeds 500 characters")
	ErrBadMessageType = errors.New("invalid message type")
)

var messageTypes = map[string]bool{
	models.MessageTypeText:     true,
	models.MessageTypeImage:    true,
	models.MessageTypeLocation: true,
	models.MessageTypeSystem:   true,
}

// ChatService handles per-report conversations between an interested user
// and the reporter.
type ChatService struct {
	db         *gorm.DB
	moderation *ModerationService
}

func NewChatService(db *gorm.DB, moderation *ModerationService) *ChatService {
	return &ChatService{db: db, moderation: moderation}
}

// OpenForPhone returns the caller's existing chat about a report, creating
// it (with a seeded system message) on first contact.
func (s *ChatService) OpenForPhone(phoneID, userID uuid.UUID) (*dto.ChatResponse, error) {
	var phone models.Phone
	if err := s.db.First(&phone, "id = ?", phoneID).Error; err != nil {
		return nil, ErrPhoneNotFound
	}
	if phone.ReportedByID == userID {
		return nil, ErrChatWithSelf
	}

	var chat models.Chat
	err := s.db.Where("phone_id = ? AND starter_id = ?", phoneID, userID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		chat = models.Chat{
			ID:           uuid.New(),
			PhoneID:      phoneID,
			StarterID:    userID,
			ReporterID:   phone.ReportedByID,
			IsActive:     true,
			LastActivity: time.Now(),
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&chat).Error; err != nil {
				return err
			}
			return tx.Create(&models.ChatMessage{
				ID:       uuid.New(),
				ChatID:   chat.ID,
				SenderID: userID,
				Body:     "Hi! I'm interested in this phone.",
				Type:     models.MessageTypeSystem,
			}).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}

	return s.load(&chat)
}

// ListForUser returns the caller's chats ordered by last activity.
func (s *ChatService) ListForUser(userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.
		Preload("Phone").
		Where("starter_id = ? OR reporter_id = ?", userID, userID).
		Order("last_activity DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// Get returns a chat with its messages and marks the peer's messages read.
func (s *ChatService) Get(chatID, userID uuid.UUID) (*dto.ChatResponse, error) {
	var chat models.Chat
	if err := s.db.First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, ErrChatNotFound
	}
	if chat.StarterID != userID && chat.ReporterID != userID {
		return nil, ErrNotChatMember
	}

	err := s.db.Model(&models.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND read = false", chatID, userID).
		Update("read", true).Error
	if err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	return s.load(&chat)
}

// SendMessage appends a message and bumps the chat's last activity.
func (s *ChatService) SendMessage(chatID, userID uuid.UUID, req *dto.SendMessageRequest) (*models.ChatMessage, error) {
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len(body) > 500 {
		return nil, ErrMessageTooLong
	}

	msgType := req.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if !messageTypes[msgType] {
		return nil, ErrBadMessageType
	}

	if ok, reason := s.moderation.FilterContent(body); !ok {
		return nil, errors.New(s.moderation.GetRejectionMessage(reason))
	}

	var chat models.Chat
	if err := s.db.First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, ErrChatNotFound
	}
	if chat.StarterID != userID && chat.ReporterID != userID {
		return nil, ErrNotChatMember
	}

	msg := models.ChatMessage{
		ID:       uuid.New(),
		ChatID:   chatID,
		SenderID: userID,
		Body:     body,
		Type:     msgType,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&chat).Update("last_activity", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return &msg, nil
}

func (s *ChatService) load(chat *models.Chat) (*dto.ChatResponse, error) {
	var messages []models.ChatMessage
	err := s.db.
		Where("chat_id = ?", chat.ID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return &dto.ChatResponse{Chat: *chat, Messages: messages}, nil
}
