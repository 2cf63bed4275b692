package dto

import "github.com/findmyphone/backend/internal/models"

type SendMessageRequest struct {
	Message     string `json:"message"`
	MessageType string `json:"message_type,omitempty"`
}

type ChatResponse struct {
	Chat     models.Chat          `json:"chat"`
	Messages []models.ChatMessage `json:"messages"`
}
