package dto

import (
	"time"

	"carpinteria_backend/internal/models"
)

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// MessageDTO - запись в ленте заявки
type MessageDTO struct {
	ID             string          `json:"id"`
	QuoteRequestID string          `json:"quote_request_id"`
	SenderID       string          `json:"sender_id"`
	SenderRole     models.UserRole `json:"sender_role"`
	Text           string          `json:"text"`
	IsAutomatic    bool            `json:"is_automatic"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewMessageDTO(m *models.QuoteMessage) *MessageDTO {
	return &MessageDTO{
		ID:             m.ID,
		QuoteRequestID: m.QuoteRequestID,
		SenderID:       m.SenderID,
		SenderRole:     m.SenderRole,
		Text:           m.Text,
		IsAutomatic:    m.IsAutomatic,
		CreatedAt:      m.CreatedAt,
	}
}

type CommentResponse struct {
	Message       *MessageDTO `json:"message"`
	Notifications int         `json:"notifications_created"`
}
