package models

import (
	"time"

	"gorm.io/datatypes"
)

// Типы уведомлений
const (
	NotificationTypeStatusChange    = "status_change"
	NotificationTypeNewComment      = "new_comment"
	NotificationTypeNewQuoteRequest = "new_quote_request"
)

type Notification struct {
	BaseModel
	UserID         string         `gorm:"type:varchar(36);not null;index"`
	Type           string         `gorm:"type:varchar(50);not null"`
	Title          string         `gorm:"type:varchar(200);not null"`
	Message        string         `gorm:"type:text"`
	Data           datatypes.JSON // {"quote_request_id": "...", "status": "..."}
	QuoteRequestID *string        `gorm:"type:varchar(36);index"`
	IsRead         bool           `gorm:"not null;default:false"`
	ReadAt         *time.Time
}
