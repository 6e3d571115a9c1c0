package models

// QuoteMessage - комментарий в ленте заявки. Только добавление.
type QuoteMessage struct {
	BaseModel
	QuoteRequestID string   `gorm:"type:varchar(36);not null;index" json:"quote_request_id"`
	SenderID       string   `gorm:"type:varchar(36);not null" json:"sender_id"`
	SenderRole     UserRole `gorm:"type:varchar(20);not null" json:"sender_role"`
	Text           string   `gorm:"type:text;not null" json:"text"`
	IsAutomatic    bool     `gorm:"not null;default:false" json:"is_automatic"`
}
