package repositories

import (
	"carpinteria_backend/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(db *gorm.DB, message *models.QuoteMessage) error
	FindByQuote(db *gorm.DB, quoteID string) ([]models.QuoteMessage, error)
	CountByQuote(db *gorm.DB, quoteID string) (int64, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) Create(db *gorm.DB, message *models.QuoteMessage) error {
	return db.Create(message).Error
}

// FindByQuote - лента комментариев в хронологическом порядке
func (r *MessageRepositoryImpl) FindByQuote(db *gorm.DB, quoteID string) ([]models.QuoteMessage, error) {
	var messages []models.QuoteMessage
	err := db.Where("quote_request_id = ?", quoteID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) CountByQuote(db *gorm.DB, quoteID string) (int64, error) {
	var count int64
	err := db.Model(&models.QuoteMessage{}).Where("quote_request_id = ?", quoteID).Count(&count).Error
	return count, err
}
