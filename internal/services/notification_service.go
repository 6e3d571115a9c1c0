package services

//go:generate mockgen -source=notification_service.go -destination=mocks/mock_notification_service.go -package=mocks

import (
	"context"
	"encoding/json"

	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationService interface {
	GetUserNotifications(ctx context.Context, db *gorm.DB, userID string, query *dto.NotificationQuery, page, pageSize int) (*dto.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) error
	DeleteNotification(ctx context.Context, db *gorm.DB, userID, notificationID string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) GetUserNotifications(ctx context.Context, db *gorm.DB, userID string, query *dto.NotificationQuery, page, pageSize int) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindUserNotifications(db, userID, repositories.NotificationCriteria{
		UnreadOnly: query.UnreadOnly,
		Type:       query.Type,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]*dto.NotificationResponse, 0, len(notifications)),
		PageInfo:      dto.NewPageInfo(total, page, pageSize),
	}
	for i := range notifications {
		resp.Notifications = append(resp.Notifications, dto.NewNotificationResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return 0, handleRepoError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	if err := s.authorize(db, userID, notificationID); err != nil {
		return err
	}
	return handleRepoError(s.notificationRepo.MarkAsRead(db, notificationID))
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) error {
	return handleRepoError(s.notificationRepo.MarkAllAsRead(db, userID))
}

func (s *notificationService) DeleteNotification(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	if err := s.authorize(db, userID, notificationID); err != nil {
		return err
	}
	return handleRepoError(s.notificationRepo.Delete(db, notificationID))
}

// authorize - уведомление доступно только получателю
func (s *notificationService) authorize(db *gorm.DB, userID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		return handleRepoError(err)
	}
	if notification.UserID != userID {
		return apperrors.ErrNotificationAccessDenied
	}
	return nil
}

// newQuoteNotification собирает запись уведомления, связанную с заявкой
func newQuoteNotification(userID, notifType, title, body string, quote *models.QuoteRequest) *models.Notification {
	payload, _ := json.Marshal(map[string]interface{}{
		"quote_request_id": quote.ID,
		"quote_title":      quote.Title,
		"status":           quote.Status,
	})
	quoteID := quote.ID
	return &models.Notification{
		UserID:         userID,
		Type:           notifType,
		Title:          title,
		Message:        body,
		Data:           datatypes.JSON(payload),
		QuoteRequestID: &quoteID,
	}
}
