package services

import (
	"context"
	"strings"

	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CommentService interface {
	AddComment(ctx context.Context, db *gorm.DB, quoteID, authorID string, authorRole models.UserRole, text string) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, db *gorm.DB, quoteID, actorID string, role models.UserRole) ([]*dto.MessageDTO, error)
}

type commentService struct {
	quoteRepo        repositories.QuoteRepository
	messageRepo      repositories.MessageRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	mailer           *EmailService
}

func NewCommentService(
	quoteRepo repositories.QuoteRepository,
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	mailer *EmailService,
) CommentService {
	return &commentService{
		quoteRepo:        quoteRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
	}
}

// AddComment добавляет комментарий в ленту заявки и рассылает уведомления:
// комментарий клиента - каждому администратору на момент записи,
// комментарий администратора - владельцу заявки.
func (s *commentService) AddComment(ctx context.Context, db *gorm.DB, quoteID, authorID string, authorRole models.UserRole, text string) (*dto.CommentResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyComment
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	quote, err := s.quoteRepo.FindByIDWithOwner(tx, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !auth.CanAccessQuote(authorRole, authorID, quote.UserID) {
		return nil, apperrors.ErrQuoteAccessDenied
	}

	message := &models.QuoteMessage{
		QuoteRequestID: quote.ID,
		SenderID:       authorID,
		SenderRole:     authorRole,
		Text:           text,
		IsAutomatic:    false,
	}
	if err := s.messageRepo.Create(tx, message); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	var notifications []*models.Notification
	if auth.IsAdmin(authorRole) {
		notifications = append(notifications, newQuoteNotification(
			quote.UserID,
			models.NotificationTypeNewComment,
			"Nuevo comentario en tu solicitud",
			"Hemos dejado un comentario en \""+quote.Title+"\".",
			quote,
		))
	} else {
		admins, err := s.userRepo.FindByRole(tx, models.UserRoleAdmin)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		for _, admin := range admins {
			notifications = append(notifications, newQuoteNotification(
				admin.ID,
				models.NotificationTypeNewComment,
				"Nuevo comentario del cliente",
				"El cliente ha comentado en \""+quote.Title+"\".",
				quote,
			))
		}
	}
	if err := s.notificationRepo.CreateBulk(tx, notifications); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Comment added",
		"quote_id", quote.ID,
		"author_role", authorRole,
		"notifications", len(notifications),
	)

	if auth.IsAdmin(authorRole) && quote.User != nil {
		if err := s.mailer.SendNewComment(ctx, quote.User, quote, text); err != nil {
			logger.CtxWithError(ctx, "Failed to send comment email", err, "quote_id", quote.ID)
		}
	}

	return &dto.CommentResponse{
		Message:       dto.NewMessageDTO(message),
		Notifications: len(notifications),
	}, nil
}

func (s *commentService) ListComments(ctx context.Context, db *gorm.DB, quoteID, actorID string, role models.UserRole) ([]*dto.MessageDTO, error) {
	if _, err := authorizeQuote(db, s.quoteRepo, actorID, role, quoteID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.FindByQuote(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	out := make([]*dto.MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, dto.NewMessageDTO(&messages[i]))
	}
	return out, nil
}
