package services

import (
	"carpinteria_backend/internal/email"
	"carpinteria_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	QuoteService        QuoteService
	WorkflowService     WorkflowService
	CommentService      CommentService
	NotificationService NotificationService
	AttachmentService   AttachmentService
	EmailService        *EmailService
	EmailProvider       email.Provider
	Storage             storage.Storage
}
