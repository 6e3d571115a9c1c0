package services

import (
	"errors"

	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/pkg/apperrors"
)

// handleRepoError переводит сентинелы репозиториев в доменные AppError
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrQuoteNotFound):
		return apperrors.ErrQuoteNotFound
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperrors.ErrNotificationNotFound
	case errors.Is(err, repositories.ErrAttachmentNotFound):
		return apperrors.ErrAttachmentNotFound
	default:
		return apperrors.DatabaseError(err)
	}
}
