package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/internal/session"
	"carpinteria_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// SessionStore - хранилище refresh-сессий (Redis в проде, miniredis в тестах)
type SessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID, role string, expiresAt time.Time) error
	ConsumeRefreshSession(ctx context.Context, tokenHash string) (*session.TokenData, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserDTO, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	userRepo   repositories.UserRepository
	sessions   SessionStore
	refreshTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, sessions SessionStore, refreshTTL time.Duration) AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:   userRepo,
		sessions:   sessions,
		refreshTTL: refreshTTL,
	}
}

// Register - самостоятельная регистрация доступна только клиентам
func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRoleClient,
		Status:       models.UserStatusActive,
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Client registered", "user_id", user.ID)
	return s.issueTokens(ctx, user)
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, handleRepoError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken обменивает refresh-токен на новую пару. Старый токен
// удаляется при обмене, повторное использование дает 401.
func (s *authService) RefreshToken(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	data, err := s.sessions.ConsumeRefreshSession(ctx, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	// роль и статус берем из БД, а не из сессии
	user, err := s.userRepo.FindByID(db, data.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, handleRepoError(err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken)); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	out := dto.NewUserDTO(user)
	return &out, nil
}

func (s *authService) ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleRepoError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Password changed", "user_id", userID)
	return nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	expiresAt := time.Now().Add(s.refreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refreshToken), user.ID, string(user.Role), expiresAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(auth.TokenTTL()),
		User:         dto.NewUserDTO(user),
	}, nil
}
