package services

import (
	"context"
	"strings"

	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	// Profile
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserDTO, error)

	// Admin operations
	ListUsers(ctx context.Context, db *gorm.DB, query *dto.UserListQuery, page, pageSize int) (*dto.UserListResponse, error)
	UpdateUserRole(ctx context.Context, db *gorm.DB, actorID, userID string, role models.UserRole) (*dto.UserDTO, error)
	UpdateUserStatus(ctx context.Context, db *gorm.DB, actorID, userID string, status models.UserStatus) (*dto.UserDTO, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	out := dto.NewUserDTO(user)
	return &out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.City != nil {
		fields["city"] = *req.City
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, userID, fields); err != nil {
			return nil, handleRepoError(err)
		}
	}
	return s.GetProfile(ctx, db, userID)
}

func (s *userService) ListUsers(ctx context.Context, db *gorm.DB, query *dto.UserListQuery, page, pageSize int) (*dto.UserListResponse, error) {
	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		Role:     models.UserRole(query.Role),
		Status:   models.UserStatus(query.Status),
		Search:   strings.TrimSpace(query.Search),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	resp := &dto.UserListResponse{
		Users:    make([]dto.UserDTO, 0, len(users)),
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}
	for i := range users {
		resp.Users = append(resp.Users, dto.NewUserDTO(&users[i]))
	}
	return resp, nil
}

func (s *userService) UpdateUserRole(ctx context.Context, db *gorm.DB, actorID, userID string, role models.UserRole) (*dto.UserDTO, error) {
	if actorID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if !role.IsValid() {
		return nil, apperrors.ValidationError(map[string]string{"role": "Must be one of: admin, cliente"})
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"role": role}); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "User role changed", "admin_id", actorID, "user_id", userID, "role", role)
	return s.GetProfile(ctx, db, userID)
}

func (s *userService) UpdateUserStatus(ctx context.Context, db *gorm.DB, actorID, userID string, status models.UserStatus) (*dto.UserDTO, error) {
	if actorID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if !status.IsValid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "Must be one of: active, suspended"})
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"status": status}); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "User status changed", "admin_id", actorID, "user_id", userID, "status", status)
	return s.GetProfile(ctx, db, userID)
}
