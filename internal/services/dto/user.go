package dto

import "carpinteria_backend/internal/models"

// UpdateProfileRequest - nil значит "не менять"
type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=150"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	City    *string `json:"city" validate:"omitempty,max=100"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,is-user-role"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,is-user-status"`
}

type UserListQuery struct {
	Role   string `form:"role" validate:"omitempty,is-user-role"`
	Status string `form:"status" validate:"omitempty,is-user-status"`
	Search string `form:"search" validate:"omitempty,max=100"`
}

type UserListResponse struct {
	Users []UserDTO `json:"users"`
	PageInfo
}
