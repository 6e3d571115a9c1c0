package auth

import "carpinteria_backend/internal/models"

// Разрешения по ролям
const (
	PermQuotesOwn      = "quotes:own"
	PermQuotesAll      = "quotes:all"
	PermQuotesTransit  = "quotes:transition"
	PermUsersManage    = "users:manage"
	PermCommentsOwn    = "comments:own"
	PermCommentsAll    = "comments:all"
	PermAttachmentsOwn = "attachments:own"
	PermAttachmentsAll = "attachments:all"
)

var permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermQuotesAll,
		PermQuotesTransit,
		PermUsersManage,
		PermCommentsAll,
		PermAttachmentsAll,
	},
	models.UserRoleClient: {
		PermQuotesOwn,
		PermCommentsOwn,
		PermAttachmentsOwn,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// CanAccessQuote - админ видит все заявки, клиент только свои
func CanAccessQuote(role models.UserRole, actorID, ownerID string) bool {
	if HasPermission(role, PermQuotesAll) {
		return true
	}
	return HasPermission(role, PermQuotesOwn) && actorID == ownerID
}

// IsAdmin проверяет является ли роль административной
func IsAdmin(role models.UserRole) bool {
	return role == models.UserRoleAdmin
}
