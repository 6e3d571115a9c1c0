package apperrors

import (
	"net/http"
)

/*
Предопределенные доменные ошибки. Сервисы возвращают их как есть,
хэндлеры отдают через HandleError.
*/

// --- Auth & Users ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный, просроченный или отозванный токен (access или refresh)
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

// ErrInsufficientPermissions - не-админ пытается выполнить админ-действие
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrCannotModifySelf - админ пытается сменить себе роль или статус
var ErrCannotModifySelf = New(
	CodeForbidden,
	"user",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

// --- Quotes ---

var ErrQuoteNotFound = New(
	CodeNotFound,
	"quote",
	"Quote request not found",
	http.StatusNotFound,
)

// ErrQuoteAccessDenied - клиент обращается к чужой заявке
var ErrQuoteAccessDenied = New(
	CodeForbidden,
	"quote",
	"You do not have access to this quote request",
	http.StatusForbidden,
)

// ErrQuoteNotEditable - клиент может менять заявку только пока она pendiente
var ErrQuoteNotEditable = New(
	CodeInvalidStatus,
	"quote",
	"Quote request can only be changed while it is pending",
	http.StatusConflict,
)

var ErrUnknownQuoteStatus = New(
	CodeValidationFailed,
	"quote",
	"Unknown quote status",
	http.StatusBadRequest,
)

// ErrTransitionNotAllowed - переход запрещен таблицей (строгий режим)
var ErrTransitionNotAllowed = New(
	CodeInvalidStatus,
	"quote",
	"Status transition is not allowed",
	http.StatusConflict,
)

var ErrInvalidBudgetRange = New(
	CodeValidationFailed,
	"quote",
	"budget_max cannot be less than budget_min",
	http.StatusBadRequest,
)

// --- Comments ---

var ErrEmptyComment = New(
	CodeValidationFailed,
	"comment",
	"Comment text cannot be empty",
	http.StatusBadRequest,
)

// --- Notifications ---

var ErrNotificationNotFound = New(
	CodeNotFound,
	"notification",
	"Notification not found",
	http.StatusNotFound,
)

var ErrNotificationAccessDenied = New(
	CodeForbidden,
	"notification",
	"Access to notification denied",
	http.StatusForbidden,
)

// --- Attachments ---

var ErrAttachmentNotFound = New(
	CodeNotFound,
	"attachment",
	"Attachment not found",
	http.StatusNotFound,
)

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

var ErrTooManyAttachments = New(
	CodeLimitExceeded,
	"attachment",
	"Attachment limit for this quote request has been reached",
	http.StatusConflict,
)
