package validator

import (
	"log"
	"strings"

	"carpinteria_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила на основе statuses.go
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// ошибка времени запуска, дальше работать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-quote-status", validateQuoteStatus)
	mustRegister("is-quote-category", validateQuoteCategory)
	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-user-status", validateUserStatus)
	mustRegister("not-blank", validateNotBlank)
}

// Пустые значения пропускаются, для них есть 'required'

func validateQuoteStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.QuoteStatus(value).IsValid()
}

func validateQuoteCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.QuoteCategory(value).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserRole(value).IsValid()
}

func validateUserStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserStatus(value).IsValid()
}

// validateNotBlank - строка не из одних пробелов. Для *string вместе с omitnil:
// поле можно не передавать, но нельзя стереть.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
