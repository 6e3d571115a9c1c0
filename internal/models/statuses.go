package models

type UserStatus string
type UserRole string
type QuoteStatus string
type QuoteCategory string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleAdmin  UserRole = "admin"
	UserRoleClient UserRole = "cliente"

	QuoteStatusPending    QuoteStatus = "pendiente"
	QuoteStatusInProgress QuoteStatus = "en_proceso"
	QuoteStatusAccepted   QuoteStatus = "aceptado"
	QuoteStatusCompleted  QuoteStatus = "completado"
	QuoteStatusRejected   QuoteStatus = "rechazado"

	QuoteCategoryKitchen  QuoteCategory = "cocina"
	QuoteCategoryWardrobe QuoteCategory = "armario"
	QuoteCategoryBathroom QuoteCategory = "mueble_bano"
	QuoteCategoryTable    QuoteCategory = "mesa"
	QuoteCategoryChair    QuoteCategory = "silla"
	QuoteCategoryShelving QuoteCategory = "estanteria"
	QuoteCategoryDoor     QuoteCategory = "puerta"
	QuoteCategoryWindow   QuoteCategory = "ventana"
	QuoteCategoryOther    QuoteCategory = "otro"
)

// QuoteStatuses - все статусы в порядке жизненного цикла
var QuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusInProgress,
	QuoteStatusAccepted,
	QuoteStatusCompleted,
	QuoteStatusRejected,
}

func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusInProgress, QuoteStatusAccepted,
		QuoteStatusCompleted, QuoteStatusRejected:
		return true
	}
	return false
}

// IsTerminal - completado и rechazado
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusCompleted || s == QuoteStatusRejected
}

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleClient
}

func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusSuspended
}

func (c QuoteCategory) IsValid() bool {
	switch c {
	case QuoteCategoryKitchen, QuoteCategoryWardrobe, QuoteCategoryBathroom,
		QuoteCategoryTable, QuoteCategoryChair, QuoteCategoryShelving,
		QuoteCategoryDoor, QuoteCategoryWindow, QuoteCategoryOther:
		return true
	}
	return false
}
