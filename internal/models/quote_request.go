package models

import "time"

// QuoteRequest - заявка клиента на изготовление мебели (presupuesto)
type QuoteRequest struct {
	BaseModel
	UserID      string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title       string        `gorm:"type:varchar(200);not null" json:"title"`
	Category    QuoteCategory `gorm:"type:varchar(30);not null;index" json:"category"`
	Material    string        `gorm:"type:varchar(100)" json:"material"`
	Description string        `gorm:"type:text" json:"description"`
	Dimensions  string        `gorm:"type:varchar(200)" json:"dimensions"`
	Location    string        `gorm:"type:varchar(255)" json:"location"`
	BudgetMin   float64       `json:"budget_min"`
	BudgetMax   float64       `json:"budget_max"`
	DesiredDate *time.Time    `json:"desired_date,omitempty"`

	Status             QuoteStatus `gorm:"type:varchar(20);not null;index;default:'pendiente'" json:"status"`
	ProgressPercentage int         `gorm:"not null;default:0" json:"progress_percentage"`
	ProgressStage      string      `gorm:"type:varchar(100)" json:"progress_stage"`
	ProgressUpdatedAt  *time.Time  `json:"progress_updated_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`

	// Поля, которые заполняет администратор
	QuotedPrice       *float64   `json:"quoted_price,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	AdminNotes        string     `gorm:"type:text" json:"admin_notes,omitempty"`

	// Relations
	User        *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Messages    []QuoteMessage   `gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE" json:"-"`
	Progress    []ProgressUpdate `gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE" json:"-"`
	Attachments []Attachment     `gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProgressUpdate - запись истории прогресса, добавляется при каждой смене статуса
type ProgressUpdate struct {
	BaseModel
	QuoteRequestID string      `gorm:"type:varchar(36);not null;index" json:"quote_request_id"`
	Status         QuoteStatus `gorm:"type:varchar(20);not null" json:"status"`
	Percentage     int         `gorm:"not null" json:"percentage"`
	Stage          string      `gorm:"type:varchar(100)" json:"stage"`
	Note           string      `gorm:"type:text" json:"note,omitempty"`
	CreatedBy      string      `gorm:"type:varchar(36)" json:"created_by"`
}
