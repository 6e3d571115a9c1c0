package dto

import (
	"time"

	"carpinteria_backend/internal/models"
)

type CreateQuoteRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Category    string     `json:"category" validate:"required,is-quote-category"`
	Material    string     `json:"material" validate:"omitempty,max=100"`
	Description string     `json:"description" validate:"required,max=5000"`
	Dimensions  string     `json:"dimensions" validate:"omitempty,max=200"`
	Location    string     `json:"location" validate:"omitempty,max=255"`
	BudgetMin   float64    `json:"budget_min" validate:"gte=0"`
	BudgetMax   float64    `json:"budget_max" validate:"gte=0"`
	DesiredDate *time.Time `json:"desired_date"`
}

// UpdateQuoteRequest - правка клиентом, пока заявка в статусе pendiente
type UpdateQuoteRequest struct {
	Title       *string    `json:"title" validate:"omitnil,not-blank,min=3,max=200"`
	Category    *string    `json:"category" validate:"omitnil,not-blank,is-quote-category"`
	Material    *string    `json:"material" validate:"omitempty,max=100"`
	Description *string    `json:"description" validate:"omitnil,not-blank,max=5000"`
	Dimensions  *string    `json:"dimensions" validate:"omitempty,max=200"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	BudgetMin   *float64   `json:"budget_min" validate:"omitempty,gte=0"`
	BudgetMax   *float64   `json:"budget_max" validate:"omitempty,gte=0"`
	DesiredDate *time.Time `json:"desired_date"`
}

// AdminUpdateQuoteRequest - поля, которые заполняет администратор
type AdminUpdateQuoteRequest struct {
	QuotedPrice       *float64   `json:"quoted_price" validate:"omitempty,gte=0"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	AdminNotes        *string    `json:"admin_notes" validate:"omitempty,max=5000"`
}

// UpdateStatusRequest - смена статуса заявки администратором.
// Message и Progress необязательны: без них берутся значения по умолчанию.
type UpdateStatusRequest struct {
	Status       string `json:"status" validate:"required"`
	Message      string `json:"message" validate:"omitempty,max=5000"`
	Progress     *int   `json:"progress" validate:"omitempty,min=0,max=100"`
	NotifyClient bool   `json:"notify_client"`
}

type QuoteListQuery struct {
	Status   string `form:"status" validate:"omitempty,is-quote-status"`
	Category string `form:"category" validate:"omitempty,is-quote-category"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	UserID   string `form:"user_id" validate:"omitempty,max=36"`
}

type QuoteResponse struct {
	ID                 string               `json:"id"`
	UserID             string               `json:"user_id"`
	Title              string               `json:"title"`
	Category           models.QuoteCategory `json:"category"`
	Material           string               `json:"material"`
	Description        string               `json:"description"`
	Dimensions         string               `json:"dimensions"`
	Location           string               `json:"location"`
	BudgetMin          float64              `json:"budget_min"`
	BudgetMax          float64              `json:"budget_max"`
	DesiredDate        *time.Time           `json:"desired_date,omitempty"`
	Status             models.QuoteStatus   `json:"status"`
	ProgressPercentage int                  `json:"progress_percentage"`
	ProgressStage      string               `json:"progress_stage"`
	ProgressUpdatedAt  *time.Time           `json:"progress_updated_at,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	QuotedPrice        *float64             `json:"quoted_price,omitempty"`
	EstimatedDelivery  *time.Time           `json:"estimated_delivery,omitempty"`
	AdminNotes         string               `json:"admin_notes,omitempty"`
	Client             *UserDTO             `json:"client,omitempty"`
	LatestProgress     *ProgressResponse    `json:"latest_progress,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewQuoteResponse - adminView=false скрывает внутренние заметки администратора
func NewQuoteResponse(q *models.QuoteRequest, adminView bool) *QuoteResponse {
	resp := &QuoteResponse{
		ID:                 q.ID,
		UserID:             q.UserID,
		Title:              q.Title,
		Category:           q.Category,
		Material:           q.Material,
		Description:        q.Description,
		Dimensions:         q.Dimensions,
		Location:           q.Location,
		BudgetMin:          q.BudgetMin,
		BudgetMax:          q.BudgetMax,
		DesiredDate:        q.DesiredDate,
		Status:             q.Status,
		ProgressPercentage: q.ProgressPercentage,
		ProgressStage:      q.ProgressStage,
		ProgressUpdatedAt:  q.ProgressUpdatedAt,
		CompletedAt:        q.CompletedAt,
		QuotedPrice:        q.QuotedPrice,
		EstimatedDelivery:  q.EstimatedDelivery,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
	if adminView {
		resp.AdminNotes = q.AdminNotes
	}
	if q.User != nil {
		client := NewUserDTO(q.User)
		resp.Client = &client
	}
	return resp
}

type QuoteListResponse struct {
	Quotes []*QuoteResponse `json:"quotes"`
	PageInfo
}

type QuoteStatsResponse struct {
	ByStatus map[models.QuoteStatus]int64 `json:"by_status"`
	Total    int64                        `json:"total"`
}

type ProgressResponse struct {
	ID         string             `json:"id"`
	Status     models.QuoteStatus `json:"status"`
	Percentage int                `json:"percentage"`
	Stage      string             `json:"stage"`
	Note       string             `json:"note,omitempty"`
	CreatedBy  string             `json:"created_by"`
	CreatedAt  time.Time          `json:"created_at"`
}

func NewProgressResponse(p *models.ProgressUpdate) *ProgressResponse {
	return &ProgressResponse{
		ID:         p.ID,
		Status:     p.Status,
		Percentage: p.Percentage,
		Stage:      p.Stage,
		Note:       p.Note,
		CreatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
	}
}

// TransitionResponse - результат смены статуса
type TransitionResponse struct {
	Quote   *QuoteResponse       `json:"quote"`
	Message *MessageDTO          `json:"message"`
	Allowed []models.QuoteStatus `json:"allowed_next,omitempty"`
}
