package algorithms

import (
	"errors"
	"strings"
	"time"

	"carpinteria_backend/internal/models"
)

var (
	ErrUnknownStatus        = errors.New("unknown quote status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrInvalidPercentage    = errors.New("progress percentage must be between 0 and 100")
)

// StatusDefaults - фиксированные значения, связанные со статусом заявки
type StatusDefaults struct {
	Percentage        int
	Stage             string
	ClientMessage     string
	NotificationTitle string
	NotificationBody  string
	EmailSubject      string
}

// Таблица неизменяемая: наружу отдаются только копии через DefaultsFor.
var statusDefaults = map[models.QuoteStatus]StatusDefaults{
	models.QuoteStatusPending: {
		Percentage:        10,
		Stage:             "Solicitud recibida",
		ClientMessage:     "Hemos recibido tu solicitud de presupuesto. Nuestro equipo la revisará en breve y te responderemos lo antes posible.",
		NotificationTitle: "Solicitud recibida",
		NotificationBody:  "Tu solicitud de presupuesto está pendiente de revisión.",
		EmailSubject:      "Hemos recibido tu solicitud de presupuesto",
	},
	models.QuoteStatusInProgress: {
		Percentage:        30,
		Stage:             "En revisión",
		ClientMessage:     "Estamos revisando tu proyecto y preparando el presupuesto detallado. Te mantendremos informado.",
		NotificationTitle: "Tu presupuesto está en proceso",
		NotificationBody:  "Nuestro equipo está trabajando en tu presupuesto.",
		EmailSubject:      "Tu presupuesto está en proceso",
	},
	models.QuoteStatusAccepted: {
		Percentage:        50,
		Stage:             "Presupuesto aprobado",
		ClientMessage:     "¡Buenas noticias! Tu presupuesto ha sido aceptado y comenzaremos a trabajar en tu proyecto. Nos pondremos en contacto contigo para coordinar los detalles.",
		NotificationTitle: "¡Presupuesto aprobado!",
		NotificationBody:  "Tu solicitud ha sido aprobada. Pronto nos pondremos en contacto contigo para coordinar el trabajo.",
		EmailSubject:      "¡Tu presupuesto ha sido aprobado!",
	},
	models.QuoteStatusCompleted: {
		Percentage:        100,
		Stage:             "Proyecto completado",
		ClientMessage:     "¡Tu proyecto está terminado! Gracias por confiar en nuestro taller. Esperamos que disfrutes de tu mueble.",
		NotificationTitle: "Proyecto completado",
		NotificationBody:  "Tu proyecto ha sido completado con éxito.",
		EmailSubject:      "Tu proyecto ha sido completado",
	},
	models.QuoteStatusRejected: {
		Percentage:        0,
		Stage:             "Solicitud rechazada",
		ClientMessage:     "Lamentablemente no podremos realizar este proyecto en este momento. Gracias por tu interés, no dudes en enviarnos nuevas solicitudes.",
		NotificationTitle: "Actualización de tu solicitud",
		NotificationBody:  "Tu solicitud de presupuesto no ha podido ser aceptada.",
		EmailSubject:      "Actualización de tu solicitud de presupuesto",
	},
}

// allowedFrom применяется только в строгом режиме (workflow.strict_transitions).
var allowedFrom = map[models.QuoteStatus][]models.QuoteStatus{
	models.QuoteStatusPending:    {models.QuoteStatusInProgress, models.QuoteStatusAccepted, models.QuoteStatusRejected},
	models.QuoteStatusInProgress: {models.QuoteStatusPending, models.QuoteStatusAccepted, models.QuoteStatusRejected},
	models.QuoteStatusAccepted:   {models.QuoteStatusInProgress, models.QuoteStatusCompleted, models.QuoteStatusRejected},
	models.QuoteStatusCompleted:  {},
	models.QuoteStatusRejected:   {models.QuoteStatusPending},
}

// DefaultsFor возвращает копию значений по умолчанию для статуса
func DefaultsFor(status models.QuoteStatus) (StatusDefaults, bool) {
	d, ok := statusDefaults[status]
	return d, ok
}

// CanTransition проверяет переход по строгой таблице
func CanTransition(from, to models.QuoteStatus) bool {
	for _, s := range allowedFrom[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions - куда можно перейти из статуса (строгий режим)
func AllowedTransitions(from models.QuoteStatus) []models.QuoteStatus {
	next := allowedFrom[from]
	out := make([]models.QuoteStatus, len(next))
	copy(out, next)
	return out
}

// TransitionInput - входные данные перехода
type TransitionInput struct {
	Current          models.QuoteStatus
	Next             models.QuoteStatus
	ExplicitMessage  string
	ExplicitProgress *int
	Strict           bool
	Now              time.Time
}

// TransitionPlan - что нужно записать в БД
type TransitionPlan struct {
	Status       models.QuoteStatus
	Percentage   int
	Stage        string
	UpdatedAt    time.Time
	CompletedAt  *time.Time
	MessageText  string
	IsAutomatic  bool
	Notification StatusDefaults
}

// PlanTransition - чистая функция: по текущему и новому статусу считает прогресс,
// текст сообщения и шаблон уведомления. В БД ничего не пишет.
func PlanTransition(in TransitionInput) (TransitionPlan, error) {
	defaults, ok := DefaultsFor(in.Next)
	if !ok {
		return TransitionPlan{}, ErrUnknownStatus
	}

	if in.Strict && !CanTransition(in.Current, in.Next) {
		return TransitionPlan{}, ErrTransitionNotAllowed
	}

	percentage := defaults.Percentage
	if in.ExplicitProgress != nil {
		if *in.ExplicitProgress < 0 || *in.ExplicitProgress > 100 {
			return TransitionPlan{}, ErrInvalidPercentage
		}
		percentage = *in.ExplicitProgress
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	plan := TransitionPlan{
		Status:       in.Next,
		Percentage:   percentage,
		Stage:        defaults.Stage,
		UpdatedAt:    now,
		MessageText:  defaults.ClientMessage,
		IsAutomatic:  true,
		Notification: defaults,
	}

	if msg := strings.TrimSpace(in.ExplicitMessage); msg != "" {
		plan.MessageText = msg
		plan.IsAutomatic = false
	}

	if in.Next == models.QuoteStatusCompleted {
		completedAt := now
		plan.CompletedAt = &completedAt
	}

	return plan, nil
}
