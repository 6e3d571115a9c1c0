package services

import (
	"context"
	"fmt"
	"strings"

	"carpinteria_backend/internal/algorithms"
	"carpinteria_backend/internal/email"
	"carpinteria_backend/internal/models"
)

// MailSettings - какие письма отправлять. Выключенная почта задается
// провайдером (LogProvider), а не здесь.
type MailSettings struct {
	OnStatus  bool
	OnComment bool
	PortalURL string
}

// EmailService собирает письма по доменным событиям и отдает их провайдеру.
// Ошибки возвращаются вызывающему; сервисы логируют их после коммита и не
// откатывают из-за них данные.
type EmailService struct {
	provider email.Provider
	settings MailSettings
}

func NewEmailService(provider email.Provider, settings MailSettings) *EmailService {
	return &EmailService{
		provider: provider,
		settings: settings,
	}
}

func (s *EmailService) active() bool {
	return s != nil && s.provider != nil
}

func (s *EmailService) portalLink(quoteID string) string {
	if s.settings.PortalURL == "" {
		return ""
	}
	return strings.TrimRight(s.settings.PortalURL, "/") + "/presupuestos/" + quoteID
}

// SendStatusUpdate - письмо клиенту о смене статуса заявки
func (s *EmailService) SendStatusUpdate(ctx context.Context, client *models.User, quote *models.QuoteRequest, plan algorithms.TransitionPlan) error {
	if !s.active() || !s.settings.OnStatus {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := email.TemplateData{
		"Title":      plan.Notification.NotificationTitle,
		"Name":       client.Name,
		"QuoteTitle": quote.Title,
		"Message":    plan.MessageText,
		"Stage":      plan.Stage,
		"Percentage": plan.Percentage,
		"PortalURL":  s.portalLink(quote.ID),
	}
	msg := &email.Email{
		To:      []string{client.Email},
		Subject: plan.Notification.EmailSubject,
	}
	if err := s.provider.SendWithTemplate(email.TemplateStatusUpdate, data, msg); err != nil {
		return fmt.Errorf("status email to %s: %w", client.Email, err)
	}
	return nil
}

// SendNewComment - письмо клиенту о комментарии администратора
func (s *EmailService) SendNewComment(ctx context.Context, client *models.User, quote *models.QuoteRequest, text string) error {
	if !s.active() || !s.settings.OnComment {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := email.TemplateData{
		"Name":       client.Name,
		"QuoteTitle": quote.Title,
		"Comment":    text,
		"PortalURL":  s.portalLink(quote.ID),
	}
	msg := &email.Email{
		To:      []string{client.Email},
		Subject: "Nuevo comentario en tu solicitud: " + quote.Title,
	}
	if err := s.provider.SendWithTemplate(email.TemplateNewComment, data, msg); err != nil {
		return fmt.Errorf("comment email to %s: %w", client.Email, err)
	}
	return nil
}

// SendNewQuoteRequest - одно письмо всем администраторам о новой заявке
func (s *EmailService) SendNewQuoteRequest(ctx context.Context, admins []models.User, client *models.User, quote *models.QuoteRequest) error {
	if !s.active() || len(admins) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := make([]string, 0, len(admins))
	for _, a := range admins {
		to = append(to, a.Email)
	}

	data := email.TemplateData{
		"ClientName":  client.Name,
		"ClientEmail": client.Email,
		"QuoteTitle":  quote.Title,
		"Category":    string(quote.Category),
		"Description": quote.Description,
		"PortalURL":   s.portalLink(quote.ID),
	}
	msg := &email.Email{
		To:      to,
		Subject: "Nueva solicitud de presupuesto: " + quote.Title,
	}
	if err := s.provider.SendWithTemplate(email.TemplateNewQuoteRequest, data, msg); err != nil {
		return fmt.Errorf("new quote email: %w", err)
	}
	return nil
}
