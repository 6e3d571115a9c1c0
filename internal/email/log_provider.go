package email

import (
	"carpinteria_backend/internal/logger"
)

// LogProvider пишет письма в лог вместо отправки. Используется, когда
// email.enabled=false, и в локальной разработке.
type LogProvider struct {
	renderer TemplateRenderer
}

func NewLogProvider(renderer TemplateRenderer) *LogProvider {
	return &LogProvider{renderer: renderer}
}

func (p *LogProvider) Send(email *Email) error {
	logger.Debug("Email suppressed", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *LogProvider) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	if p.renderer != nil {
		if _, err := p.renderer.Render(templateName, data); err != nil {
			return err
		}
	}
	return p.Send(email)
}

func (p *LogProvider) Validate() error { return nil }
func (p *LogProvider) Close() error    { return nil }
