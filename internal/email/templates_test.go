package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates_Loaded(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{TemplateStatusUpdate, TemplateNewComment, TemplateNewQuoteRequest},
		tm.TemplateNames())
}

func TestRender_StatusUpdate(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	html, err := tm.Render(TemplateStatusUpdate, TemplateData{
		"Title":      "¡Presupuesto aprobado!",
		"Name":       "Lucía",
		"QuoteTitle": "Armario <empotrado>",
		"Message":    "¡Buenas noticias!",
		"Stage":      "Presupuesto aprobado",
		"Percentage": 50,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hola Lucía")
	assert.Contains(t, html, "(50%)")
	// html/template экранирует пользовательский ввод
	assert.Contains(t, html, "Armario &lt;empotrado&gt;")
	assert.NotContains(t, html, "Ver mi solicitud")
}

func TestRender_UnknownTemplate(t *testing.T) {
	tm := NewTemplateManager()
	_, err := tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestSMTPProvider_Validate(t *testing.T) {
	p := NewSMTPProvider(&SMTPConfig{Host: "", Port: 587}, nil)
	assert.Error(t, p.Validate())

	p = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 0, FromEmail: "a@b.c"}, nil)
	assert.Error(t, p.Validate())

	p = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "taller@example.com"}, nil)
	assert.NoError(t, p.Validate())
}

func TestSMTPProvider_SendWithoutRecipients(t *testing.T) {
	p := NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "taller@example.com"}, nil)
	err := p.Send(&Email{Subject: "x"})
	assert.Error(t, err)
}

func TestLogProvider_RendersTemplate(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	p := NewLogProvider(tm)
	assert.NoError(t, p.SendWithTemplate(TemplateNewComment, TemplateData{"Comment": "hola"}, &Email{To: []string{"a@b.c"}}))
	assert.Error(t, p.SendWithTemplate("missing", nil, &Email{}))
}
