package email

// Email - одно исходящее письмо
type Email struct {
	From     string
	FromName string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData - данные для шаблонов писем
type TemplateData map[string]interface{}

// Имена встроенных шаблонов
const (
	TemplateStatusUpdate    = "status_update"
	TemplateNewComment      = "new_comment"
	TemplateNewQuoteRequest = "new_quote_request"
)
