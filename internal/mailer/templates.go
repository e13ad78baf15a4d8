package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"shop-service/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateActivation   = "activation"
	TemplateOrderCreated = "order_created"
	TemplateOrderStatus  = "order_status"
)

var subjects = map[string]string{
	TemplateActivation:   "Activate Your Account",
	TemplateOrderCreated: "Order #%d received",
	TemplateOrderStatus:  "Order #%d is now %s",
}

// Renderer builds the notification messages from the embedded templates
type Renderer struct {
	tmpl    *template.Template
	baseURL string
}

// NewRenderer parses the templates. Activation links are built on baseURL.
func NewRenderer(baseURL string) (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"formatMoney": func(amount int64) string { return printer.Sprintf("%d", amount) },
		"mul":         func(a, b int64) int64 { return a * b },
	}

	tmpl, err := template.New("mail").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, baseURL: baseURL}, nil
}

func (r *Renderer) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Activation renders the account activation email
func (r *Renderer) Activation(e *models.UserRegisteredEvent) (Message, error) {
	html, err := r.render(TemplateActivation, map[string]string{
		"Name": e.Name,
		"Link": r.baseURL + "/auth/activate/" + e.ActivationToken,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: e.Email, Subject: subjects[TemplateActivation], HTML: html}, nil
}

// OrderCreated renders the order confirmation
func (r *Renderer) OrderCreated(e *models.OrderCreatedEvent) (Message, error) {
	html, err := r.render(TemplateOrderCreated, e)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      e.Email,
		Subject: fmt.Sprintf(subjects[TemplateOrderCreated], e.OrderID),
		HTML:    html,
	}, nil
}

// OrderStatus renders the status change notification
func (r *Renderer) OrderStatus(e *models.OrderStatusChangedEvent) (Message, error) {
	html, err := r.render(TemplateOrderStatus, e)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      e.Email,
		Subject: fmt.Sprintf(subjects[TemplateOrderStatus], e.OrderID, e.StatusDesc),
		HTML:    html,
	}, nil
}
