package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/domodwyer/mailyak/v3"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Confirmation is the content of a purchase confirmation email.
type Confirmation struct {
	To           string
	CustomerName string
	CustomerDni  string
	EventTitle   string
	TicketID     string
	Quantity     int
	Total        decimal.Decimal
	Currency     string
}

func confirmationFrom(issued TicketIssued) Confirmation {
	return Confirmation{
		To:           issued.CustomerEmail,
		CustomerName: issued.CustomerName,
		CustomerDni:  issued.CustomerDni,
		EventTitle:   issued.EventTitle,
		TicketID:     issued.TicketID.String(),
		Quantity:     issued.Quantity,
		Total:        issued.TotalPrice,
		Currency:     issued.Currency,
	}
}

func (c Confirmation) Subject() string {
	return fmt.Sprintf("Your ticket for %s - Confirmation", c.EventTitle)
}

type Mailer interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when no SMTP
// host is configured.
func NewMailer(settings SMTPSettings) Mailer {
	if settings.Host == "" {
		return LogMailer{}
	}
	return &SMTPMailer{settings: settings}
}

type SMTPMailer struct {
	settings SMTPSettings
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, c Confirmation) error {
	body, err := renderConfirmation(c)
	if err != nil {
		return err
	}

	mail, err := m.newMail()
	if err != nil {
		return err
	}
	mail.To(c.To)
	mail.From(m.settings.From)
	mail.FromName(m.settings.FromName)
	mail.Subject(c.Subject())
	mail.HTML().Set(body)

	if err := mail.Send(); err != nil {
		return fmt.Errorf("sending confirmation to %s: %w", c.To, err)
	}
	return nil
}

// newMail uses implicit TLS on port 465 and STARTTLS elsewhere.
func (m *SMTPMailer) newMail() (*mailyak.MailYak, error) {
	addr := net.JoinHostPort(m.settings.Host, strconv.Itoa(m.settings.Port))

	var auth smtp.Auth
	if m.settings.User != "" {
		auth = smtp.PlainAuth("", m.settings.User, m.settings.Password, m.settings.Host)
	}

	if m.settings.Port == 465 {
		mail, err := mailyak.NewWithTLS(addr, auth, &tls.Config{ServerName: m.settings.Host})
		if err != nil {
			return nil, fmt.Errorf("configuring smtp client: %w", err)
		}
		return mail, nil
	}
	return mailyak.New(addr, auth), nil
}

type LogMailer struct{}

func (LogMailer) SendConfirmation(ctx context.Context, c Confirmation) error {
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"to":        c.To,
		"subject":   c.Subject(),
		"customer":  c.CustomerName,
		"dni":       c.CustomerDni,
		"quantity":  c.Quantity,
		"total":     c.Total.StringFixed(2) + " " + c.Currency,
		"ticket_id": c.TicketID,
	}).Info("SMTP not configured, confirmation email logged")
	return nil
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h1>Purchase confirmed</h1>
  <p>Hello {{.CustomerName}}, thank you for your purchase.</p>
  <h2>{{.EventTitle}}</h2>
  <table>
    <tr><td>Name</td><td>{{.CustomerName}}</td></tr>
    <tr><td>DNI</td><td>{{.CustomerDni}}</td></tr>
    <tr><td>Tickets</td><td>{{.Quantity}}</td></tr>
    <tr><td>Total</td><td>{{.Total}} {{.Currency}}</td></tr>
    <tr><td>Ticket ID</td><td>{{.TicketID}}</td></tr>
  </table>
  <p>Show the QR code of this ticket at the entrance.</p>
  <p style="font-size: 12px; color: #888;">&copy; {{.Year}} Museo La Unidad</p>
</body>
</html>
`))

func renderConfirmation(c Confirmation) (string, error) {
	var buf bytes.Buffer
	err := confirmationTemplate.Execute(&buf, struct {
		Confirmation
		Total string
		Year  int
	}{
		Confirmation: c,
		Total:        c.Total.StringFixed(2),
		Year:         time.Now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("rendering confirmation: %w", err)
	}
	return buf.String(), nil
}
