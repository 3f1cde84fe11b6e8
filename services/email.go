package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"complaint_desk_go/config"
	"complaint_desk_go/logger"
	"complaint_desk_go/models"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

var notificationHTML = template.Must(template.New("notification").Parse(`<p>Hello {{.Name}},</p>
<p>{{.Message}}</p>
{{if .Link}}<p><a href="{{.Link}}">View complaint</a></p>{{end}}
<p>Complaint Desk</p>`))

type notificationEmailData struct {
	Name    string
	Message string
	Link    string
}

// BuildNotificationEmail mirrors an inbox notification as an email to its recipient
func BuildNotificationEmail(recipient *models.User, n *models.Notification, appURL string) (*Email, error) {
	data := notificationEmailData{Name: recipient.Name, Message: n.Message}
	if n.ComplaintID != nil && appURL != "" {
		data.Link = strings.TrimRight(appURL, "/") + "/complaints/" + *n.ComplaintID
	}

	var buf bytes.Buffer
	if err := notificationHTML.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render notification email: %w", err)
	}

	text := fmt.Sprintf("Hello %s,\n\n%s\n", recipient.Name, n.Message)
	if data.Link != "" {
		text += "\n" + data.Link + "\n"
	}

	return &Email{
		To:       []string{recipient.Email},
		Subject:  n.Title,
		HTMLBody: buf.String(),
		TextBody: text,
	}, nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In test mode, log the email instead of sending
	if cfg.EmailTestMode {
		logger.Log.Info("email logged (test mode, not sent)",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject),
			zap.String("text", email.TextBody))
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logger.Log.Info("email sent", zap.String("resend_id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// EmailDelivery mirrors notifications to the recipients' email addresses
type EmailDelivery struct {
	DB     *gorm.DB
	Config *config.Config
}

func (d *EmailDelivery) Deliver(ctx context.Context, notifications []models.Notification) error {
	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.UserID)
	}

	var users []models.User
	if err := d.DB.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load notification recipients: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	var errs []error
	for i := range notifications {
		recipient, ok := byID[notifications[i].UserID]
		if !ok || recipient.Email == "" {
			continue
		}
		email, err := BuildNotificationEmail(recipient, &notifications[i], d.Config.AppURL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := SendEmail(d.Config, email); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
