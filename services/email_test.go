package services

import (
	"testing"

	"complaint_desk_go/config"
	"complaint_desk_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotificationEmail(t *testing.T) {
	recipient := &models.User{Name: "Uma <User>", Email: "uma@example.com"}
	complaintID := "c-42"

	t.Run("with complaint link", func(t *testing.T) {
		n := &models.Notification{
			Title:       "Complaint resolved",
			Message:     "Your complaint \"Leak\" is now Resolved.",
			ComplaintID: &complaintID,
		}
		email, err := BuildNotificationEmail(recipient, n, "https://desk.example.com/")
		require.NoError(t, err)
		assert.Equal(t, []string{"uma@example.com"}, email.To)
		assert.Equal(t, "Complaint resolved", email.Subject)
		assert.Contains(t, email.HTMLBody, `href="https://desk.example.com/complaints/c-42"`)
		assert.Contains(t, email.HTMLBody, "Uma &lt;User&gt;")
		assert.Contains(t, email.TextBody, "https://desk.example.com/complaints/c-42")
		assert.Contains(t, email.TextBody, "Hello Uma <User>,")
	})

	t.Run("without complaint", func(t *testing.T) {
		n := &models.Notification{Title: "Welcome", Message: "Hi"}
		email, err := BuildNotificationEmail(recipient, n, "https://desk.example.com")
		require.NoError(t, err)
		assert.NotContains(t, email.HTMLBody, "href")
		assert.NotContains(t, email.TextBody, "/complaints/")
	})

	t.Run("without app url", func(t *testing.T) {
		n := &models.Notification{Title: "t", Message: "m", ComplaintID: &complaintID}
		email, err := BuildNotificationEmail(recipient, n, "")
		require.NoError(t, err)
		assert.NotContains(t, email.HTMLBody, "href")
	})
}

func TestSendEmail_TestMode(t *testing.T) {
	cfg := &config.Config{EmailTestMode: true}
	err := SendEmail(cfg, &Email{To: []string{"a@example.com"}, Subject: "s", TextBody: "t"})
	assert.NoError(t, err)
}

func TestSendEmail_Validation(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		err := SendEmail(&config.Config{}, &Email{To: []string{"a@example.com"}, TextBody: "t"})
		assert.ErrorContains(t, err, "RESEND_API_KEY not configured")
	})

	t.Run("empty body", func(t *testing.T) {
		err := SendEmail(&config.Config{ResendAPIKey: "re_test"}, &Email{To: []string{"a@example.com"}})
		assert.ErrorContains(t, err, "HTMLBody or TextBody")
	})
}
