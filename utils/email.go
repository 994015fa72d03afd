package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// SendEmail sends an HTML email using the ZeptoMail HTTP API. Delivery is
// fire-and-forget for callers: commit correctness never depends on it.
func SendEmail(to, toName, subject, body string) error {
	apiURL := os.Getenv("ZEPTO_API_URL") // e.g. https://api.zeptomail.com/v1.1/email
	apiKey := os.Getenv("ZEPTO_API_KEY")
	from := os.Getenv("EMAIL_FROM")

	if apiURL == "" || apiKey == "" || from == "" {
		slog.Warn("missing ZEPTO_API_URL, ZEPTO_API_KEY, or EMAIL_FROM")
		return fmt.Errorf("missing required email config")
	}

	payload := emailRequest{
		From: emailAddress{Address: from},
		To: []toRecipient{
			{
				Email: emailWithName{
					Address: to,
					Name:    toName,
				},
			},
		},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("failed to send email", "to", to, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		slog.Error("zeptomail returned non-success status", "to", to, "status", resp.Status)
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}

// SendAdminInviteEmail mails an invite link for accepting an admin role.
func SendAdminInviteEmail(to, name, inviteURL string, expiresAt time.Time) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>You have been invited to become an event admin. Accept the invite before %s:</p>
<p><a href="%s">%s</a></p>`,
		name, expiresAt.Format("02 Jan 2006 15:04 MST"), inviteURL, inviteURL)
	return SendEmail(to, name, "Festival admin invitation", body)
}

// SendAdminCredentialsEmail mails a newly created admin their temporary
// password.
func SendAdminCredentialsEmail(to, name, tempPassword string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>An admin account has been created for you. Log in with your email and the
temporary password below, then change it immediately:</p>
<p><b>%s</b></p>`,
		name, tempPassword)
	return SendEmail(to, name, "Your festival admin account", body)
}
