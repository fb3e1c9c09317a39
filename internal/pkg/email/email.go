package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// EmailService defines the notifications the admin service sends
type EmailService interface {
	SendCampaignSummary(ctx context.Context, summary CampaignSummary) error
}

// Config holds the Resend settings
type Config struct {
	APIKey   string
	From     string
	NotifyTo []string
	AppURL   string
}

// CampaignSummary describes a finished bulk send.
type CampaignSummary struct {
	CampaignID  string
	BulkID      string
	Status      string
	Total       int
	Sent        int
	Delivered   int
	Failed      int
	StartedAt   time.Time
	CompletedAt time.Time
}

// ParseRecipients splits a comma separated address list.
func ParseRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// EmailServiceImpl implements EmailService over Resend. Without an API key
// or recipients the summary is only logged.
type EmailServiceImpl struct {
	config Config
	client *resend.Client
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config Config, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{config: config, logger: logger}
	if config.APIKey != "" {
		s.client = resend.NewClient(config.APIKey)
	}
	return s
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">WhatsApp campaign {{.Status}}</h2>
		<table style="border-collapse: collapse;">
			<tr><td>Recipients</td><td><strong>{{.Total}}</strong></td></tr>
			<tr><td>Sent</td><td>{{.Sent}}</td></tr>
			<tr><td>Delivered</td><td>{{.Delivered}}</td></tr>
			<tr><td>Failed</td><td>{{.Failed}}</td></tr>
			<tr><td>Duration</td><td>{{.Duration}}</td></tr>
		</table>
		{{if .Link}}<p><a href="{{.Link}}">Open the campaign</a></p>{{end}}
		<p style="color: #888; font-size: 12px;">Bulk operation {{.BulkID}}</p>
	</div>
</body>
</html>`))

// RenderSummary builds the subject and HTML body of a summary email.
func (s *EmailServiceImpl) RenderSummary(summary CampaignSummary) (string, string, error) {
	subject := fmt.Sprintf("WhatsApp campaign %s: %d of %d sent", strings.ToLower(summary.Status), summary.Sent, summary.Total)

	data := struct {
		CampaignSummary
		Duration string
		Link     string
	}{CampaignSummary: summary}
	if !summary.StartedAt.IsZero() && !summary.CompletedAt.IsZero() {
		data.Duration = summary.CompletedAt.Sub(summary.StartedAt).Round(time.Second).String()
	}
	if s.config.AppURL != "" {
		data.Link = strings.TrimRight(s.config.AppURL, "/") + "/admin/whatsapp/campaigns/" + summary.CampaignID
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render summary email: %w", err)
	}
	return subject, buf.String(), nil
}

// SendCampaignSummary emails the outcome of a campaign to the configured
// recipients.
func (s *EmailServiceImpl) SendCampaignSummary(ctx context.Context, summary CampaignSummary) error {
	subject, body, err := s.RenderSummary(summary)
	if err != nil {
		return err
	}

	if s.client == nil || len(s.config.NotifyTo) == 0 {
		s.logger.Info().
			Str("campaignID", summary.CampaignID).
			Str("subject", subject).
			Msg("Email not configured - campaign summary not sent")
		return nil
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.config.From,
		To:      s.config.NotifyTo,
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("campaignID", summary.CampaignID).Msg("Failed to send campaign summary")
		return fmt.Errorf("resend send failed: %w", err)
	}

	s.logger.Info().Str("messageID", sent.Id).Str("campaignID", summary.CampaignID).Msg("Campaign summary sent")
	return nil
}
