package seed

import (
	"context"
	"errors"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/rs/zerolog"
)

// DefaultTemplates are installed for every tenant at startup.
var DefaultTemplates = []models.MessageTemplate{
	{
		Name:      "welcome_message",
		Category:  "UTILITY",
		Language:  "en_US",
		Body:      "Welcome {{name}}! We're excited to have you join us.",
		Variables: []string{"name"},
	},
	{
		Name:      "event_reminder",
		Category:  "UTILITY",
		Language:  "en_US",
		Body:      "Hi {{firstName}}, reminder: {{event}} is scheduled for {{date}} at {{time}}. See you there!",
		Variables: []string{"firstName", "event", "date", "time"},
	},
	{
		Name:      "payment_confirmation",
		Category:  "UTILITY",
		Language:  "en_US",
		Body:      "Hi {{name}}, your payment for {{event}} has been confirmed. Thank you!",
		Variables: []string{"name", "event"},
	},
	{
		Name:      "newsletter",
		Category:  "MARKETING",
		Language:  "en_US",
		Body:      "Hello {{name}}, here is what's coming up at our community this month: {{event}} on {{date}}.",
		Variables: []string{"name", "event", "date"},
	},
}

// CreateDefaultData upserts the default message templates for tenantID.
// Failures are collected so one bad template does not stop the rest.
func CreateDefaultData(ctx context.Context, store repositories.TemplateStore, tenantID string, lgr zerolog.Logger) error {
	if tenantID == "" {
		return nil
	}
	lgr.Info().Str("tenantId", tenantID).Msg("Checking/Creating default message templates...")

	var finalErr error
	for _, tmpl := range DefaultTemplates {
		t := tmpl
		t.TenantID = tenantID
		if err := store.Upsert(ctx, &t); err != nil {
			lgr.Error().Err(err).Str("template", t.Name).Msg("Error creating default template")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Int("count", len(DefaultTemplates)).Msg("Default message templates ready")
	}
	return finalErr
}
