package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/validation"
)

// MessagingConfig holds the bulk messaging limits and estimate rates.
type MessagingConfig struct {
	CostPerMessage        float64
	MessagesPerMinute     int
	MarketingRecipientCap int
	PollInterval          time.Duration
	MonitorTimeout        time.Duration
	// EventName fills {{event}} when a recipient does not carry one.
	EventName string
}

// DefaultMessagingConfig returns the limits used when nothing is configured.
func DefaultMessagingConfig() MessagingConfig {
	return MessagingConfig{
		CostPerMessage:        0.005,
		MessagesPerMinute:     60,
		MarketingRecipientCap: 1000,
		PollInterval:          2 * time.Second,
		MonitorTimeout:        10 * time.Minute,
	}
}

func (c MessagingConfig) withDefaults() MessagingConfig {
	d := DefaultMessagingConfig()
	if c.CostPerMessage <= 0 {
		c.CostPerMessage = d.CostPerMessage
	}
	if c.MessagesPerMinute <= 0 {
		c.MessagesPerMinute = d.MessagesPerMinute
	}
	if c.MarketingRecipientCap <= 0 {
		c.MarketingRecipientCap = d.MarketingRecipientCap
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.MonitorTimeout <= 0 {
		c.MonitorTimeout = d.MonitorTimeout
	}
	return c
}

// CanAccessStep reports whether the wizard may move from current to target.
// Going back or staying is allowed; skipping forward is not.
func CanAccessStep(current, target models.CampaignStep) bool {
	t := target.Index()
	return t >= 0 && t <= current.Index()
}

// NextStep returns the step after s, or s itself when it is the last one.
func NextStep(s models.CampaignStep) models.CampaignStep {
	i := s.Index()
	if i < 0 || i+1 >= len(models.CampaignSteps) {
		return s
	}
	return models.CampaignSteps[i+1]
}

// PreviousStep returns the step before s, or s itself when it is the first one.
func PreviousStep(s models.CampaignStep) models.CampaignStep {
	i := s.Index()
	if i <= 0 {
		return s
	}
	return models.CampaignSteps[i-1]
}

// StepProgress is the wizard completion percentage shown for s.
func StepProgress(s models.CampaignStep) int {
	i := s.Index()
	if i < 0 {
		return 0
	}
	last := len(models.CampaignSteps) - 1
	return int(math.Round(float64(i) / float64(last) * 100))
}

func stepValidationError(err error) error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return apperrors.NewValidationError(fe.Field, fe.Message)
	}
	return apperrors.NewValidationError("", err.Error())
}

// ValidateCompose checks the compose step.
func ValidateCompose(step dto.ComposeStep) error {
	step.MessageBody = strings.TrimSpace(step.MessageBody)
	if err := validation.Default().Struct(step); err != nil {
		return stepValidationError(err)
	}
	return nil
}

// ValidateRecipients checks the recipient list against the message type.
// Marketing sends are capped at maxMarketing recipients.
func ValidateRecipients(step dto.RecipientsStep, msgType dto.MessageType, maxMarketing int) error {
	if err := validation.Default().Struct(step); err != nil {
		return stepValidationError(err)
	}
	if msgType == dto.MessageTypeMarketing && len(step.Recipients) > maxMarketing {
		return apperrors.NewValidationError("recipients",
			fmt.Sprintf("Marketing messages are limited to %d recipients", maxMarketing))
	}
	return nil
}

// ValidateSchedule checks the schedule step. A scheduled time must be in the
// future.
func ValidateSchedule(step dto.ScheduleStep, now time.Time) error {
	if err := validation.Default().Struct(step); err != nil {
		return stepValidationError(err)
	}
	if step.IsScheduled && step.ScheduledAt == nil {
		return apperrors.NewValidationError("scheduledAt", "scheduledAt is required")
	}
	if step.IsScheduled && !step.ScheduledAt.After(now) {
		return apperrors.NewValidationError("scheduledAt", "Scheduled time must be in the future")
	}
	return nil
}

// ValidateReview checks the confirmation step.
func ValidateReview(step dto.ReviewStep) error {
	if err := validation.Default().Struct(step); err != nil {
		return stepValidationError(err)
	}
	return nil
}

// SanitizeRecipients trims fields and drops repeated phone numbers, keeping
// the first occurrence.
func SanitizeRecipients(in []dto.Recipient) []dto.Recipient {
	seen := make(map[string]struct{}, len(in))
	out := make([]dto.Recipient, 0, len(in))
	for _, r := range in {
		r.Phone = strings.TrimSpace(r.Phone)
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.TrimSpace(r.Email)
		if _, dup := seen[r.Phone]; dup {
			continue
		}
		seen[r.Phone] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SanitizeSchedule keeps scheduledAt only when the send is scheduled.
func SanitizeSchedule(step dto.ScheduleStep) dto.ScheduleStep {
	if !step.IsScheduled {
		step.ScheduledAt = nil
		return step
	}
	if step.ScheduledAt == nil {
		return step
	}
	at := step.ScheduledAt.UTC()
	step.ScheduledAt = &at
	return step
}

// EstimateCampaign previews the cost and duration of sending to n recipients.
func EstimateCampaign(n int, cfg MessagingConfig) dto.CampaignEstimate {
	cfg = cfg.withDefaults()
	return dto.CampaignEstimate{
		Recipients:       n,
		EstimatedCost:    math.Round(float64(n)*cfg.CostPerMessage*1000) / 1000,
		EstimatedMinutes: int(math.Ceil(float64(n) / float64(cfg.MessagesPerMinute))),
	}
}

// MessageContext carries the values that are the same for every recipient.
type MessageContext struct {
	EventName string
	At        time.Time
}

// RenderMessage fills the template variables of body for one recipient.
// Custom recipient params override the built-in variables.
func RenderMessage(body string, r dto.Recipient, mc MessageContext) string {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Friend"
	}
	firstName := strings.Fields(name)[0]
	at := mc.At
	if at.IsZero() {
		at = time.Now()
	}

	vars := map[string]string{
		"name":      name,
		"firstName": firstName,
		"phone":     r.Phone,
		"email":     r.Email,
		"event":     mc.EventName,
		"date":      at.Format("January 2, 2006"),
		"time":      at.Format("3:04 PM"),
	}
	for k, v := range r.CustomParams {
		vars[k] = v
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

// ToCampaignView renders a stored campaign for the admin UI.
func ToCampaignView(c *models.Campaign, cfg MessagingConfig) dto.CampaignView {
	v := dto.CampaignView{
		ID:           c.ID,
		Step:         string(c.Step),
		StepProgress: StepProgress(c.Step),
		Status:       string(c.Status),
		MessageBody:  c.MessageBody,
		MessageType:  c.MessageType,
		Recipients:   c.Recipients,
		IsScheduled:  c.IsScheduled,
		ScheduledAt:  c.ScheduledAt,
		Progress:     c.Progress,
		Estimate:     EstimateCampaign(len(c.Recipients), cfg),
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if v.Recipients == nil {
		v.Recipients = []dto.Recipient{}
	}
	if c.TemplateName != nil {
		v.TemplateName = *c.TemplateName
	}
	if c.BulkID != nil {
		v.BulkID = *c.BulkID
	}
	if c.MessageBody != "" && len(c.Recipients) > 0 {
		mc := MessageContext{EventName: cfg.EventName, At: c.CreatedAt}
		if c.ScheduledAt != nil {
			mc.At = *c.ScheduledAt
		}
		v.Preview = RenderMessage(c.MessageBody, c.Recipients[0], mc)
	}
	return v
}
