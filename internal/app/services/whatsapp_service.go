package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

const (
	whatsAppMessageResource = "whatsapp-messages"
	whatsAppBulkResource    = "whatsapp-messages/bulk"

	// DefaultAnalyticsPeriod is used when no period is given.
	DefaultAnalyticsPeriod = "7d"
)

// WhatsAppService wraps the backend's WhatsApp messaging endpoints.
type WhatsAppService interface {
	SendMessage(ctx context.Context, req dto.WhatsAppMessageRequest) (*dto.WhatsAppMessageStatus, error)
	SendBulk(ctx context.Context, req dto.BulkWhatsAppRequest) (*dto.BulkSendResult, error)
	ScheduleBulk(ctx context.Context, req dto.BulkWhatsAppRequest, at time.Time) (*dto.BulkSendResult, error)
	BulkProgress(ctx context.Context, bulkID string) (*dto.BulkMessageProgress, error)
	CancelBulk(ctx context.Context, bulkID string) error
	RetryFailed(ctx context.Context, bulkID string) (*dto.RetryResult, error)
	MessageStatus(ctx context.Context, messageID string) (*dto.WhatsAppMessageStatus, error)
	Analytics(ctx context.Context, period string) (*dto.WhatsAppAnalytics, error)
	BulkHistory(ctx context.Context, page, size int) (dto.ListResult[dto.BulkOperation], error)
	ValidatePhoneNumbers(ctx context.Context, phones []string) dto.PhoneValidationResult
}

type whatsAppServiceImpl struct {
	api Backend
	now func() time.Time
}

// NewWhatsAppService creates a new WhatsApp service instance
func NewWhatsAppService(api Backend) WhatsAppService {
	return &whatsAppServiceImpl{api: api, now: time.Now}
}

func (s *whatsAppServiceImpl) stamp() string {
	return helpers.FormatTime(s.now())
}

func (s *whatsAppServiceImpl) SendMessage(ctx context.Context, req dto.WhatsAppMessageRequest) (*dto.WhatsAppMessageStatus, error) {
	body := map[string]interface{}{
		"recipientPhone": req.RecipientPhone,
		"messageBody":    req.MessageBody,
		"type":           req.Type,
		"tenantId":       s.api.TenantID(),
		"sentAt":         s.stamp(),
		"status":         dto.MessageStatusSent,
	}
	if req.TemplateName != "" {
		body["templateName"] = req.TemplateName
	}
	if len(req.TemplateParams) > 0 {
		body["templateParams"] = req.TemplateParams
	}

	var status dto.WhatsAppMessageStatus
	if err := s.api.PostJSON(ctx, whatsAppMessageResource, nil, body, &status); err != nil {
		return nil, fmt.Errorf("error sending WhatsApp message: %w", err)
	}
	return &status, nil
}

func (s *whatsAppServiceImpl) bulkPayload(req dto.BulkWhatsAppRequest, scheduledAt time.Time) map[string]interface{} {
	body := map[string]interface{}{
		"recipients":  req.Recipients,
		"messageBody": req.MessageBody,
		"type":        req.Type,
		"tenantId":    s.api.TenantID(),
		"scheduledAt": helpers.FormatTime(scheduledAt),
		"createdAt":   s.stamp(),
	}
	if req.TemplateName != "" {
		body["templateName"] = req.TemplateName
	}
	return body
}

// SendBulk starts a bulk send. Without a scheduledAt the send starts now.
func (s *whatsAppServiceImpl) SendBulk(ctx context.Context, req dto.BulkWhatsAppRequest) (*dto.BulkSendResult, error) {
	at := s.now()
	if req.ScheduledAt != nil {
		at = *req.ScheduledAt
	}
	var result dto.BulkSendResult
	if err := s.api.PostJSON(ctx, whatsAppBulkResource, nil, s.bulkPayload(req, at), &result); err != nil {
		return nil, fmt.Errorf("error sending bulk WhatsApp messages: %w", err)
	}
	return &result, nil
}

func (s *whatsAppServiceImpl) ScheduleBulk(ctx context.Context, req dto.BulkWhatsAppRequest, at time.Time) (*dto.BulkSendResult, error) {
	body := s.bulkPayload(req, at)
	body["status"] = dto.MessageStatusScheduled

	var result dto.BulkSendResult
	if err := s.api.PostJSON(ctx, whatsAppBulkResource+"/schedule", nil, body, &result); err != nil {
		return nil, fmt.Errorf("error scheduling bulk WhatsApp messages: %w", err)
	}
	if result.Status == "" {
		result.Status = string(dto.MessageStatusScheduled)
	}
	return &result, nil
}

func (s *whatsAppServiceImpl) BulkProgress(ctx context.Context, bulkID string) (*dto.BulkMessageProgress, error) {
	var progress dto.BulkMessageProgress
	path := fmt.Sprintf("%s/%s/progress", whatsAppBulkResource, url.PathEscape(bulkID))
	if _, err := s.api.GetJSON(ctx, path, nil, &progress); err != nil {
		return nil, fmt.Errorf("error fetching bulk progress for %s: %w", bulkID, err)
	}
	return &progress, nil
}

func (s *whatsAppServiceImpl) CancelBulk(ctx context.Context, bulkID string) error {
	body := map[string]interface{}{
		"campaignId":  bulkID,
		"tenantId":    s.api.TenantID(),
		"cancelledAt": s.stamp(),
		"status":      dto.MessageStatusCancelled,
	}
	path := fmt.Sprintf("%s/%s/cancel", whatsAppBulkResource, url.PathEscape(bulkID))
	if err := s.api.PostJSON(ctx, path, nil, body, nil); err != nil {
		return fmt.Errorf("error cancelling bulk send %s: %w", bulkID, err)
	}
	return nil
}

func (s *whatsAppServiceImpl) RetryFailed(ctx context.Context, bulkID string) (*dto.RetryResult, error) {
	body := map[string]interface{}{
		"campaignId": bulkID,
		"tenantId":   s.api.TenantID(),
		"retryAt":    s.stamp(),
	}
	var result dto.RetryResult
	path := fmt.Sprintf("%s/%s/retry", whatsAppBulkResource, url.PathEscape(bulkID))
	if err := s.api.PostJSON(ctx, path, nil, body, &result); err != nil {
		return nil, fmt.Errorf("error retrying failed messages of %s: %w", bulkID, err)
	}
	return &result, nil
}

func (s *whatsAppServiceImpl) MessageStatus(ctx context.Context, messageID string) (*dto.WhatsAppMessageStatus, error) {
	var status dto.WhatsAppMessageStatus
	path := fmt.Sprintf("%s/%s/status", whatsAppMessageResource, url.PathEscape(messageID))
	if _, err := s.api.GetJSON(ctx, path, nil, &status); err != nil {
		return nil, fmt.Errorf("error fetching message status %s: %w", messageID, err)
	}
	return &status, nil
}

func (s *whatsAppServiceImpl) Analytics(ctx context.Context, period string) (*dto.WhatsAppAnalytics, error) {
	if period == "" {
		period = DefaultAnalyticsPeriod
	}
	var analytics dto.WhatsAppAnalytics
	if _, err := s.api.GetJSON(ctx, "whatsapp/analytics", url.Values{"period": {period}}, &analytics); err != nil {
		return nil, fmt.Errorf("error fetching WhatsApp analytics: %w", err)
	}
	analytics.MaxDailyVolume = maxDailyVolume(analytics.DailyVolume)
	return &analytics, nil
}

func maxDailyVolume(days []dto.DailyVolume) int {
	max := 0
	for _, d := range days {
		if d.Count > max {
			max = d.Count
		}
	}
	return max
}

func (s *whatsAppServiceImpl) BulkHistory(ctx context.Context, page, size int) (dto.ListResult[dto.BulkOperation], error) {
	page, size = helpers.NormalizePage(page, size)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	var ops []dto.BulkOperation
	total, err := s.api.GetJSON(ctx, whatsAppBulkResource, params, &ops)
	if err != nil {
		return dto.ListResult[dto.BulkOperation]{}, fmt.Errorf("error fetching bulk history: %w", err)
	}
	if ops == nil {
		ops = []dto.BulkOperation{}
	}
	if total < 0 {
		total = 0
	}
	return dto.ListResult[dto.BulkOperation]{Data: ops, TotalCount: total}, nil
}

// ValidatePhoneNumbers asks the backend to check the numbers. When the
// backend cannot answer every number is reported invalid.
func (s *whatsAppServiceImpl) ValidatePhoneNumbers(ctx context.Context, phones []string) dto.PhoneValidationResult {
	body := map[string]interface{}{
		"phoneNumbers": phones,
		"tenantId":     s.api.TenantID(),
		"validatedAt":  s.stamp(),
	}
	var result dto.PhoneValidationResult
	if err := s.api.PostJSON(ctx, "whatsapp/validate-phone-numbers", nil, body, &result); err != nil {
		logger.Warn().Err(err).Int("count", len(phones)).Msg("Phone number validation failed")
		return dto.PhoneValidationResult{
			Valid:       []string{},
			Invalid:     append([]string{}, phones...),
			Suggestions: map[string]string{},
		}
	}
	if result.Valid == nil {
		result.Valid = []string{}
	}
	if result.Invalid == nil {
		result.Invalid = []string{}
	}
	return result
}
