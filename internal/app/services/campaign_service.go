package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// CampaignWatcher follows submitted campaigns. *CampaignMonitor implements it.
type CampaignWatcher interface {
	Watch(c *models.Campaign)
	Stop(campaignID string)
}

// CampaignService drives the bulk messaging wizard. Drafts live in the local
// store; submission hands them to the backend.
type CampaignService interface {
	CreateDraft(ctx context.Context, createdBy string) (*dto.CampaignView, error)
	GetCampaign(ctx context.Context, id string) (*dto.CampaignView, error)
	ListCampaigns(ctx context.Context, statuses []models.CampaignStatus, page, size int) (dto.ListResult[dto.CampaignView], error)
	Delete(ctx context.Context, id string) error
	Events(ctx context.Context, id string) ([]*models.CampaignEvent, error)

	SaveCompose(ctx context.Context, id string, step dto.ComposeStep) (*dto.CampaignView, error)
	SaveRecipients(ctx context.Context, id string, step dto.RecipientsStep) (*dto.CampaignView, error)
	SaveSchedule(ctx context.Context, id string, step dto.ScheduleStep) (*dto.CampaignView, error)
	GoToStep(ctx context.Context, id string, step models.CampaignStep) (*dto.CampaignView, error)
	PreviousStep(ctx context.Context, id string) (*dto.CampaignView, error)

	Submit(ctx context.Context, id string, review dto.ReviewStep) (*dto.CampaignView, error)
	Cancel(ctx context.Context, id string) (*dto.CampaignView, error)

	// CampaignSnapshot feeds the websocket handler the current view.
	CampaignSnapshot(ctx context.Context, id string) (interface{}, error)
}

type campaignServiceImpl struct {
	store    repositories.CampaignStore
	whatsapp WhatsAppService
	watcher  CampaignWatcher
	tenantID string
	cfg      MessagingConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCampaignService creates a new campaign service instance
func NewCampaignService(
	store repositories.CampaignStore,
	whatsapp WhatsAppService,
	watcher CampaignWatcher,
	tenantID string,
	cfg MessagingConfig,
	logger zerolog.Logger,
) CampaignService {
	return &campaignServiceImpl{
		store:    store,
		whatsapp: whatsapp,
		watcher:  watcher,
		tenantID: tenantID,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *campaignServiceImpl) view(c *models.Campaign) *dto.CampaignView {
	v := ToCampaignView(c, s.cfg)
	return &v
}

func (s *campaignServiceImpl) load(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCampaignNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Campaign %s not found", id))
		}
		return nil, fmt.Errorf("error loading campaign %s: %w", id, err)
	}
	if c.TenantID != s.tenantID {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Campaign %s not found", id))
	}
	return c, nil
}

func (s *campaignServiceImpl) loadDraft(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignStatusDraft {
		return nil, apperrors.NewCustomError(apperrors.ErrCampaignNotEditable,
			fmt.Sprintf("Campaign is %s and can no longer be edited", strings.ToLower(string(c.Status))))
	}
	return c, nil
}

func (s *campaignServiceImpl) save(ctx context.Context, c *models.Campaign, eventType string, payload interface{}) (*dto.CampaignView, error) {
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("error saving campaign %s: %w", c.ID, err)
	}
	recordCampaignEvent(ctx, s.store, s.logger, c.ID, eventType, payload)
	return s.view(c), nil
}

func (s *campaignServiceImpl) CreateDraft(ctx context.Context, createdBy string) (*dto.CampaignView, error) {
	now := s.now().UTC()
	c := &models.Campaign{
		ID:          uuid.NewString(),
		TenantID:    s.tenantID,
		Step:        models.StepCompose,
		Status:      models.CampaignStatusDraft,
		MessageType: dto.MessageTypeTransactional,
		Recipients:  []dto.Recipient{},
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("error creating campaign: %w", err)
	}
	recordCampaignEvent(ctx, s.store, s.logger, c.ID, models.CampaignEventCreated, map[string]string{"createdBy": createdBy})
	s.logger.Info().Str("campaignId", c.ID).Str("createdBy", createdBy).Msg("Campaign draft created")
	return s.view(c), nil
}

func (s *campaignServiceImpl) GetCampaign(ctx context.Context, id string) (*dto.CampaignView, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *campaignServiceImpl) CampaignSnapshot(ctx context.Context, id string) (interface{}, error) {
	return s.GetCampaign(ctx, id)
}

func (s *campaignServiceImpl) ListCampaigns(ctx context.Context, statuses []models.CampaignStatus, page, size int) (dto.ListResult[dto.CampaignView], error) {
	page, size = helpers.NormalizePage(page, size)
	campaigns, total, err := s.store.List(ctx, repositories.CampaignFilter{
		TenantID: s.tenantID,
		Statuses: statuses,
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return dto.ListResult[dto.CampaignView]{}, fmt.Errorf("error listing campaigns: %w", err)
	}
	views := make([]dto.CampaignView, 0, len(campaigns))
	for _, c := range campaigns {
		views = append(views, ToCampaignView(c, s.cfg))
	}
	return dto.ListResult[dto.CampaignView]{Data: views, TotalCount: total}, nil
}

// Delete removes a campaign that is not currently sending.
func (s *campaignServiceImpl) Delete(ctx context.Context, id string) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == models.CampaignStatusSending || c.Status == models.CampaignStatusScheduled {
		return apperrors.NewConflictError("Cancel the campaign before deleting it")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting campaign %s: %w", id, err)
	}
	return nil
}

func (s *campaignServiceImpl) Events(ctx context.Context, id string) ([]*models.CampaignEvent, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, id)
}

func stepNotAccessible(target models.CampaignStep) error {
	return apperrors.NewCustomError(apperrors.ErrStepNotAccessible,
		fmt.Sprintf("Complete the previous steps before opening %q", target))
}

func (s *campaignServiceImpl) requireStep(c *models.Campaign, step models.CampaignStep) error {
	if !CanAccessStep(c.Step, step) {
		return stepNotAccessible(step)
	}
	return nil
}

func (s *campaignServiceImpl) SaveCompose(ctx context.Context, id string, step dto.ComposeStep) (*dto.CampaignView, error) {
	c, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCompose(step); err != nil {
		return nil, err
	}

	c.MessageBody = strings.TrimSpace(step.MessageBody)
	c.MessageType = step.MessageType
	c.TemplateName = nil
	if name := strings.TrimSpace(step.TemplateName); name != "" {
		c.TemplateName = &name
	}
	c.Step = NextStep(models.StepCompose)
	return s.save(ctx, c, models.CampaignEventStep, map[string]string{"completed": string(models.StepCompose)})
}

func (s *campaignServiceImpl) SaveRecipients(ctx context.Context, id string, step dto.RecipientsStep) (*dto.CampaignView, error) {
	c, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireStep(c, models.StepRecipients); err != nil {
		return nil, err
	}
	step.Recipients = SanitizeRecipients(step.Recipients)
	if err := ValidateRecipients(step, c.MessageType, s.cfg.MarketingRecipientCap); err != nil {
		return nil, err
	}

	c.Recipients = step.Recipients
	c.Step = NextStep(models.StepRecipients)
	return s.save(ctx, c, models.CampaignEventStep, map[string]interface{}{
		"completed":  models.StepRecipients,
		"recipients": len(c.Recipients),
	})
}

func (s *campaignServiceImpl) SaveSchedule(ctx context.Context, id string, step dto.ScheduleStep) (*dto.CampaignView, error) {
	c, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireStep(c, models.StepSchedule); err != nil {
		return nil, err
	}
	step = SanitizeSchedule(step)
	if err := ValidateSchedule(step, s.now()); err != nil {
		return nil, err
	}

	c.IsScheduled = step.IsScheduled
	c.ScheduledAt = step.ScheduledAt
	c.Step = NextStep(models.StepSchedule)
	return s.save(ctx, c, models.CampaignEventStep, map[string]interface{}{
		"completed":   models.StepSchedule,
		"isScheduled": c.IsScheduled,
	})
}

// GoToStep moves the wizard back to an earlier step.
func (s *campaignServiceImpl) GoToStep(ctx context.Context, id string, step models.CampaignStep) (*dto.CampaignView, error) {
	if !step.Valid() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown wizard step %q", step))
	}
	c, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireStep(c, step); err != nil {
		return nil, err
	}
	if step.Index() > models.StepReview.Index() {
		return nil, stepNotAccessible(step)
	}
	c.Step = step
	return s.save(ctx, c, models.CampaignEventStep, map[string]string{"moved": string(step)})
}

func (s *campaignServiceImpl) PreviousStep(ctx context.Context, id string) (*dto.CampaignView, error) {
	c, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.GoToStep(ctx, id, PreviousStep(c.Step))
}

// validateForSubmit re-checks every step, since earlier steps may have been
// edited after later ones were saved.
func (s *campaignServiceImpl) validateForSubmit(c *models.Campaign, review dto.ReviewStep) error {
	if c.Step != models.StepReview {
		return stepNotAccessible(models.StepReview)
	}
	if err := ValidateReview(review); err != nil {
		return err
	}
	compose := dto.ComposeStep{MessageBody: c.MessageBody, MessageType: c.MessageType}
	if err := ValidateCompose(compose); err != nil {
		return err
	}
	if err := ValidateRecipients(dto.RecipientsStep{Recipients: c.Recipients}, c.MessageType, s.cfg.MarketingRecipientCap); err != nil {
		return err
	}
	return ValidateSchedule(dto.ScheduleStep{IsScheduled: c.IsScheduled, ScheduledAt: c.ScheduledAt}, s.now())
}

// Submit sends the campaign now or schedules it, then starts following its
// progress.
func (s *campaignServiceImpl) Submit(ctx context.Context, id string, review dto.ReviewStep) (*dto.CampaignView, error) {
	c, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateForSubmit(c, review); err != nil {
		return nil, err
	}

	req := dto.BulkWhatsAppRequest{
		Recipients:  c.Recipients,
		MessageBody: c.MessageBody,
		Type:        c.MessageType,
	}
	if c.TemplateName != nil {
		req.TemplateName = *c.TemplateName
	}

	var (
		result *dto.BulkSendResult
		mode   = "now"
	)
	if c.IsScheduled {
		mode = "scheduled"
		result, err = s.whatsapp.ScheduleBulk(ctx, req, *c.ScheduledAt)
	} else {
		result, err = s.whatsapp.SendBulk(ctx, req)
	}
	if err != nil {
		recordCampaignEvent(ctx, s.store, s.logger, c.ID, models.CampaignEventFailed, map[string]string{"error": err.Error()})
		s.logger.Error().Err(err).Str("campaignId", c.ID).Msg("Failed to submit campaign")
		return nil, fmt.Errorf("error submitting campaign %s: %w", c.ID, err)
	}

	now := s.now().UTC()
	bulkID := result.BulkID
	c.BulkID = &bulkID
	c.SubmittedAt = &now
	c.Step = models.StepSending
	c.Status = models.CampaignStatusSending
	if c.IsScheduled {
		c.Status = models.CampaignStatusScheduled
	}
	c.Progress = &dto.BulkMessageProgress{Total: len(c.Recipients), InProgress: !c.IsScheduled}

	view, err := s.save(ctx, c, models.CampaignEventSubmitted, map[string]interface{}{
		"bulkId":     bulkID,
		"mode":       mode,
		"recipients": len(c.Recipients),
	})
	if err != nil {
		return nil, err
	}
	metrics.CampaignsSubmitted.WithLabelValues(mode).Inc()
	metrics.CampaignRecipients.Add(float64(len(c.Recipients)))
	s.logger.Info().Str("campaignId", c.ID).Str("bulkId", bulkID).Str("mode", mode).Int("recipients", len(c.Recipients)).Msg("Campaign submitted")

	if bulkID != "" {
		s.watcher.Watch(c)
	}
	return view, nil
}

// Cancel stops a draft, scheduled or sending campaign.
func (s *campaignServiceImpl) Cancel(ctx context.Context, id string) (*dto.CampaignView, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status.Terminal() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("Campaign is already %s", strings.ToLower(string(c.Status))))
	}
	if c.BulkID != nil && *c.BulkID != "" {
		if err := s.whatsapp.CancelBulk(ctx, *c.BulkID); err != nil {
			return nil, err
		}
	}
	s.watcher.Stop(c.ID)

	now := s.now().UTC()
	c.Status = models.CampaignStatusCancelled
	c.CompletedAt = &now
	s.logger.Info().Str("campaignId", c.ID).Msg("Campaign cancelled")
	return s.save(ctx, c, models.CampaignEventCancelled, nil)
}
