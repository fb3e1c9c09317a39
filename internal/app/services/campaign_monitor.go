package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/mosc/eventadmin/internal/pkg/email"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
	"github.com/mosc/eventadmin/internal/pkg/websocket"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"golang.org/x/time/rate"
)

// Broadcaster pushes frames to the subscribers of a campaign.
// *websocket.Hub implements it.
type Broadcaster interface {
	Broadcast(campaignID, msgType string, data interface{})
}

// ServiceRunner starts and stops supervised services.
// *supervisor.Tree implements it.
type ServiceRunner interface {
	AddMessagingService(svc suture.Service) suture.ServiceToken
	RemoveMessagingService(token suture.ServiceToken) error
}

// CampaignMonitor follows the backend progress of submitted campaigns. Each
// watched campaign runs as its own supervised service.
type CampaignMonitor struct {
	store    repositories.CampaignStore
	whatsapp WhatsAppService
	hub      Broadcaster
	mailer   email.EmailService
	runner   ServiceRunner
	cfg      MessagingConfig
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	watching map[string]suture.ServiceToken
}

// NewCampaignMonitor creates a monitor. mailer may be nil.
func NewCampaignMonitor(
	store repositories.CampaignStore,
	whatsapp WhatsAppService,
	hub Broadcaster,
	mailer email.EmailService,
	runner ServiceRunner,
	cfg MessagingConfig,
	logger zerolog.Logger,
) *CampaignMonitor {
	return &CampaignMonitor{
		store:    store,
		whatsapp: whatsapp,
		hub:      hub,
		mailer:   mailer,
		runner:   runner,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
		watching: make(map[string]suture.ServiceToken),
	}
}

// Watch starts following c unless it is already watched or has no bulk ID.
func (m *CampaignMonitor) Watch(c *models.Campaign) {
	if c.BulkID == nil || c.Status.Terminal() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.watching[c.ID]; ok {
		return
	}

	started := m.now()
	if c.SubmittedAt != nil {
		started = *c.SubmittedAt
	}
	w := &campaignWatch{
		monitor:     m,
		campaignID:  c.ID,
		bulkID:      *c.BulkID,
		scheduledAt: c.ScheduledAt,
		started:     started,
		logger:      m.logger.With().Str("campaignId", c.ID).Str("bulkId", *c.BulkID).Logger(),
	}
	m.watching[c.ID] = m.runner.AddMessagingService(w)
	metrics.ActiveCampaignMonitors.Inc()
	m.logger.Info().Str("campaignId", c.ID).Msg("Started campaign progress monitor")
}

// Stop stops following a campaign.
func (m *CampaignMonitor) Stop(campaignID string) {
	m.mu.Lock()
	token, ok := m.watching[campaignID]
	delete(m.watching, campaignID)
	m.mu.Unlock()
	if !ok {
		return
	}
	metrics.ActiveCampaignMonitors.Dec()
	if err := m.runner.RemoveMessagingService(token); err != nil {
		m.logger.Warn().Err(err).Str("campaignId", campaignID).Msg("Failed to stop campaign monitor")
	}
}

// Watching reports whether a campaign is currently followed.
func (m *CampaignMonitor) Watching(campaignID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.watching[campaignID]
	return ok
}

func (m *CampaignMonitor) done(campaignID string) {
	m.mu.Lock()
	_, ok := m.watching[campaignID]
	delete(m.watching, campaignID)
	m.mu.Unlock()
	if ok {
		metrics.ActiveCampaignMonitors.Dec()
	}
}

// Resume re-attaches monitors to campaigns that were sending or scheduled
// when the process last stopped.
func (m *CampaignMonitor) Resume(ctx context.Context, tenantID string) error {
	campaigns, _, err := m.store.List(ctx, repositories.CampaignFilter{
		TenantID: tenantID,
		Statuses: []models.CampaignStatus{models.CampaignStatusSending, models.CampaignStatusScheduled},
	})
	if err != nil {
		return err
	}
	for _, c := range campaigns {
		m.Watch(c)
	}
	if len(campaigns) > 0 {
		m.logger.Info().Int("count", len(campaigns)).Msg("Resumed campaign monitors")
	}
	return nil
}

// campaignWatch polls one bulk send. It returns suture.ErrDoNotRestart once
// the send finished or the monitor timed out.
type campaignWatch struct {
	monitor     *CampaignMonitor
	campaignID  string
	bulkID      string
	scheduledAt *time.Time
	started     time.Time
	logger      zerolog.Logger
}

func (w *campaignWatch) String() string { return "campaign-monitor-" + w.campaignID }

func (w *campaignWatch) Serve(ctx context.Context) error {
	m := w.monitor

	if w.scheduledAt != nil {
		if wait := w.scheduledAt.Sub(m.now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if w.scheduledAt.After(w.started) {
			w.started = *w.scheduledAt
		}
		w.setStatus(ctx, models.CampaignStatusSending)
	}

	deadline := w.started.Add(m.cfg.MonitorTimeout)
	limiter := rate.NewLimiter(rate.Every(m.cfg.PollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if !m.now().Before(deadline) {
			w.timeout(ctx)
			return suture.ErrDoNotRestart
		}

		progress, err := m.whatsapp.BulkProgress(ctx, w.bulkID)
		if err != nil {
			w.logger.Warn().Err(err).Msg("Failed to fetch bulk progress")
			continue
		}
		if !progress.InProgress {
			w.complete(ctx, progress)
			return suture.ErrDoNotRestart
		}
		if err := m.store.UpdateProgress(ctx, w.campaignID, models.CampaignStatusSending, progress, nil); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.logger.Error().Err(err).Msg("Failed to store campaign progress")
		}
		m.hub.Broadcast(w.campaignID, websocket.TypeProgress, progress)
		w.logger.Debug().Int("sent", progress.Sent).Int("total", progress.Total).Msg("Campaign progress")
	}
}

func (w *campaignWatch) setStatus(ctx context.Context, status models.CampaignStatus) {
	m := w.monitor
	c, err := m.store.GetByID(ctx, w.campaignID)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to load campaign")
		return
	}
	if err := m.store.UpdateProgress(ctx, w.campaignID, status, c.Progress, nil); err != nil {
		w.logger.Error().Err(err).Msg("Failed to update campaign status")
		return
	}
	m.hub.Broadcast(w.campaignID, websocket.TypeStatus, map[string]string{"status": string(status)})
}

func (w *campaignWatch) complete(ctx context.Context, progress *dto.BulkMessageProgress) {
	m := w.monitor
	defer m.done(w.campaignID)

	status := models.CampaignStatusCompleted
	if progress.Total > 0 && progress.Failed >= progress.Total {
		status = models.CampaignStatusFailed
	}
	completedAt := m.now().UTC()
	if err := m.store.UpdateProgress(ctx, w.campaignID, status, progress, &completedAt); err != nil {
		w.logger.Error().Err(err).Msg("Failed to store campaign completion")
	}
	if c, err := m.store.GetByID(ctx, w.campaignID); err == nil {
		c.Step = models.StepComplete
		if err := m.store.Update(ctx, c); err != nil {
			w.logger.Error().Err(err).Msg("Failed to move campaign to the complete step")
		}
	}
	recordCampaignEvent(ctx, m.store, w.logger, w.campaignID, models.CampaignEventCompleted, progress)

	m.hub.Broadcast(w.campaignID, websocket.TypeCompleted, map[string]interface{}{
		"status":   status,
		"progress": progress,
	})
	w.logger.Info().
		Str("status", string(status)).
		Int("sent", progress.Sent).
		Int("delivered", progress.Delivered).
		Int("failed", progress.Failed).
		Msg("Campaign finished")

	if m.mailer == nil {
		return
	}
	summary := email.CampaignSummary{
		CampaignID:  w.campaignID,
		BulkID:      w.bulkID,
		Status:      string(status),
		Total:       progress.Total,
		Sent:        progress.Sent,
		Delivered:   progress.Delivered,
		Failed:      progress.Failed,
		StartedAt:   w.started,
		CompletedAt: completedAt,
	}
	if err := m.mailer.SendCampaignSummary(ctx, summary); err != nil {
		w.logger.Error().Err(err).Msg("Failed to send campaign summary email")
	}
}

func (w *campaignWatch) timeout(ctx context.Context) {
	m := w.monitor
	defer m.done(w.campaignID)

	recordCampaignEvent(ctx, m.store, w.logger, w.campaignID, models.CampaignEventTimeout, map[string]string{
		"after": m.cfg.MonitorTimeout.String(),
	})
	m.hub.Broadcast(w.campaignID, websocket.TypeTimeout, map[string]string{
		"message": "Stopped following campaign progress after " + m.cfg.MonitorTimeout.String(),
	})
	w.logger.Warn().Dur("timeout", m.cfg.MonitorTimeout).Msg("Campaign progress monitor timed out")
}

// recordCampaignEvent appends an entry to the campaign history. Failures are
// logged only.
func recordCampaignEvent(ctx context.Context, store repositories.CampaignStore, lgr zerolog.Logger, campaignID, eventType string, payload interface{}) {
	var raw []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			lgr.Warn().Err(err).Str("event", eventType).Msg("Failed to encode campaign event")
		}
		raw = b
	}
	e := &models.CampaignEvent{
		CampaignID: campaignID,
		Type:       eventType,
		Payload:    raw,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.AddEvent(ctx, e); err != nil {
		lgr.Warn().Err(err).Str("event", eventType).Msg("Failed to record campaign event")
	}
}
