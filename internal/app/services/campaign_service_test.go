package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/email"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
	"github.com/mosc/eventadmin/internal/pkg/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

func TestStepProgressPercentages(t *testing.T) {
	want := []int{0, 20, 40, 60, 80, 100}
	for i, step := range models.CampaignSteps {
		if got := StepProgress(step); got != want[i] {
			t.Errorf("StepProgress(%s) = %d, want %d", step, got, want[i])
		}
	}
}

func TestCanAccessStepNeverSkipsForward(t *testing.T) {
	if !CanAccessStep(models.StepSchedule, models.StepCompose) {
		t.Error("going back must be allowed")
	}
	if !CanAccessStep(models.StepSchedule, models.StepSchedule) {
		t.Error("staying must be allowed")
	}
	if CanAccessStep(models.StepCompose, models.StepRecipients) {
		t.Error("skipping forward must not be allowed")
	}
	if CanAccessStep(models.StepReview, models.CampaignStep("unknown")) {
		t.Error("unknown steps are never accessible")
	}
	if NextStep(models.StepComplete) != models.StepComplete || PreviousStep(models.StepCompose) != models.StepCompose {
		t.Error("first and last steps must not wrap")
	}
	if NextStep(models.StepReview) != models.StepSending || PreviousStep(models.StepReview) != models.StepSchedule {
		t.Error("unexpected neighbours of review")
	}
}

func TestEstimateCampaign(t *testing.T) {
	tests := []struct {
		n       int
		cost    float64
		minutes int
	}{
		{0, 0, 0},
		{60, 0.3, 1},
		{61, 0.305, 2},
		{1000, 5, 17},
	}
	for _, tt := range tests {
		got := EstimateCampaign(tt.n, MessagingConfig{})
		if got.EstimatedCost != tt.cost || got.EstimatedMinutes != tt.minutes {
			t.Errorf("EstimateCampaign(%d) = %+v, want cost %v and %d minutes", tt.n, got, tt.cost, tt.minutes)
		}
	}
}

func TestRenderMessage(t *testing.T) {
	at := time.Date(2025, 7, 4, 18, 30, 0, 0, time.UTC)
	mc := MessageContext{EventName: "Onam Gala", At: at}

	got := RenderMessage("Hi {{name}}, {{event}} on {{date}} at {{time}}", dto.Recipient{Phone: "+14155550100"}, mc)
	if got != "Hi Friend, Onam Gala on July 4, 2025 at 6:30 PM" {
		t.Errorf("anonymous recipient: %q", got)
	}

	r := dto.Recipient{
		Phone:        "+14155550100",
		Name:         "Asha Menon",
		Email:        "asha@example.org",
		CustomParams: map[string]string{"event": "Vishu Lunch", "seat": "B4"},
	}
	got = RenderMessage("{{firstName}}/{{name}}/{{phone}}/{{email}}/{{event}}/{{seat}}", r, mc)
	if got != "Asha/Asha Menon/+14155550100/asha@example.org/Vishu Lunch/B4" {
		t.Errorf("named recipient: %q", got)
	}
}

func TestValidateRecipients(t *testing.T) {
	many := make([]dto.Recipient, 3)
	for i := range many {
		many[i] = dto.Recipient{Phone: "+1415555010" + string(rune('0'+i))}
	}
	if err := ValidateRecipients(dto.RecipientsStep{Recipients: many}, dto.MessageTypeMarketing, 2); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("marketing over the cap: err = %v", err)
	}
	if err := ValidateRecipients(dto.RecipientsStep{Recipients: many}, dto.MessageTypeTransactional, 2); err != nil {
		t.Errorf("transactional sends are not capped: %v", err)
	}

	err := ValidateRecipients(dto.RecipientsStep{Recipients: []dto.Recipient{{Phone: "0044 7700"}}}, dto.MessageTypeTransactional, 10)
	if msg, _ := apperrors.UserMessage(err); !strings.Contains(msg, "Invalid phone number format") {
		t.Errorf("bad phone: message = %q", msg)
	}
	if err := ValidateRecipients(dto.RecipientsStep{}, dto.MessageTypeTransactional, 10); err == nil {
		t.Error("empty recipient list must fail")
	}
}

func TestValidateCompose(t *testing.T) {
	if err := ValidateCompose(dto.ComposeStep{MessageBody: "   ", MessageType: dto.MessageTypeMarketing}); err == nil {
		t.Error("blank body must fail")
	}
	if err := ValidateCompose(dto.ComposeStep{MessageBody: strings.Repeat("x", 4097), MessageType: dto.MessageTypeMarketing}); err == nil {
		t.Error("body over 4096 characters must fail")
	}
	if err := ValidateCompose(dto.ComposeStep{MessageBody: "Hi", MessageType: "PROMO"}); err == nil {
		t.Error("unknown message type must fail")
	}
	if err := ValidateCompose(dto.ComposeStep{MessageBody: "Hi", MessageType: dto.MessageTypeTransactional}); err != nil {
		t.Errorf("valid compose step: %v", err)
	}
}

func TestSanitizeSchedule(t *testing.T) {
	at := time.Now().Add(time.Hour)
	if got := SanitizeSchedule(dto.ScheduleStep{IsScheduled: false, ScheduledAt: &at}); got.ScheduledAt != nil {
		t.Error("scheduledAt must be dropped for immediate sends")
	}
	if got := SanitizeSchedule(dto.ScheduleStep{IsScheduled: true, ScheduledAt: &at}); got.ScheduledAt == nil {
		t.Error("scheduledAt must be kept for scheduled sends")
	}
	if got := SanitizeSchedule(dto.ScheduleStep{IsScheduled: true}); got.ScheduledAt != nil {
		t.Error("a missing scheduledAt must stay missing")
	}
}

func TestSanitizeRecipientsDropsDuplicates(t *testing.T) {
	got := SanitizeRecipients([]dto.Recipient{
		{Phone: " +14155550100 ", Name: "A"},
		{Phone: "+14155550100", Name: "B"},
		{Phone: "+14155550101"},
	})
	if len(got) != 2 || got[0].Name != "A" || got[0].Phone != "+14155550100" {
		t.Errorf("recipients = %+v", got)
	}
}

// stubWhatsApp records bulk calls and serves scripted progress.
type stubWhatsApp struct {
	WhatsAppService

	mu        sync.Mutex
	sent      []dto.BulkWhatsAppRequest
	scheduled []time.Time
	cancelled []string
	progress  []dto.BulkMessageProgress
	polls     int
}

func (s *stubWhatsApp) SendBulk(_ context.Context, req dto.BulkWhatsAppRequest) (*dto.BulkSendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return &dto.BulkSendResult{BulkID: "bulk-1"}, nil
}

func (s *stubWhatsApp) ScheduleBulk(_ context.Context, req dto.BulkWhatsAppRequest, at time.Time) (*dto.BulkSendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	s.scheduled = append(s.scheduled, at)
	return &dto.BulkSendResult{BulkID: "bulk-2", Status: "SCHEDULED"}, nil
}

func (s *stubWhatsApp) CancelBulk(_ context.Context, bulkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, bulkID)
	return nil
}

func (s *stubWhatsApp) BulkProgress(_ context.Context, _ string) (*dto.BulkMessageProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.polls
	if i >= len(s.progress) {
		i = len(s.progress) - 1
	}
	s.polls++
	p := s.progress[i]
	return &p, nil
}

type stubWatcher struct {
	watched []string
	stopped []string
}

func (w *stubWatcher) Watch(c *models.Campaign) { w.watched = append(w.watched, c.ID) }
func (w *stubWatcher) Stop(id string)           { w.stopped = append(w.stopped, id) }

func newTestCampaignService(t *testing.T) (*campaignServiceImpl, *stubWhatsApp, *stubWatcher, *repositories.MemoryCampaignStore) {
	t.Helper()
	store := repositories.NewMemoryCampaignStore()
	wa := &stubWhatsApp{}
	watcher := &stubWatcher{}
	svc := NewCampaignService(store, wa, watcher, testTenant, MessagingConfig{MarketingRecipientCap: 2}, zerolog.Nop()).(*campaignServiceImpl)
	return svc, wa, watcher, store
}

func recipients(n int) []dto.Recipient {
	out := make([]dto.Recipient, n)
	for i := range out {
		out[i] = dto.Recipient{Phone: "+1415555010" + string(rune('0'+i)), Name: "Guest"}
	}
	return out
}

func TestCampaignWizardFlow(t *testing.T) {
	ctx := context.Background()
	svc, wa, watcher, store := newTestCampaignService(t)

	draft, err := svc.CreateDraft(ctx, "admin@example.org")
	if err != nil {
		t.Fatal(err)
	}
	if draft.Step != "compose" || draft.StepProgress != 0 || draft.Status != "DRAFT" {
		t.Fatalf("draft = %+v", draft)
	}

	if _, err := svc.SaveRecipients(ctx, draft.ID, dto.RecipientsStep{Recipients: recipients(1)}); !errors.Is(err, apperrors.ErrStepNotAccessible) {
		t.Fatalf("recipients before compose: err = %v", err)
	}

	v, err := svc.SaveCompose(ctx, draft.ID, dto.ComposeStep{MessageBody: "Hi {{name}}", MessageType: dto.MessageTypeTransactional})
	if err != nil {
		t.Fatal(err)
	}
	if v.Step != "recipients" || v.StepProgress != 20 {
		t.Errorf("after compose: %+v", v)
	}

	v, err = svc.SaveRecipients(ctx, draft.ID, dto.RecipientsStep{Recipients: recipients(3)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Estimate.Recipients != 3 || v.Preview != "Hi Guest" {
		t.Errorf("after recipients: %+v", v)
	}

	if _, err := svc.SaveSchedule(ctx, draft.ID, dto.ScheduleStep{IsScheduled: false}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Submit(ctx, draft.ID, dto.ReviewStep{ConfirmationChecked: false}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("unconfirmed submit: err = %v", err)
	}

	sentNow := testutil.ToFloat64(metrics.CampaignsSubmitted.WithLabelValues("now"))
	v, err = svc.Submit(ctx, draft.ID, dto.ReviewStep{ConfirmationChecked: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.CampaignsSubmitted.WithLabelValues("now")) - sentNow; got != 1 {
		t.Errorf("campaigns submitted now = %v, want 1", got)
	}
	if v.Status != "SENDING" || v.Step != "sending" || v.BulkID != "bulk-1" || v.StepProgress != 80 {
		t.Errorf("after submit: %+v", v)
	}
	if len(wa.sent) != 1 || len(wa.sent[0].Recipients) != 3 || wa.sent[0].MessageBody != "Hi {{name}}" {
		t.Errorf("bulk requests = %+v", wa.sent)
	}
	if len(watcher.watched) != 1 || watcher.watched[0] != draft.ID {
		t.Errorf("watched = %v", watcher.watched)
	}

	if _, err := svc.SaveCompose(ctx, draft.ID, dto.ComposeStep{MessageBody: "x", MessageType: dto.MessageTypeTransactional}); !errors.Is(err, apperrors.ErrCampaignNotEditable) {
		t.Errorf("editing a sent campaign: err = %v", err)
	}

	events, _ := store.ListEvents(ctx, draft.ID)
	if len(events) < 5 || events[0].Type != models.CampaignEventCreated || events[len(events)-1].Type != models.CampaignEventSubmitted {
		t.Errorf("events = %d, first %v", len(events), events)
	}
}

func TestMarketingCapCheckedAgainAtSubmit(t *testing.T) {
	ctx := context.Background()
	svc, wa, _, _ := newTestCampaignService(t)
	ok := mustStep(t)

	draft, _ := svc.CreateDraft(ctx, "admin")
	ok(svc.SaveCompose(ctx, draft.ID, dto.ComposeStep{MessageBody: "Sale", MessageType: dto.MessageTypeTransactional}))
	ok(svc.SaveRecipients(ctx, draft.ID, dto.RecipientsStep{Recipients: recipients(3)}))

	// Switching to marketing after the recipients were saved.
	ok(svc.GoToStep(ctx, draft.ID, models.StepCompose))
	ok(svc.SaveCompose(ctx, draft.ID, dto.ComposeStep{MessageBody: "Sale", MessageType: dto.MessageTypeMarketing}))
	if _, err := svc.GoToStep(ctx, draft.ID, models.StepReview); !errors.Is(err, apperrors.ErrStepNotAccessible) {
		t.Fatalf("jumping ahead after going back: err = %v", err)
	}
	if _, err := svc.SaveRecipients(ctx, draft.ID, dto.RecipientsStep{Recipients: recipients(3)}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("marketing over cap: err = %v", err)
	}
	if len(wa.sent) != 0 {
		t.Errorf("nothing should have been sent")
	}
}

// mustStep fails the test when a wizard call errors.
func mustStep(t *testing.T) func(*dto.CampaignView, error) {
	return func(_ *dto.CampaignView, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestSubmitScheduledCampaign(t *testing.T) {
	ctx := context.Background()
	svc, wa, watcher, _ := newTestCampaignService(t)
	ok := mustStep(t)
	at := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)

	draft, _ := svc.CreateDraft(ctx, "admin")
	ok(svc.SaveCompose(ctx, draft.ID, dto.ComposeStep{MessageBody: "Reminder", MessageType: dto.MessageTypeTransactional}))
	ok(svc.SaveRecipients(ctx, draft.ID, dto.RecipientsStep{Recipients: recipients(1)}))

	if _, err := svc.SaveSchedule(ctx, draft.ID, dto.ScheduleStep{IsScheduled: true}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("scheduled without a time: err = %v", err)
	}

	past := time.Now().Add(-time.Minute)
	if _, err := svc.SaveSchedule(ctx, draft.ID, dto.ScheduleStep{IsScheduled: true, ScheduledAt: &past}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("past schedule: err = %v", err)
	}
	ok(svc.SaveSchedule(ctx, draft.ID, dto.ScheduleStep{IsScheduled: true, ScheduledAt: &at}))

	scheduledBefore := testutil.ToFloat64(metrics.CampaignsSubmitted.WithLabelValues("scheduled"))
	v, err := svc.Submit(ctx, draft.ID, dto.ReviewStep{ConfirmationChecked: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.CampaignsSubmitted.WithLabelValues("scheduled")) - scheduledBefore; got != 1 {
		t.Errorf("scheduled campaigns submitted = %v, want 1", got)
	}
	if v.Status != "SCHEDULED" || v.BulkID != "bulk-2" {
		t.Errorf("view = %+v", v)
	}
	if len(wa.scheduled) != 1 || !wa.scheduled[0].Equal(at) {
		t.Errorf("scheduled = %v, want %v", wa.scheduled, at)
	}
	if len(watcher.watched) != 1 {
		t.Errorf("scheduled campaigns are watched too")
	}
}

func TestCancelCampaign(t *testing.T) {
	ctx := context.Background()
	svc, wa, watcher, _ := newTestCampaignService(t)
	ok := mustStep(t)

	draft, _ := svc.CreateDraft(ctx, "admin")
	ok(svc.SaveCompose(ctx, draft.ID, dto.ComposeStep{MessageBody: "Hi", MessageType: dto.MessageTypeTransactional}))
	ok(svc.SaveRecipients(ctx, draft.ID, dto.RecipientsStep{Recipients: recipients(1)}))
	ok(svc.SaveSchedule(ctx, draft.ID, dto.ScheduleStep{}))
	ok(svc.Submit(ctx, draft.ID, dto.ReviewStep{ConfirmationChecked: true}))

	if err := svc.Delete(ctx, draft.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("deleting a sending campaign: err = %v", err)
	}

	v, err := svc.Cancel(ctx, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != "CANCELLED" {
		t.Errorf("status = %s", v.Status)
	}
	if len(wa.cancelled) != 1 || wa.cancelled[0] != "bulk-1" || len(watcher.stopped) != 1 {
		t.Errorf("cancelled = %v, stopped = %v", wa.cancelled, watcher.stopped)
	}
	if _, err := svc.Cancel(ctx, draft.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("second cancel: err = %v", err)
	}
	if err := svc.Delete(ctx, draft.ID); err != nil {
		t.Errorf("delete after cancel: %v", err)
	}
}

func TestCampaignsAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	svc, _, _, store := newTestCampaignService(t)
	_ = store.Create(ctx, &models.Campaign{ID: "other", TenantID: "someone_else", Step: models.StepCompose, Status: models.CampaignStatusDraft})

	if _, err := svc.GetCampaign(ctx, "other"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("foreign campaign: err = %v", err)
	}
	list, err := svc.ListCampaigns(ctx, nil, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if list.TotalCount != 0 {
		t.Errorf("list = %+v", list)
	}
}

type recordedFrame struct {
	campaignID string
	msgType    string
}

type stubHub struct {
	mu     sync.Mutex
	frames []recordedFrame
}

func (h *stubHub) Broadcast(campaignID, msgType string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, recordedFrame{campaignID, msgType})
}

func (h *stubHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, f := range h.frames {
		out = append(out, f.msgType)
	}
	return out
}

type stubRunner struct {
	services []suture.Service
	removed  int
}

func (r *stubRunner) AddMessagingService(svc suture.Service) suture.ServiceToken {
	r.services = append(r.services, svc)
	return suture.ServiceToken{}
}

func (r *stubRunner) RemoveMessagingService(suture.ServiceToken) error {
	r.removed++
	return nil
}

type stubMailer struct {
	summaries []email.CampaignSummary
}

func (m *stubMailer) SendCampaignSummary(_ context.Context, s email.CampaignSummary) error {
	m.summaries = append(m.summaries, s)
	return nil
}

func sendingCampaign(t *testing.T, store repositories.CampaignStore) *models.Campaign {
	t.Helper()
	bulkID := "bulk-9"
	now := time.Now().UTC()
	c := &models.Campaign{
		ID:          "c-1",
		TenantID:    testTenant,
		Step:        models.StepSending,
		Status:      models.CampaignStatusSending,
		MessageBody: "Hi",
		MessageType: dto.MessageTypeTransactional,
		Recipients:  recipients(3),
		BulkID:      &bulkID,
		SubmittedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Create(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCampaignMonitorFollowsUntilDone(t *testing.T) {
	store := repositories.NewMemoryCampaignStore()
	c := sendingCampaign(t, store)
	wa := &stubWhatsApp{progress: []dto.BulkMessageProgress{
		{Total: 3, Sent: 1, InProgress: true},
		{Total: 3, Sent: 2, InProgress: true},
		{Total: 3, Sent: 3, Delivered: 3, InProgress: false},
	}}
	hub := &stubHub{}
	runner := &stubRunner{}
	mailer := &stubMailer{}
	cfg := MessagingConfig{PollInterval: 5 * time.Millisecond, MonitorTimeout: 5 * time.Second}
	mon := NewCampaignMonitor(store, wa, hub, mailer, runner, cfg, zerolog.Nop())

	mon.Watch(c)
	mon.Watch(c)
	if len(runner.services) != 1 || !mon.Watching(c.ID) {
		t.Fatalf("expected exactly one monitor, got %d", len(runner.services))
	}

	err := runner.services[0].Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("Serve returned %v, want ErrDoNotRestart", err)
	}
	if mon.Watching(c.ID) {
		t.Error("monitor should release the campaign once done")
	}

	got, _ := store.GetByID(context.Background(), c.ID)
	if got.Status != models.CampaignStatusCompleted || got.Step != models.StepComplete || got.CompletedAt == nil {
		t.Errorf("campaign = %+v", got)
	}
	if got.Progress == nil || got.Progress.Delivered != 3 {
		t.Errorf("progress = %+v", got.Progress)
	}
	frames := hub.types()
	if len(frames) != 3 || frames[0] != websocket.TypeProgress || frames[2] != websocket.TypeCompleted {
		t.Errorf("frames = %v", frames)
	}
	if len(mailer.summaries) != 1 || mailer.summaries[0].Delivered != 3 || mailer.summaries[0].Status != "COMPLETED" {
		t.Errorf("summaries = %+v", mailer.summaries)
	}
}

func TestCampaignMonitorTimesOut(t *testing.T) {
	store := repositories.NewMemoryCampaignStore()
	c := sendingCampaign(t, store)
	wa := &stubWhatsApp{progress: []dto.BulkMessageProgress{{Total: 3, Sent: 1, InProgress: true}}}
	hub := &stubHub{}
	runner := &stubRunner{}
	cfg := MessagingConfig{PollInterval: 5 * time.Millisecond, MonitorTimeout: 40 * time.Millisecond}
	mon := NewCampaignMonitor(store, wa, hub, nil, runner, cfg, zerolog.Nop())

	mon.Watch(c)
	if err := runner.services[0].Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("Serve returned %v", err)
	}

	frames := hub.types()
	if len(frames) == 0 || frames[len(frames)-1] != websocket.TypeTimeout {
		t.Errorf("frames = %v, want a final timeout frame", frames)
	}
	events, _ := store.ListEvents(context.Background(), c.ID)
	if len(events) == 0 || events[len(events)-1].Type != models.CampaignEventTimeout {
		t.Errorf("events = %+v", events)
	}
	got, _ := store.GetByID(context.Background(), c.ID)
	if got.Status != models.CampaignStatusSending {
		t.Errorf("status = %s, a timeout leaves the campaign as sending", got.Status)
	}
}

func TestCampaignMonitorStopsOnShutdown(t *testing.T) {
	store := repositories.NewMemoryCampaignStore()
	c := sendingCampaign(t, store)
	wa := &stubWhatsApp{progress: []dto.BulkMessageProgress{{Total: 3, InProgress: true}}}
	runner := &stubRunner{}
	mon := NewCampaignMonitor(store, wa, &stubHub{}, nil, runner, MessagingConfig{PollInterval: 5 * time.Millisecond}, zerolog.Nop())
	mon.Watch(c)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)
	if err := runner.services[0].Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve returned %v, want the parent context error", err)
	}
	if !mon.Watching(c.ID) {
		t.Error("a shutdown must not release the campaign")
	}

	mon.Stop(c.ID)
	if runner.removed != 1 || mon.Watching(c.ID) {
		t.Errorf("Stop did not remove the service")
	}
}

func TestCampaignMonitorResume(t *testing.T) {
	store := repositories.NewMemoryCampaignStore()
	sendingCampaign(t, store)
	_ = store.Create(context.Background(), &models.Campaign{ID: "draft", TenantID: testTenant, Status: models.CampaignStatusDraft, CreatedAt: time.Now()})
	runner := &stubRunner{}
	mon := NewCampaignMonitor(store, &stubWhatsApp{}, &stubHub{}, nil, runner, MessagingConfig{}, zerolog.Nop())

	if err := mon.Resume(context.Background(), testTenant); err != nil {
		t.Fatal(err)
	}
	if len(runner.services) != 1 || !mon.Watching("c-1") {
		t.Errorf("resumed %d monitors", len(runner.services))
	}
}
