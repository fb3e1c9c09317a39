package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// DefaultPollCheckInterval is used when no interval is configured.
const DefaultPollCheckInterval = time.Minute

// PollScheduler activates polls whose start date has arrived and
// deactivates polls whose end date has passed. It runs as a supervised
// service: once at start, then every interval.
type PollScheduler struct {
	polls    PollService
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	lastRun *dto.SchedulerRunResult
}

// NewPollScheduler creates a scheduler over polls.
func NewPollScheduler(polls PollService, interval time.Duration, logger zerolog.Logger) *PollScheduler {
	if interval <= 0 {
		interval = DefaultPollCheckInterval
	}
	return &PollScheduler{
		polls:    polls,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Serve runs the check loop until ctx is cancelled.
func (s *PollScheduler) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Poll scheduler started")
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Poll scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *PollScheduler) String() string { return "poll-scheduler" }

// LastRun returns the summary of the most recent pass, if any.
func (s *PollScheduler) LastRun() *dto.SchedulerRunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

// pollTransition is the change a scheduler pass would make to one poll.
type pollTransition struct {
	poll     dto.EventPollDTO
	activate bool
}

// DueTransitions picks the polls whose window requires a flag change at now.
// A poll whose end date has already passed is never activated.
func DueTransitions(polls []dto.EventPollDTO, now time.Time) (activate, deactivate []dto.EventPollDTO) {
	for _, p := range polls {
		start, hasStart := helpers.ParseTime(p.StartDate)
		end, hasEnd := helpers.ParseTimePtr(p.EndDate)
		ended := hasEnd && now.After(end)

		switch {
		case !p.Active() && hasStart && !now.Before(start) && !ended:
			activate = append(activate, p)
		case p.Active() && ended:
			deactivate = append(deactivate, p)
		}
	}
	return activate, deactivate
}

// RunOnce performs a single scheduler pass. Individual update failures are
// logged and counted but do not stop the pass.
func (s *PollScheduler) RunOnce(ctx context.Context) dto.SchedulerRunResult {
	metrics.PollSchedulerRuns.Inc()

	params := url.Values{}
	params.Set("size", strconv.Itoa(pollFetchSize))
	list, err := s.polls.ListPolls(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Poll scheduler could not load polls")
		return dto.SchedulerRunResult{}
	}

	activate, deactivate := DueTransitions(list.Data, s.now())
	var transitions []pollTransition
	for _, p := range activate {
		transitions = append(transitions, pollTransition{poll: p, activate: true})
	}
	for _, p := range deactivate {
		transitions = append(transitions, pollTransition{poll: p, activate: false})
	}

	result := dto.SchedulerRunResult{Checked: len(list.Data)}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, tr := range transitions {
		wg.Add(1)
		go func(tr pollTransition) {
			defer wg.Done()
			label := "deactivate"
			if tr.activate {
				label = "activate"
			}
			_, err := s.polls.SetPollActive(ctx, tr.poll.PollID(), tr.activate)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				metrics.PollTransitions.WithLabelValues(label, "failure").Inc()
				s.logger.Error().Err(err).Int64("pollId", tr.poll.PollID()).Str("title", tr.poll.Title).Msgf("Failed to %s poll", label)
				return
			}
			metrics.PollTransitions.WithLabelValues(label, "success").Inc()
			if tr.activate {
				result.Activated++
				s.logger.Info().Int64("pollId", tr.poll.PollID()).Str("title", tr.poll.Title).Msg("Poll activated")
			} else {
				result.Deactivated++
				s.logger.Info().Int64("pollId", tr.poll.PollID()).Str("title", tr.poll.Title).Msg("Poll deactivated")
			}
		}(tr)
	}
	wg.Wait()

	if len(transitions) > 0 {
		s.logger.Info().Int("updates", len(transitions)).Int("failed", result.Failed).Msg("Processed poll updates")
	}
	s.mu.Lock()
	s.lastRun = &result
	s.mu.Unlock()
	return result
}

// Activate switches a poll on regardless of its dates.
func (s *PollScheduler) Activate(ctx context.Context, pollID int64) (*dto.EventPollDTO, error) {
	p, err := s.polls.SetPollActive(ctx, pollID, true)
	if err != nil {
		s.logger.Error().Err(err).Int64("pollId", pollID).Msg("Failed to manually activate poll")
		return nil, err
	}
	s.logger.Info().Int64("pollId", pollID).Msg("Manually activated poll")
	return p, nil
}

// Deactivate switches a poll off regardless of its dates.
func (s *PollScheduler) Deactivate(ctx context.Context, pollID int64) (*dto.EventPollDTO, error) {
	p, err := s.polls.SetPollActive(ctx, pollID, false)
	if err != nil {
		s.logger.Error().Err(err).Int64("pollId", pollID).Msg("Failed to manually deactivate poll")
		return nil, err
	}
	s.logger.Info().Int64("pollId", pollID).Msg("Manually deactivated poll")
	return p, nil
}

// UpcomingChanges lists polls that will activate or deactivate within the
// next minutes.
func (s *PollScheduler) UpcomingChanges(ctx context.Context, minutes int) ([]dto.UpcomingPollChange, error) {
	if minutes <= 0 {
		minutes = 60
	}
	params := url.Values{}
	params.Set("size", strconv.Itoa(pollFetchSize))
	list, err := s.polls.ListPolls(ctx, params)
	if err != nil {
		return nil, err
	}

	now := s.now()
	horizon := now.Add(time.Duration(minutes) * time.Minute)
	changes := []dto.UpcomingPollChange{}
	for _, p := range list.Data {
		change := TimeUntilChange(p, now)
		if change.Type == dto.PollChangeNone {
			continue
		}
		at, _ := helpers.ParseTime(change.At)
		if !at.After(horizon) {
			changes = append(changes, dto.UpcomingPollChange{Poll: p, Change: change})
		}
	}
	return changes, nil
}

// TimeUntilChange reports the next automatic transition of p after now.
// Minutes are rounded up.
func TimeUntilChange(p dto.EventPollDTO, now time.Time) dto.PollChange {
	if start, ok := helpers.ParseTime(p.StartDate); ok && start.After(now) && !p.Active() {
		return newPollChange(dto.PollChangeActivate, start, now)
	}
	if end, ok := helpers.ParseTimePtr(p.EndDate); ok && end.After(now) && p.Active() {
		return newPollChange(dto.PollChangeDeactivate, end, now)
	}
	return dto.PollChange{Type: dto.PollChangeNone, Message: "No scheduled changes"}
}

func newPollChange(kind dto.PollChangeType, at, now time.Time) dto.PollChange {
	minutes := int(math.Ceil(at.Sub(now).Minutes()))
	return dto.PollChange{
		Type:    kind,
		Minutes: minutes,
		At:      helpers.FormatTime(at),
		Message: fmt.Sprintf("Poll will %s in %d minutes", kind, minutes),
	}
}
