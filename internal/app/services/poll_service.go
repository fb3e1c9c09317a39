package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
	"golang.org/x/sync/errgroup"
)

const (
	pollResource         = "event-polls"
	pollOptionResource   = "event-poll-options"
	pollResponseResource = "event-poll-responses"

	pollFetchSize = 1000
)

// Poll validation messages
const (
	MsgPollTitleRequired     = "Poll title is required"
	MsgPollStartRequired     = "Start date is required"
	MsgPollEndBeforeStart    = "End date must be after start date"
	MsgPollOptionsRequired   = "At least 2 poll options are required"
	MsgPollMaxResponsesRange = "Max responses per user must be at least 1"
)

// PollService defines the interface for poll operations
type PollService interface {
	ListPolls(ctx context.Context, filters url.Values) (dto.ListResult[dto.EventPollDTO], error)
	GetPoll(ctx context.Context, id int64) (*dto.EventPollDTO, error)
	CreatePoll(ctx context.Context, req dto.PollRequest) (*dto.PollWithOptions, error)
	UpdatePoll(ctx context.Context, id int64, req dto.PollRequest) (*dto.EventPollDTO, error)
	SetPollActive(ctx context.Context, id int64, active bool) (*dto.EventPollDTO, error)
	DeletePoll(ctx context.Context, id int64) error

	ListOptions(ctx context.Context, pollID int64) ([]dto.EventPollOptionDTO, error)
	CreateOption(ctx context.Context, pollID int64, req dto.PollOptionRequest) (*dto.EventPollOptionDTO, error)
	UpdateOption(ctx context.Context, id int64, req dto.PollOptionRequest) (*dto.EventPollOptionDTO, error)
	UpdateOptions(ctx context.Context, pollID int64, reqs []dto.PollOptionRequest) ([]dto.EventPollOptionDTO, error)
	DeleteOption(ctx context.Context, id int64) error

	ListResponses(ctx context.Context, pollID int64) ([]dto.EventPollResponseDTO, error)
	CreateResponse(ctx context.Context, req dto.PollResponseRequest) (*dto.EventPollResponseDTO, error)
	DeleteResponse(ctx context.Context, id int64) error

	Results(ctx context.Context, pollID int64) (*dto.PollResults, error)
}

type pollServiceImpl struct {
	api Backend
	now func() time.Time
}

// NewPollService creates a new poll service instance
func NewPollService(api Backend) PollService {
	return &pollServiceImpl{api: api, now: time.Now}
}

// ValidatePoll checks a poll form. Option count is only enforced when the
// poll is created together with its options.
func ValidatePoll(req dto.PollRequest, withOptions bool) error {
	problems := map[string]string{}
	var first string
	add := func(field, msg string) {
		problems[field] = msg
		if first == "" {
			first = msg
		}
	}

	if strings.TrimSpace(req.Title) == "" {
		add("title", MsgPollTitleRequired)
	}
	start, hasStart := helpers.ParseTime(req.StartDate)
	if !hasStart {
		add("startDate", MsgPollStartRequired)
	}
	if end, ok := helpers.ParseTimePtr(req.EndDate); ok && hasStart && !end.After(start) {
		add("endDate", MsgPollEndBeforeStart)
	}
	if withOptions {
		valid := 0
		for _, o := range req.Options {
			if strings.TrimSpace(o.OptionText) != "" {
				valid++
			}
		}
		if valid < 2 {
			add("options", MsgPollOptionsRequired)
		}
	}
	if req.MaxResponsesPerUser != nil && *req.MaxResponsesPerUser < 1 {
		add("maxResponsesPerUser", MsgPollMaxResponsesRange)
	}

	if first == "" {
		return nil
	}
	return apperrors.NewFieldsError(first, problems)
}

func (s *pollServiceImpl) ListPolls(ctx context.Context, filters url.Values) (dto.ListResult[dto.EventPollDTO], error) {
	var polls []dto.EventPollDTO
	total, err := s.api.GetJSON(ctx, pollResource, filters, &polls)
	if err != nil {
		return dto.ListResult[dto.EventPollDTO]{}, fmt.Errorf("error fetching polls: %w", err)
	}
	if polls == nil {
		polls = []dto.EventPollDTO{}
	}
	if total < 0 {
		total = int64(len(polls))
	}
	return dto.ListResult[dto.EventPollDTO]{Data: polls, TotalCount: total}, nil
}

func (s *pollServiceImpl) GetPoll(ctx context.Context, id int64) (*dto.EventPollDTO, error) {
	var poll dto.EventPollDTO
	if _, err := s.api.GetJSON(ctx, fmt.Sprintf("%s/%d", pollResource, id), nil, &poll); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Poll with ID %d not found", id))
		}
		return nil, fmt.Errorf("error fetching poll %d: %w", id, err)
	}
	return &poll, nil
}

func pollBody(req dto.PollRequest) map[string]interface{} {
	body := map[string]interface{}{
		"title":     strings.TrimSpace(req.Title),
		"startDate": req.StartDate,
	}
	setIfPresent(body, "description", req.Description)
	setIfPresent(body, "isActive", req.IsActive)
	setIfPresent(body, "endDate", req.EndDate)
	setIfPresent(body, "maxResponsesPerUser", req.MaxResponsesPerUser)
	setIfPresent(body, "allowMultipleChoices", req.AllowMultipleChoices)
	setIfPresent(body, "isAnonymous", req.IsAnonymous)
	if req.EventID != nil {
		body["event"] = dto.EventRef{ID: *req.EventID}
	}
	if req.CreatedByID != nil {
		body["createdBy"] = dto.UserRef{ID: *req.CreatedByID}
	}
	return body
}

// CreatePoll creates the poll and then each non-blank option in order.
func (s *pollServiceImpl) CreatePoll(ctx context.Context, req dto.PollRequest) (*dto.PollWithOptions, error) {
	if err := ValidatePoll(req, len(req.Options) > 0); err != nil {
		return nil, err
	}
	body := pollBody(req)
	ts := helpers.FormatTime(s.now())
	body["tenantId"] = s.api.TenantID()
	body["createdAt"] = ts
	body["updatedAt"] = ts
	if _, ok := body["isActive"]; !ok {
		body["isActive"] = false
	}

	var created dto.EventPollDTO
	if err := s.api.PostJSON(ctx, pollResource, nil, body, &created); err != nil {
		return nil, fmt.Errorf("error creating poll: %w", err)
	}

	result := &dto.PollWithOptions{Poll: created, Options: []dto.EventPollOptionDTO{}}
	order := 0
	for _, o := range req.Options {
		if strings.TrimSpace(o.OptionText) == "" {
			continue
		}
		order++
		if o.DisplayOrder == nil {
			n := order
			o.DisplayOrder = &n
		}
		opt, err := s.CreateOption(ctx, created.PollID(), o)
		if err != nil {
			return result, fmt.Errorf("poll %d created but option %q failed: %w", created.PollID(), o.OptionText, err)
		}
		result.Options = append(result.Options, *opt)
	}
	return result, nil
}

// patchPoll loads the poll, keeps its tenant and creation time, and applies
// fields as a merge-patch.
func (s *pollServiceImpl) patchPoll(ctx context.Context, id int64, fields map[string]interface{}) (*dto.EventPollDTO, error) {
	existing, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	fields["tenantId"] = existing.TenantID
	if existing.TenantID == "" {
		fields["tenantId"] = s.api.TenantID()
	}
	if existing.CreatedAt != "" {
		fields["createdAt"] = existing.CreatedAt
	}
	fields["updatedAt"] = helpers.FormatTime(s.now())

	var updated dto.EventPollDTO
	if err := s.api.PatchJSON(ctx, fmt.Sprintf("%s/%d", pollResource, id), fields, &updated); err != nil {
		return nil, fmt.Errorf("error updating poll %d: %w", id, err)
	}
	return &updated, nil
}

func (s *pollServiceImpl) UpdatePoll(ctx context.Context, id int64, req dto.PollRequest) (*dto.EventPollDTO, error) {
	if err := ValidatePoll(req, false); err != nil {
		return nil, err
	}
	return s.patchPoll(ctx, id, pollBody(req))
}

func (s *pollServiceImpl) SetPollActive(ctx context.Context, id int64, active bool) (*dto.EventPollDTO, error) {
	return s.patchPoll(ctx, id, map[string]interface{}{"isActive": active})
}

func (s *pollServiceImpl) DeletePoll(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", pollResource, id)); err != nil {
		return fmt.Errorf("error deleting poll %d: %w", id, err)
	}
	return nil
}

func (s *pollServiceImpl) ListOptions(ctx context.Context, pollID int64) ([]dto.EventPollOptionDTO, error) {
	params := url.Values{}
	params.Set("pollId.equals", strconv.FormatInt(pollID, 10))
	params.Set("sort", "displayOrder,asc")
	params.Set("size", strconv.Itoa(pollFetchSize))

	var options []dto.EventPollOptionDTO
	if _, err := s.api.GetJSON(ctx, pollOptionResource, params, &options); err != nil {
		return nil, fmt.Errorf("error fetching options of poll %d: %w", pollID, err)
	}
	if options == nil {
		options = []dto.EventPollOptionDTO{}
	}
	return options, nil
}

func (s *pollServiceImpl) optionBody(pollID int64, req dto.PollOptionRequest) map[string]interface{} {
	body := map[string]interface{}{
		"tenantId":   s.api.TenantID(),
		"optionText": strings.TrimSpace(req.OptionText),
		"updatedAt":  helpers.FormatTime(s.now()),
	}
	setIfPresent(body, "displayOrder", req.DisplayOrder)
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	body["isActive"] = isActive
	if pollID > 0 {
		body["poll"] = map[string]interface{}{"id": pollID}
	}
	return body
}

func (s *pollServiceImpl) CreateOption(ctx context.Context, pollID int64, req dto.PollOptionRequest) (*dto.EventPollOptionDTO, error) {
	if strings.TrimSpace(req.OptionText) == "" {
		return nil, apperrors.NewValidationError("optionText", "Option text is required")
	}
	body := s.optionBody(pollID, req)
	body["createdAt"] = body["updatedAt"]

	var created dto.EventPollOptionDTO
	if err := s.api.PostJSON(ctx, pollOptionResource, nil, body, &created); err != nil {
		return nil, fmt.Errorf("error creating poll option: %w", err)
	}
	return &created, nil
}

func (s *pollServiceImpl) UpdateOption(ctx context.Context, id int64, req dto.PollOptionRequest) (*dto.EventPollOptionDTO, error) {
	var existing dto.EventPollOptionDTO
	if _, err := s.api.GetJSON(ctx, fmt.Sprintf("%s/%d", pollOptionResource, id), nil, &existing); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Poll option with ID %d not found", id))
		}
		return nil, fmt.Errorf("error fetching poll option %d: %w", id, err)
	}

	body := s.optionBody(0, req)
	body["id"] = id
	if existing.CreatedAt != "" {
		body["createdAt"] = existing.CreatedAt
	}

	var updated dto.EventPollOptionDTO
	if err := s.api.PatchJSON(ctx, fmt.Sprintf("%s/%d", pollOptionResource, id), body, &updated); err != nil {
		return nil, fmt.Errorf("error updating poll option %d: %w", id, err)
	}
	return &updated, nil
}

// UpdateOptions applies a batch of option edits in parallel. Options without
// an id are created under pollID.
func (s *pollServiceImpl) UpdateOptions(ctx context.Context, pollID int64, reqs []dto.PollOptionRequest) ([]dto.EventPollOptionDTO, error) {
	out := make([]dto.EventPollOptionDTO, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			var (
				opt *dto.EventPollOptionDTO
				err error
			)
			if req.ID != nil && *req.ID > 0 {
				opt, err = s.UpdateOption(gctx, *req.ID, req)
			} else {
				opt, err = s.CreateOption(gctx, pollID, req)
			}
			if err != nil {
				return err
			}
			out[i] = *opt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *pollServiceImpl) DeleteOption(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", pollOptionResource, id)); err != nil {
		return fmt.Errorf("error deleting poll option %d: %w", id, err)
	}
	return nil
}

func (s *pollServiceImpl) ListResponses(ctx context.Context, pollID int64) ([]dto.EventPollResponseDTO, error) {
	params := url.Values{}
	params.Set("pollId.equals", strconv.FormatInt(pollID, 10))
	params.Set("size", strconv.Itoa(pollFetchSize))

	var responses []dto.EventPollResponseDTO
	if _, err := s.api.GetJSON(ctx, pollResponseResource, params, &responses); err != nil {
		return nil, fmt.Errorf("error fetching responses of poll %d: %w", pollID, err)
	}
	if responses == nil {
		responses = []dto.EventPollResponseDTO{}
	}
	return responses, nil
}

func (s *pollServiceImpl) CreateResponse(ctx context.Context, req dto.PollResponseRequest) (*dto.EventPollResponseDTO, error) {
	ts := helpers.FormatTime(s.now())
	body := map[string]interface{}{
		"tenantId":      s.api.TenantID(),
		"comment":       req.Comment,
		"responseValue": req.ResponseValue,
		"isAnonymous":   req.IsAnonymous,
		"poll":          map[string]interface{}{"id": req.PollID},
		"pollOption":    map[string]interface{}{"id": req.PollOptionID},
		"user":          map[string]interface{}{"id": req.UserID},
		"createdAt":     ts,
		"updatedAt":     ts,
	}

	var created dto.EventPollResponseDTO
	if err := s.api.PostJSON(ctx, pollResponseResource, nil, body, &created); err != nil {
		return nil, fmt.Errorf("error recording poll response: %w", err)
	}
	return &created, nil
}

func (s *pollServiceImpl) DeleteResponse(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", pollResponseResource, id)); err != nil {
		return fmt.Errorf("error deleting poll response %d: %w", id, err)
	}
	return nil
}

func (s *pollServiceImpl) Results(ctx context.Context, pollID int64) (*dto.PollResults, error) {
	var (
		options   []dto.EventPollOptionDTO
		responses []dto.EventPollResponseDTO
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		options, err = s.ListOptions(gctx, pollID)
		return err
	})
	g.Go(func() (err error) {
		responses, err = s.ListResponses(gctx, pollID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	results := TallyResults(pollID, options, responses)
	return &results, nil
}

// TallyResults aggregates responses per option. Percentages are shares of
// all responses, so they sum to 100 whenever there is at least one.
func TallyResults(pollID int64, options []dto.EventPollOptionDTO, responses []dto.EventPollResponseDTO) dto.PollResults {
	total := len(responses)
	voters := map[int64]struct{}{}
	perOption := map[int64]int{}
	votersPerOption := map[int64]map[int64]struct{}{}
	perHour := map[int]int{}
	comments := 0

	for _, r := range responses {
		optID := r.OptionRef()
		perOption[optID]++
		if uid := r.UserRefID(); uid != 0 {
			voters[uid] = struct{}{}
			if votersPerOption[optID] == nil {
				votersPerOption[optID] = map[int64]struct{}{}
			}
			votersPerOption[optID][uid] = struct{}{}
		}
		if t, ok := helpers.ParseTime(r.CreatedAt); ok {
			perHour[t.UTC().Hour()]++
		}
		if r.Comment != nil && strings.TrimSpace(*r.Comment) != "" {
			comments++
		}
	}

	tallies := make([]dto.OptionTally, 0, len(options))
	for _, o := range options {
		id := o.OptionID()
		count := perOption[id]
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		tallies = append(tallies, dto.OptionTally{
			OptionID:   id,
			OptionText: o.OptionText,
			Count:      count,
			Percentage: pct,
			Voters:     len(votersPerOption[id]),
		})
	}
	sort.SliceStable(tallies, func(i, j int) bool { return tallies[i].Count > tallies[j].Count })

	hours := make([]int, 0, len(perHour))
	for h := range perHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	perHourList := make([]dto.HourCount, 0, len(hours))
	peak, peakCount := "0:00", 0
	for _, h := range hours {
		label := fmt.Sprintf("%d:00", h)
		perHourList = append(perHourList, dto.HourCount{Hour: label, Count: perHour[h]})
		if perHour[h] > peakCount {
			peak, peakCount = label, perHour[h]
		}
	}

	res := dto.PollResults{
		PollID:           pollID,
		TotalResponses:   total,
		UniqueVoters:     len(voters),
		Options:          tallies,
		ResponsesPerHour: perHourList,
		PeakHour:         peak,
		TotalComments:    comments,
	}
	if len(voters) > 0 {
		res.AverageResponsesPerUser = float64(total) / float64(len(voters))
	}
	if total > 0 {
		res.CommentRate = float64(comments) / float64(total) * 100
	}
	return res
}

// PollStatusAt derives the display status of a poll at now.
func PollStatusAt(p dto.EventPollDTO, now time.Time) dto.PollStatus {
	if !p.Active() {
		return dto.PollStatusInactive
	}
	if start, ok := helpers.ParseTime(p.StartDate); ok && now.Before(start) {
		return dto.PollStatusScheduled
	}
	if end, ok := helpers.ParseTimePtr(p.EndDate); ok && now.After(end) {
		return dto.PollStatusEnded
	}
	return dto.PollStatusActive
}

// IsPollActive reports whether the poll accepts responses at now.
func IsPollActive(p dto.EventPollDTO, now time.Time) bool {
	return PollStatusAt(p, now) == dto.PollStatusActive
}
