package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// PollController handles polls, their options, responses and scheduling
type PollController struct {
	pollService services.PollService
	scheduler   *services.PollScheduler
	now         func() time.Time
}

// NewPollController creates a new PollController. scheduler may be nil when
// automatic activation is disabled; manual activation then updates the poll
// directly.
func NewPollController(pollService services.PollService, scheduler *services.PollScheduler) *PollController {
	return &PollController{pollService: pollService, scheduler: scheduler, now: time.Now}
}

// ListPolls lists polls
// @Summary List polls
// @Description Lists polls. Backend criteria such as eventId.equals or title.contains are passed through. Pages are zero-based.
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Param sort query string false "Sort" default(createdAt,desc)
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "Polls with pagination"
// @Router /polls [get]
func (pc *PollController) ListPolls(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filters := ctx.Request.URL.Query()
	filters.Set("page", strconv.Itoa(page))
	filters.Set("size", strconv.Itoa(size))
	if filters.Get("sort") == "" {
		filters.Set("sort", "createdAt,desc")
	}

	result, err := pc.pollService.ListPolls(ctx.Request.Context(), filters)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, result.Data, result.TotalCount, page, size)
}

// GetPoll retrieves a poll
// @Summary Get poll
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventPollDTO} "Poll"
// @Failure 404 {object} dto.ErrorResponse "Poll not found"
// @Router /polls/{id} [get]
func (pc *PollController) GetPoll(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	poll, err := pc.pollService.GetPoll(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, poll)
}

// CreatePoll creates a poll, optionally with its options
// @Summary Create poll
// @Description Creates a poll. When options are given at least two must be non-empty.
// @Tags polls
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.PollRequest true "Poll"
// @Success 201 {object} dto.APIResponse{data=dto.PollWithOptions} "Poll created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /polls [post]
func (pc *PollController) CreatePoll(ctx *gin.Context) {
	var req dto.PollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	poll, err := pc.pollService.CreatePoll(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, poll)
}

// UpdatePoll replaces a poll's fields
// @Summary Update poll
// @Tags polls
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Param request body dto.PollRequest true "Poll"
// @Success 200 {object} dto.APIResponse{data=dto.EventPollDTO} "Poll updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Poll not found"
// @Router /polls/{id} [put]
func (pc *PollController) UpdatePoll(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	var req dto.PollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	poll, err := pc.pollService.UpdatePoll(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, poll)
}

// DeletePoll deletes a poll
// @Summary Delete poll
// @Tags polls
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse "Poll deleted"
// @Failure 404 {object} dto.ErrorResponse "Poll not found"
// @Router /polls/{id} [delete]
func (pc *PollController) DeletePoll(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	if err := pc.pollService.DeletePoll(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Poll deleted successfully")
}

// ActivatePoll switches a poll on
// @Summary Activate poll
// @Tags polls
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventPollDTO} "Poll activated"
// @Router /polls/{id}/activate [post]
func (pc *PollController) ActivatePoll(ctx *gin.Context) {
	pc.setActive(ctx, true)
}

// DeactivatePoll switches a poll off
// @Summary Deactivate poll
// @Tags polls
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventPollDTO} "Poll deactivated"
// @Router /polls/{id}/deactivate [post]
func (pc *PollController) DeactivatePoll(ctx *gin.Context) {
	pc.setActive(ctx, false)
}

func (pc *PollController) setActive(ctx *gin.Context, active bool) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	var (
		poll *dto.EventPollDTO
		err  error
	)
	switch {
	case pc.scheduler != nil && active:
		poll, err = pc.scheduler.Activate(ctx.Request.Context(), id)
	case pc.scheduler != nil:
		poll, err = pc.scheduler.Deactivate(ctx.Request.Context(), id)
	default:
		poll, err = pc.pollService.SetPollActive(ctx.Request.Context(), id, active)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, poll)
}

// PollStatus reports a poll's display status and next transition
// @Summary Poll status
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "Status and next change"
// @Failure 404 {object} dto.ErrorResponse "Poll not found"
// @Router /polls/{id}/status [get]
func (pc *PollController) PollStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	poll, err := pc.pollService.GetPoll(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	now := pc.now()
	respond(ctx, http.StatusOK, gin.H{
		"pollId":   id,
		"status":   services.PollStatusAt(*poll, now),
		"isActive": services.IsPollActive(*poll, now),
		"change":   services.TimeUntilChange(*poll, now),
	})
}

// PollResults tallies a poll's responses
// @Summary Poll results
// @Description Per-option counts and percentages, unique voters, comments and responses by hour (UTC)
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.PollResults} "Results"
// @Router /polls/{id}/results [get]
func (pc *PollController) PollResults(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	results, err := pc.pollService.Results(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, results)
}

// ListOptions lists a poll's options
// @Summary List poll options
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventPollOptionDTO} "Options"
// @Router /polls/{id}/options [get]
func (pc *PollController) ListOptions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	options, err := pc.pollService.ListOptions(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, options)
}

// CreateOption adds an option to a poll
// @Summary Create poll option
// @Tags polls
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Param request body dto.PollOptionRequest true "Option"
// @Success 201 {object} dto.APIResponse{data=dto.EventPollOptionDTO} "Option created"
// @Router /polls/{id}/options [post]
func (pc *PollController) CreateOption(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	var req dto.PollOptionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	option, err := pc.pollService.CreateOption(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, option)
}

// ReplaceOptions updates several options at once
// @Summary Bulk update poll options
// @Description Options with an id are patched and options without one are created, in parallel
// @Tags polls
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Param request body []dto.PollOptionRequest true "Options"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventPollOptionDTO} "Options"
// @Router /polls/{id}/options [put]
func (pc *PollController) ReplaceOptions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	var reqs []dto.PollOptionRequest
	if !middleware.BindJSON(ctx, &reqs) {
		return
	}
	options, err := pc.pollService.UpdateOptions(ctx.Request.Context(), id, reqs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, options)
}

// UpdateOption edits one option
// @Summary Update poll option
// @Tags polls
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Option ID"
// @Param request body dto.PollOptionRequest true "Option"
// @Success 200 {object} dto.APIResponse{data=dto.EventPollOptionDTO} "Option updated"
// @Failure 404 {object} dto.ErrorResponse "Option not found"
// @Router /poll-options/{id} [patch]
func (pc *PollController) UpdateOption(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll option")
	if !ok {
		return
	}
	var req dto.PollOptionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	option, err := pc.pollService.UpdateOption(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, option)
}

// DeleteOption removes an option
// @Summary Delete poll option
// @Tags polls
// @Security SessionAuth
// @Param id path int true "Option ID"
// @Success 200 {object} dto.APIResponse "Option deleted"
// @Router /poll-options/{id} [delete]
func (pc *PollController) DeleteOption(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll option")
	if !ok {
		return
	}
	if err := pc.pollService.DeleteOption(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Poll option deleted successfully")
}

// ListResponses lists a poll's responses
// @Summary List poll responses
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventPollResponseDTO} "Responses"
// @Router /polls/{id}/responses [get]
func (pc *PollController) ListResponses(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll")
	if !ok {
		return
	}
	responses, err := pc.pollService.ListResponses(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, responses)
}

// CreateResponse records a vote
// @Summary Create poll response
// @Tags polls
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.PollResponseRequest true "Response"
// @Success 201 {object} dto.APIResponse{data=dto.EventPollResponseDTO} "Response recorded"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /poll-responses [post]
func (pc *PollController) CreateResponse(ctx *gin.Context) {
	var req dto.PollResponseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	response, err := pc.pollService.CreateResponse(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, response)
}

// DeleteResponse removes a vote
// @Summary Delete poll response
// @Tags polls
// @Security SessionAuth
// @Param id path int true "Response ID"
// @Success 200 {object} dto.APIResponse "Response deleted"
// @Router /poll-responses/{id} [delete]
func (pc *PollController) DeleteResponse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Poll response")
	if !ok {
		return
	}
	if err := pc.pollService.DeleteResponse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Poll response deleted successfully")
}

// UpcomingChanges lists polls that the scheduler will switch soon
// @Summary Upcoming poll changes
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Param minutes query int false "Look-ahead window in minutes" default(60)
// @Success 200 {object} dto.APIResponse{data=[]dto.UpcomingPollChange} "Upcoming changes"
// @Failure 503 {object} dto.ErrorResponse "Scheduler disabled"
// @Router /poll-scheduler/upcoming [get]
func (pc *PollController) UpcomingChanges(ctx *gin.Context) {
	if !pc.requireScheduler(ctx) {
		return
	}
	minutes := 60
	if m, ok := queryInt64(ctx, "minutes"); ok && m > 0 {
		minutes = int(m)
	}
	changes, err := pc.scheduler.UpcomingChanges(ctx.Request.Context(), minutes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, changes)
}

// SchedulerStatus reports the last scheduler pass
// @Summary Poll scheduler status
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Success 200 {object} dto.APIResponse{data=dto.SchedulerRunResult} "Last run, or null before the first pass"
// @Router /poll-scheduler/status [get]
func (pc *PollController) SchedulerStatus(ctx *gin.Context) {
	if !pc.requireScheduler(ctx) {
		return
	}
	respond(ctx, http.StatusOK, pc.scheduler.LastRun())
}

// RunScheduler runs one scheduler pass now
// @Summary Run poll scheduler
// @Tags polls
// @Produce json
// @Security SessionAuth
// @Success 200 {object} dto.APIResponse{data=dto.SchedulerRunResult} "Pass result"
// @Router /poll-scheduler/run [post]
func (pc *PollController) RunScheduler(ctx *gin.Context) {
	if !pc.requireScheduler(ctx) {
		return
	}
	respond(ctx, http.StatusOK, pc.scheduler.RunOnce(ctx.Request.Context()))
}

func (pc *PollController) requireScheduler(ctx *gin.Context) bool {
	if pc.scheduler != nil {
		return true
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Poll scheduler is disabled")
	ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
	return false
}
