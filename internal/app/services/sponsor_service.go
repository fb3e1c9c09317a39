package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
	"github.com/mosc/eventadmin/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	sponsorResource     = "event-sponsors"
	sponsorJoinResource = "event-sponsors-join"

	// sponsorFetchSize is the page size used when the whole sponsor table
	// is needed at once.
	sponsorFetchSize = 1000
	// detailFetchLimit bounds the concurrent sponsor detail lookups.
	detailFetchLimit = 8
)

// Sponsor validation messages
const (
	MsgSponsorNameRequired = "Sponsor name is required and cannot be empty"
	MsgSponsorTypeRequired = "Sponsor type is required and cannot be empty"
)

// SponsorService defines the interface for sponsor operations
type SponsorService interface {
	ListSponsors(ctx context.Context, page, size int, search string) (dto.PageResult[dto.EventSponsorDTO], error)
	GetSponsor(ctx context.Context, id int64) (*dto.EventSponsorDTO, error)
	CreateSponsor(ctx context.Context, req dto.SponsorRequest) (*dto.EventSponsorDTO, error)
	UpdateSponsor(ctx context.Context, id int64, req dto.SponsorRequest) (*dto.EventSponsorDTO, error)
	DeleteSponsor(ctx context.Context, id int64) error

	ListEventSponsors(ctx context.Context, eventID int64) ([]dto.EventSponsorJoinDTO, error)
	AssignSponsor(ctx context.Context, req dto.SponsorJoinRequest) (*dto.EventSponsorJoinDTO, error)
	UpdateAssignment(ctx context.Context, id int64, req dto.SponsorJoinRequest) (*dto.EventSponsorJoinDTO, error)
	RemoveAssignment(ctx context.Context, id int64) error

	AvailableSponsors(ctx context.Context, eventID int64, page, size int, search string) (*dto.AvailableSponsorsResult, error)
}

type sponsorServiceImpl struct {
	api Backend
	now func() time.Time
}

// NewSponsorService creates a new sponsor service instance
func NewSponsorService(api Backend) SponsorService {
	return &sponsorServiceImpl{api: api, now: time.Now}
}

func (s *sponsorServiceImpl) fetchAllSponsors(ctx context.Context, search string) ([]dto.EventSponsorDTO, error) {
	params := url.Values{}
	params.Set("sort", "name,asc")
	params.Set("size", strconv.Itoa(sponsorFetchSize))
	if search = strings.TrimSpace(search); search != "" {
		params.Set("name.contains", search)
	}
	var sponsors []dto.EventSponsorDTO
	if _, err := s.api.GetJSON(ctx, sponsorResource, params, &sponsors); err != nil {
		return nil, fmt.Errorf("error fetching sponsors: %w", err)
	}
	return sponsors, nil
}

// ListSponsors returns one page of sponsors sorted by name. The backend
// returns the whole list, so paging happens here.
func (s *sponsorServiceImpl) ListSponsors(ctx context.Context, page, size int, search string) (dto.PageResult[dto.EventSponsorDTO], error) {
	all, err := s.fetchAllSponsors(ctx, search)
	if err != nil {
		return dto.PageResult[dto.EventSponsorDTO]{}, err
	}
	return helpers.Paginate(all, page, size), nil
}

func (s *sponsorServiceImpl) GetSponsor(ctx context.Context, id int64) (*dto.EventSponsorDTO, error) {
	var sponsor dto.EventSponsorDTO
	if _, err := s.api.GetJSON(ctx, fmt.Sprintf("%s/%d", sponsorResource, id), nil, &sponsor); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Sponsor with ID %d not found", id))
		}
		return nil, fmt.Errorf("error fetching sponsor %d: %w", id, err)
	}
	return &sponsor, nil
}

// nullableURL maps blank URL fields to JSON null; the backend rejects empty
// strings in URL columns.
func nullableURL(v string) interface{} {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return strings.TrimSpace(v)
}

func nullableText(v string) interface{} {
	if t := strings.TrimSpace(v); t != "" {
		return t
	}
	return nil
}

func validateSponsor(req dto.SponsorRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name", MsgSponsorNameRequired)
	}
	if strings.TrimSpace(req.Type) == "" {
		return apperrors.NewValidationError("type", MsgSponsorTypeRequired)
	}
	return nil
}

// SponsorCreatePayload builds the backend body for a new sponsor.
func SponsorCreatePayload(req dto.SponsorRequest, tenantID string, now time.Time) map[string]interface{} {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	priority := 1
	if req.PriorityRanking != nil {
		priority = *req.PriorityRanking
	}
	ts := helpers.FormatTime(now)
	return map[string]interface{}{
		"tenantId":        tenantID,
		"name":            strings.TrimSpace(req.Name),
		"type":            strings.TrimSpace(req.Type),
		"isActive":        isActive,
		"priorityRanking": priority,
		"createdAt":       ts,
		"updatedAt":       ts,
		"companyName":     nullableText(req.CompanyName),
		"tagline":         nullableText(req.Tagline),
		"description":     nullableText(req.Description),
		"contactEmail":    nullableText(req.ContactEmail),
		"contactPhone":    nullableText(req.ContactPhone),
		"websiteUrl":      nullableURL(req.WebsiteURL),
		"logoUrl":         nullableURL(req.LogoURL),
		"heroImageUrl":    nullableURL(req.HeroImageURL),
		"bannerImageUrl":  nullableURL(req.BannerImageURL),
		"facebookUrl":     nullableURL(req.FacebookURL),
		"twitterUrl":      nullableURL(req.TwitterURL),
		"linkedinUrl":     nullableURL(req.LinkedinURL),
		"instagramUrl":    nullableURL(req.InstagramURL),
	}
}

func (s *sponsorServiceImpl) CreateSponsor(ctx context.Context, req dto.SponsorRequest) (*dto.EventSponsorDTO, error) {
	if err := validateSponsor(req); err != nil {
		return nil, err
	}
	var created dto.EventSponsorDTO
	if err := s.api.PostJSON(ctx, sponsorResource, nil, SponsorCreatePayload(req, s.api.TenantID(), s.now()), &created); err != nil {
		return nil, fmt.Errorf("error creating sponsor: %w", err)
	}
	return &created, nil
}

func (s *sponsorServiceImpl) UpdateSponsor(ctx context.Context, id int64, req dto.SponsorRequest) (*dto.EventSponsorDTO, error) {
	if err := validateSponsor(req); err != nil {
		return nil, err
	}
	patch := SponsorCreatePayload(req, s.api.TenantID(), s.now())
	patch["id"] = id
	// createdAt belongs to the original record
	delete(patch, "createdAt")
	if req.CreatedAt != nil {
		patch["createdAt"] = *req.CreatedAt
	}

	var updated dto.EventSponsorDTO
	if err := s.api.PatchJSON(ctx, fmt.Sprintf("%s/%d", sponsorResource, id), patch, &updated); err != nil {
		return nil, fmt.Errorf("error updating sponsor %d: %w", id, err)
	}
	return &updated, nil
}

func (s *sponsorServiceImpl) DeleteSponsor(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", sponsorResource, id)); err != nil {
		return fmt.Errorf("error deleting sponsor %d: %w", id, err)
	}
	return nil
}

// unwrapList accepts either a bare JSON array or an object wrapping one under
// content, data or results.
func unwrapList[T any](raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Content []T `json:"content"`
		Data    []T `json:"data"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected list payload: %w", err)
	}
	switch {
	case wrapped.Content != nil:
		return wrapped.Content, nil
	case wrapped.Data != nil:
		return wrapped.Data, nil
	default:
		return wrapped.Results, nil
	}
}

// ListEventSponsors returns the sponsor assignments of an event with each
// sponsor's details filled in.
func (s *sponsorServiceImpl) ListEventSponsors(ctx context.Context, eventID int64) ([]dto.EventSponsorJoinDTO, error) {
	var raw json.RawMessage
	_, err := s.api.GetJSON(ctx, fmt.Sprintf("%s/event/%d", sponsorJoinResource, eventID), nil, &raw)
	if err != nil {
		logger.Warn().Err(err).Int64("eventId", eventID).Msg("Event sponsor endpoint failed, falling back to filter query")
		params := url.Values{}
		params.Set("eventId.equals", strconv.FormatInt(eventID, 10))
		raw = nil
		if _, ferr := s.api.GetJSON(ctx, sponsorJoinResource, params, &raw); ferr != nil {
			return nil, fmt.Errorf("error fetching sponsors of event %d: %w", eventID, ferr)
		}
	}

	joins, err := unwrapList[dto.EventSponsorJoinDTO](raw)
	if err != nil {
		return nil, err
	}
	if joins == nil {
		joins = []dto.EventSponsorJoinDTO{}
	}
	s.fillSponsorDetails(ctx, joins)
	return joins, nil
}

// fillSponsorDetails fetches sponsors referenced by id only. Lookup failures
// leave the reference as it was.
func (s *sponsorServiceImpl) fillSponsorDetails(ctx context.Context, joins []dto.EventSponsorJoinDTO) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i := range joins {
		sp := joins[i].Sponsor
		if sp == nil || sp.ID == nil || sp.Name != "" {
			continue
		}
		i, id := i, *sp.ID
		g.Go(func() error {
			detail, err := s.GetSponsor(gctx, id)
			if err != nil {
				logger.Warn().Err(err).Int64("sponsorId", id).Msg("Failed to fetch sponsor details")
				return nil
			}
			joins[i].Sponsor = detail
			return nil
		})
	}
	_ = g.Wait()
}

func (s *sponsorServiceImpl) joinPayload(req dto.SponsorJoinRequest) map[string]interface{} {
	return map[string]interface{}{
		"tenantId": s.api.TenantID(),
		"event":    dto.EventRef{ID: req.EventID},
		"sponsor":  map[string]interface{}{"id": req.SponsorID},
	}
}

func (s *sponsorServiceImpl) AssignSponsor(ctx context.Context, req dto.SponsorJoinRequest) (*dto.EventSponsorJoinDTO, error) {
	body := s.joinPayload(req)
	ts := helpers.FormatTime(s.now())
	body["createdAt"] = ts
	body["updatedAt"] = ts

	var created dto.EventSponsorJoinDTO
	if err := s.api.PostJSON(ctx, sponsorJoinResource, nil, body, &created); err != nil {
		return nil, fmt.Errorf("error assigning sponsor %d to event %d: %w", req.SponsorID, req.EventID, err)
	}
	return &created, nil
}

func (s *sponsorServiceImpl) UpdateAssignment(ctx context.Context, id int64, req dto.SponsorJoinRequest) (*dto.EventSponsorJoinDTO, error) {
	body := s.joinPayload(req)
	body["id"] = id

	var updated dto.EventSponsorJoinDTO
	if err := s.api.PatchJSON(ctx, fmt.Sprintf("%s/%d", sponsorJoinResource, id), body, &updated); err != nil {
		return nil, fmt.Errorf("error updating sponsor assignment %d: %w", id, err)
	}
	return &updated, nil
}

func (s *sponsorServiceImpl) RemoveAssignment(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", sponsorJoinResource, id)); err != nil {
		return fmt.Errorf("error removing sponsor assignment %d: %w", id, err)
	}
	return nil
}

// AvailableSponsors lists sponsors not yet assigned to eventID.
func (s *sponsorServiceImpl) AvailableSponsors(ctx context.Context, eventID int64, page, size int, search string) (*dto.AvailableSponsorsResult, error) {
	joins, err := s.ListEventSponsors(ctx, eventID)
	if err != nil {
		return nil, err
	}
	all, err := s.fetchAllSponsors(ctx, "")
	if err != nil {
		return nil, err
	}

	assigned := AssignedSponsorIDs(joins)
	result := FilterAvailableSponsors(all, assigned, search, page, size)
	return &result, nil
}

// AssignedSponsorIDs collects the sponsor ids referenced by joins.
func AssignedSponsorIDs(joins []dto.EventSponsorJoinDTO) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(joins))
	for _, j := range joins {
		if j.Sponsor != nil && j.Sponsor.ID != nil && *j.Sponsor.ID != 0 {
			ids[*j.Sponsor.ID] = struct{}{}
		}
	}
	return ids
}

// FilterAvailableSponsors removes assigned sponsors, applies a
// case-insensitive search over name, company name and type, then pages.
func FilterAvailableSponsors(all []dto.EventSponsorDTO, assigned map[int64]struct{}, search string, page, size int) dto.AvailableSponsorsResult {
	term := strings.ToLower(strings.TrimSpace(search))
	available := make([]dto.EventSponsorDTO, 0, len(all))
	for _, sp := range all {
		if _, taken := assigned[sp.SponsorID()]; taken {
			continue
		}
		if term != "" && !sponsorMatches(sp, term) {
			continue
		}
		available = append(available, sp)
	}

	paged := helpers.Paginate(available, page, size)
	return dto.AvailableSponsorsResult{
		Content:       paged.Content,
		TotalElements: paged.TotalElements,
		TotalPages:    paged.TotalPages,
		AssignedCount: len(assigned),
		TotalSponsors: len(all),
	}
}

func sponsorMatches(sp dto.EventSponsorDTO, term string) bool {
	if strings.Contains(strings.ToLower(sp.Name), term) || strings.Contains(strings.ToLower(sp.Type), term) {
		return true
	}
	return sp.CompanyName != nil && strings.Contains(strings.ToLower(*sp.CompanyName), term)
}
