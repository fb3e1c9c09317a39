package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

const userProfileResource = "user-profiles"

// UserProfileQuery filters the profile list.
type UserProfileQuery struct {
	Search string
	Status string
	Role   string
	Page   int
	Size   int
}

// UserProfileService defines the interface for user profile operations
type UserProfileService interface {
	ListProfiles(ctx context.Context, q UserProfileQuery) (dto.ListResult[dto.UserProfileDTO], error)
	GetProfile(ctx context.Context, id int64) (*dto.UserProfileDTO, error)
	GetProfileByUserID(ctx context.Context, userID string) (*dto.UserProfileDTO, error)
	UpdateProfile(ctx context.Context, id int64, update dto.UserProfileUpdate) (*dto.UserProfileDTO, error)
}

type userProfileServiceImpl struct {
	api Backend
	now func() time.Time
}

// NewUserProfileService creates a new user profile service instance
func NewUserProfileService(api Backend) UserProfileService {
	return &userProfileServiceImpl{api: api, now: time.Now}
}

// ProfileListParams turns q into backend criteria. A search term matches
// first name, last name or email.
func ProfileListParams(q UserProfileQuery) url.Values {
	page, size := helpers.NormalizePage(q.Page, q.Size)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	params.Set("sort", "updatedAt,desc")
	if s := strings.TrimSpace(q.Search); s != "" {
		if strings.Contains(s, "@") {
			params.Set("email.contains", s)
		} else {
			params.Set("firstName.contains", s)
		}
	}
	if q.Status != "" {
		params.Set("userStatus.equals", q.Status)
	}
	if q.Role != "" {
		params.Set("userRole.equals", q.Role)
	}
	return params
}

func (s *userProfileServiceImpl) ListProfiles(ctx context.Context, q UserProfileQuery) (dto.ListResult[dto.UserProfileDTO], error) {
	var profiles []dto.UserProfileDTO
	total, err := s.api.GetJSON(ctx, userProfileResource, ProfileListParams(q), &profiles)
	if err != nil {
		return dto.ListResult[dto.UserProfileDTO]{}, fmt.Errorf("error fetching user profiles: %w", err)
	}
	if profiles == nil {
		profiles = []dto.UserProfileDTO{}
	}
	if total < 0 {
		total = int64(len(profiles))
	}
	return dto.ListResult[dto.UserProfileDTO]{Data: profiles, TotalCount: total}, nil
}

func (s *userProfileServiceImpl) GetProfile(ctx context.Context, id int64) (*dto.UserProfileDTO, error) {
	var p dto.UserProfileDTO
	if _, err := s.api.GetJSON(ctx, fmt.Sprintf("%s/%d", userProfileResource, id), nil, &p); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("User profile with ID %d not found", id))
		}
		return nil, fmt.Errorf("error fetching user profile %d: %w", id, err)
	}
	return &p, nil
}

func (s *userProfileServiceImpl) GetProfileByUserID(ctx context.Context, userID string) (*dto.UserProfileDTO, error) {
	var p dto.UserProfileDTO
	path := fmt.Sprintf("%s/by-user/%s", userProfileResource, url.PathEscape(userID))
	if _, err := s.api.GetJSON(ctx, path, nil, &p); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("No profile found for user %s", userID))
		}
		return nil, fmt.Errorf("error fetching profile of user %s: %w", userID, err)
	}
	return &p, nil
}

func (s *userProfileServiceImpl) UpdateProfile(ctx context.Context, id int64, update dto.UserProfileUpdate) (*dto.UserProfileDTO, error) {
	body := map[string]interface{}{
		"id":        id,
		"tenantId":  s.api.TenantID(),
		"updatedAt": helpers.FormatTime(s.now()),
	}
	setIfPresent(body, "firstName", update.FirstName)
	setIfPresent(body, "lastName", update.LastName)
	setIfPresent(body, "phone", update.Phone)
	setIfPresent(body, "city", update.City)
	setIfPresent(body, "state", update.State)
	setIfPresent(body, "country", update.Country)
	setIfPresent(body, "notes", update.Notes)
	setIfPresent(body, "userStatus", update.UserStatus)
	setIfPresent(body, "userRole", update.UserRole)
	if update.UserStatus != nil {
		body["reviewedByAdminAt"] = helpers.FormatTime(s.now())
	}

	var updated dto.UserProfileDTO
	if err := s.api.PatchJSON(ctx, fmt.Sprintf("%s/%d", userProfileResource, id), body, &updated); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("User profile with ID %d not found", id))
		}
		return nil, fmt.Errorf("error updating user profile %d: %w", id, err)
	}
	return &updated, nil
}
