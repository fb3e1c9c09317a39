package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/backend"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

const committeeResource = "executive-committee-team-members"

// CommitteeService defines the interface for executive committee operations
type CommitteeService interface {
	ListMembers(ctx context.Context) ([]dto.ExecutiveCommitteeMemberDTO, error)
	GetMember(ctx context.Context, id int64) (*dto.ExecutiveCommitteeMemberDTO, error)
	CreateMember(ctx context.Context, member dto.ExecutiveCommitteeMemberDTO) (*dto.ExecutiveCommitteeMemberDTO, error)
	UpdateMember(ctx context.Context, id int64, patch map[string]interface{}) (*dto.ExecutiveCommitteeMemberDTO, error)
	DeleteMember(ctx context.Context, id int64) error
	UpdateProfileImage(ctx context.Context, id int64, imageURL string) (*dto.ExecutiveCommitteeMemberDTO, error)
	UploadProfileImage(ctx context.Context, id int64, file *multipart.FileHeader) (*dto.ProfileImageResult, error)
}

type committeeServiceImpl struct {
	api Backend
}

// NewCommitteeService creates a new committee service instance
func NewCommitteeService(api Backend) CommitteeService {
	return &committeeServiceImpl{api: api}
}

func memberPath(id int64) string {
	return fmt.Sprintf("%s/%d", committeeResource, id)
}

func memberNotFound(id int64, err error) error {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("Committee member with ID %d not found", id))
	}
	return err
}

func (s *committeeServiceImpl) ListMembers(ctx context.Context) ([]dto.ExecutiveCommitteeMemberDTO, error) {
	params := url.Values{}
	params.Set("sort", "priorityOrder,asc")
	var members []dto.ExecutiveCommitteeMemberDTO
	if _, err := s.api.GetJSON(ctx, committeeResource, params, &members); err != nil {
		return nil, fmt.Errorf("error fetching committee members: %w", err)
	}
	if members == nil {
		members = []dto.ExecutiveCommitteeMemberDTO{}
	}
	return members, nil
}

func (s *committeeServiceImpl) GetMember(ctx context.Context, id int64) (*dto.ExecutiveCommitteeMemberDTO, error) {
	var m dto.ExecutiveCommitteeMemberDTO
	if _, err := s.api.GetJSON(ctx, memberPath(id), nil, &m); err != nil {
		return nil, memberNotFound(id, err)
	}
	return &m, nil
}

func (s *committeeServiceImpl) CreateMember(ctx context.Context, member dto.ExecutiveCommitteeMemberDTO) (*dto.ExecutiveCommitteeMemberDTO, error) {
	member.ID = nil
	member.FirstName = strings.TrimSpace(member.FirstName)
	member.LastName = strings.TrimSpace(member.LastName)
	if member.FirstName == "" || member.LastName == "" {
		return nil, apperrors.NewValidationError("firstName", "First and last name are required")
	}
	if strings.TrimSpace(member.Title) == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}

	var created dto.ExecutiveCommitteeMemberDTO
	if err := s.api.PostJSON(ctx, committeeResource, nil, member, &created); err != nil {
		return nil, fmt.Errorf("error creating committee member: %w", err)
	}
	return &created, nil
}

// UpdateMember merge-patches a member. The path ID always wins over an id in
// the patch.
func (s *committeeServiceImpl) UpdateMember(ctx context.Context, id int64, patch map[string]interface{}) (*dto.ExecutiveCommitteeMemberDTO, error) {
	body := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		body[k] = v
	}
	body["id"] = id

	var updated dto.ExecutiveCommitteeMemberDTO
	if err := s.api.PatchJSON(ctx, memberPath(id), body, &updated); err != nil {
		return nil, memberNotFound(id, err)
	}
	return &updated, nil
}

func (s *committeeServiceImpl) DeleteMember(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, memberPath(id)); err != nil {
		return memberNotFound(id, err)
	}
	return nil
}

func (s *committeeServiceImpl) UpdateProfileImage(ctx context.Context, id int64, imageURL string) (*dto.ExecutiveCommitteeMemberDTO, error) {
	return s.UpdateMember(ctx, id, map[string]interface{}{"profileImageUrl": imageURL})
}

// ProfileImageQuery is the query string the media upload endpoint expects for
// a team member picture.
func ProfileImageQuery(tenantID string, memberID int64) url.Values {
	q := url.Values{}
	q.Set("eventId", "0")
	q.Set("executiveTeamMemberID", strconv.FormatInt(memberID, 10))
	q.Set("eventFlyer", "false")
	q.Set("isEventManagementOfficialDocument", "false")
	q.Set("isHeroImage", "false")
	q.Set("isActiveHeroImage", "false")
	q.Set("isFeaturedImage", "false")
	q.Set("isPublic", "true")
	q.Set("isTeamMemberProfileImage", "true")
	q.Set("title", fmt.Sprintf("Team Member Profile Image - %d", memberID))
	q.Set("description", "Profile image uploaded for executive committee team member")
	q.Set("tenantId", tenantID)
	return q
}

// ExtractUploadedURL finds the file URL in an upload response. The backend
// answers with {data:[{fileUrl|url}]}, {fileUrl} or {url}.
func ExtractUploadedURL(body []byte) string {
	var resp struct {
		Data []struct {
			FileURL string `json:"fileUrl"`
			URL     string `json:"url"`
		} `json:"data"`
		FileURL string `json:"fileUrl"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if len(resp.Data) > 0 {
		if resp.Data[0].FileURL != "" {
			return resp.Data[0].FileURL
		}
		return resp.Data[0].URL
	}
	if resp.FileURL != "" {
		return resp.FileURL
	}
	return resp.URL
}

// UploadProfileImage uploads a picture for a member and points the member at
// it. When the backend accepts the file but returns no URL the member is
// left unchanged.
func (s *committeeServiceImpl) UploadProfileImage(ctx context.Context, id int64, file *multipart.FileHeader) (*dto.ProfileImageResult, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("file", "An image file is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := copyFilePart(w, "file", file); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload form: %w", err)
	}

	resp, err := s.api.Do(ctx, backend.Request{
		Method:      http.MethodPost,
		Path:        "event-medias/upload",
		Query:       ProfileImageQuery(s.api.TenantID(), id),
		Body:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading profile image for member %d: %w", id, err)
	}

	result := &dto.ProfileImageResult{MemberID: id, ProfileImageURL: ExtractUploadedURL(resp.Body)}
	if result.ProfileImageURL == "" {
		logger.Warn().Int64("memberId", id).Msg("Upload succeeded but the response carried no image URL")
		return result, nil
	}
	if _, err := s.UpdateProfileImage(ctx, id, result.ProfileImageURL); err != nil {
		return nil, err
	}
	return result, nil
}
