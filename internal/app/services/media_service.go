package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/backend"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

const (
	mediaResource       = "event-medias"
	mediaUploadMultiple = "event-medias/upload-multiple"
	mediaUploadSingle   = "event-medias/upload"
)

// Upload validation messages shown to the admin as-is.
const (
	MsgMediaTitleRequired = "Title is required. Please provide a title for your media files."
	MsgMediaStartRequired = "Start Displaying From date is required. Please select a date when the media should start being displayed."
	MsgMediaFilesRequired = "Please select at least one file to upload."
)

// MediaService defines the interface for event media operations
type MediaService interface {
	ListEventMedia(ctx context.Context, q dto.MediaListQuery) (dto.ListResult[dto.EventMediaDTO], error)
	ListOfficialDocuments(ctx context.Context, eventID int64) ([]dto.EventMediaDTO, error)
	Upload(ctx context.Context, req dto.MediaUploadRequest, files []*multipart.FileHeader) ([]dto.EventMediaDTO, error)
	Update(ctx context.Context, id int64, req dto.MediaUpdateRequest) (*dto.EventMediaDTO, error)
	Delete(ctx context.Context, id int64) error
}

type mediaServiceImpl struct {
	api Backend
	now func() time.Time
}

// NewMediaService creates a new media service instance
func NewMediaService(api Backend) MediaService {
	return &mediaServiceImpl{api: api, now: time.Now}
}

// InferEventMediaType classifies a file by extension.
func InferEventMediaType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "jpg", "jpeg", "png", "gif", "bmp", "webp":
		return "gallery"
	case "mp4", "mov", "avi", "webm", "mkv":
		return "video"
	case "pdf", "doc", "docx", "ppt", "pptx", "xls", "xlsx":
		return "document"
	case "svg":
		return "image"
	}
	return "other"
}

// ValidateMediaUpload checks the fields the backend requires before any
// bytes are sent.
func ValidateMediaUpload(req dto.MediaUploadRequest, fileCount int) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title", MsgMediaTitleRequired)
	}
	if strings.TrimSpace(req.StartDisplayingFromDate) == "" {
		return apperrors.NewValidationError("startDisplayingFromDate", MsgMediaStartRequired)
	}
	if fileCount == 0 {
		return apperrors.NewValidationError("files", MsgMediaFilesRequired)
	}
	return nil
}

func (s *mediaServiceImpl) ListEventMedia(ctx context.Context, q dto.MediaListQuery) (dto.ListResult[dto.EventMediaDTO], error) {
	page, size := helpers.NormalizePage(q.Page, q.Size)
	params := url.Values{}
	params.Set("eventId.equals", strconv.FormatInt(q.EventID, 10))
	params.Set("isEventManagementOfficialDocument.equals", strconv.FormatBool(q.OfficialDoc))
	params.Set("sort", "updatedAt,desc")
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("title.contains", search)
	}
	if q.FlyerOnly {
		params.Set("eventFlyer.equals", "true")
	}

	var items []dto.EventMediaDTO
	total, err := s.api.GetJSON(ctx, mediaResource, params, &items)
	if err != nil {
		return dto.ListResult[dto.EventMediaDTO]{}, fmt.Errorf("error listing media for event %d: %w", q.EventID, err)
	}
	if items == nil {
		items = []dto.EventMediaDTO{}
	}
	if total < 0 {
		total = 0
	}
	return dto.ListResult[dto.EventMediaDTO]{Data: items, TotalCount: total}, nil
}

func (s *mediaServiceImpl) ListOfficialDocuments(ctx context.Context, eventID int64) ([]dto.EventMediaDTO, error) {
	params := url.Values{}
	params.Set("eventId.equals", strconv.FormatInt(eventID, 10))
	params.Set("isEventManagementOfficialDocument.equals", "true")
	params.Set("sort", "updatedAt,desc")

	var items []dto.EventMediaDTO
	if _, err := s.api.GetJSON(ctx, mediaResource, params, &items); err != nil {
		return nil, fmt.Errorf("error listing official documents for event %d: %w", eventID, err)
	}
	if items == nil {
		items = []dto.EventMediaDTO{}
	}
	return items, nil
}

// BuildUploadForm writes the multipart body the backend upload endpoint
// expects and returns it with its content type.
func BuildUploadForm(tenantID string, req dto.MediaUploadRequest, files []*multipart.FileHeader) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fh := range files {
		if err := copyFilePart(w, "files", fh); err != nil {
			return nil, "", err
		}
	}

	fields := [][2]string{
		{"eventId", strconv.FormatInt(req.EventID, 10)},
		{"eventFlyer", strconv.FormatBool(req.EventFlyer)},
		{"isEventManagementOfficialDocument", strconv.FormatBool(req.IsEventManagementOfficialDocument)},
		{"isHeroImage", strconv.FormatBool(req.IsHeroImage)},
		{"isActiveHeroImage", strconv.FormatBool(req.IsActiveHeroImage)},
		{"isFeaturedEventImage", strconv.FormatBool(req.IsFeaturedEventImage)},
		{"isLiveEventImage", strconv.FormatBool(req.IsLiveEventImage)},
		{"isHomePageHeroImage", strconv.FormatBool(req.IsHomePageHeroImage)},
		{"isPublic", strconv.FormatBool(req.IsPublic)},
		{"isTeamMemberProfileImage", "false"},
		{"tenantId", tenantID},
	}
	for i := range files {
		title, description := req.Title, req.Description
		if i < len(req.Titles) && strings.TrimSpace(req.Titles[i]) != "" {
			title = req.Titles[i]
		}
		if i < len(req.Descriptions) && req.Descriptions[i] != "" {
			description = req.Descriptions[i]
		}
		fields = append(fields, [2]string{"titles", title}, [2]string{"descriptions", description})
	}
	if req.UploadedByID != nil {
		fields = append(fields, [2]string{"upLoadedById", strconv.FormatInt(*req.UploadedByID, 10)})
	}
	if req.AltText != "" {
		fields = append(fields, [2]string{"altText", req.AltText})
	}
	if req.DisplayOrder != nil {
		fields = append(fields, [2]string{"displayOrder", strconv.Itoa(*req.DisplayOrder)})
	}
	fields = append(fields, [2]string{"startDisplayingFromDate", req.StartDisplayingFromDate})

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish upload form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func copyFilePart(w *multipart.Writer, field string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
	}
	defer src.Close()

	part, err := w.CreateFormFile(field, fh.Filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to copy uploaded file %s: %w", fh.Filename, err)
	}
	return nil
}

func (s *mediaServiceImpl) Upload(ctx context.Context, req dto.MediaUploadRequest, files []*multipart.FileHeader) ([]dto.EventMediaDTO, error) {
	if err := ValidateMediaUpload(req, len(files)); err != nil {
		return nil, err
	}

	body, contentType, err := BuildUploadForm(s.api.TenantID(), req, files)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, backend.Request{
		Method:      http.MethodPost,
		Path:        mediaUploadMultiple,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading media: %w", err)
	}

	var uploaded []dto.EventMediaDTO
	if err := resp.Decode(&uploaded); err != nil {
		var single dto.EventMediaDTO
		if err2 := resp.Decode(&single); err2 != nil {
			return nil, err
		}
		uploaded = []dto.EventMediaDTO{single}
	}
	return uploaded, nil
}

func (s *mediaServiceImpl) Update(ctx context.Context, id int64, req dto.MediaUpdateRequest) (*dto.EventMediaDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("title", MsgMediaTitleRequired)
	}
	now := helpers.FormatTime(s.now())

	patch := map[string]interface{}{
		"id":             id,
		"title":          req.Title,
		"eventMediaType": defaultString(req.EventMediaType, "gallery"),
		"storageType":    defaultString(req.StorageType, "s3"),
		"createdAt":      defaultString(req.CreatedAt, now),
		"updatedAt":      now,
	}
	setIfPresent(patch, "description", req.Description)
	setIfPresent(patch, "isPublic", req.IsPublic)
	setIfPresent(patch, "eventFlyer", req.EventFlyer)
	setIfPresent(patch, "isHeroImage", req.IsHeroImage)
	setIfPresent(patch, "isActiveHeroImage", req.IsActiveHeroImage)
	setIfPresent(patch, "isHomePageHeroImage", req.IsHomePageHeroImage)
	setIfPresent(patch, "isFeaturedEventImage", req.IsFeaturedEventImage)
	setIfPresent(patch, "isLiveEventImage", req.IsLiveEventImage)
	setIfPresent(patch, "altText", req.AltText)
	setIfPresent(patch, "displayOrder", req.DisplayOrder)
	setIfPresent(patch, "startDisplayingFromDate", req.StartDisplayingFromDate)
	patch["tenantId"] = s.api.TenantID()

	var updated dto.EventMediaDTO
	if err := s.api.PatchJSON(ctx, fmt.Sprintf("%s/%d", mediaResource, id), patch, &updated); err != nil {
		return nil, fmt.Errorf("error updating media %d: %w", id, err)
	}
	return &updated, nil
}

func (s *mediaServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", mediaResource, id)); err != nil {
		return fmt.Errorf("error deleting media %d: %w", id, err)
	}
	return nil
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// setIfPresent copies a non-nil pointer's value into a patch body.
func setIfPresent[T any](m map[string]interface{}, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}
