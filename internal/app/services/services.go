package services

import (
	"context"
	"net/url"

	"github.com/mosc/eventadmin/internal/pkg/backend"
)

// Backend is the subset of the backend REST client the services use.
// *backend.Client implements it.
type Backend interface {
	TenantID() string
	Do(ctx context.Context, req backend.Request) (*backend.Response, error)
	GetJSON(ctx context.Context, path string, query url.Values, out interface{}) (int64, error)
	PostJSON(ctx context.Context, path string, query url.Values, body, out interface{}) error
	PutJSON(ctx context.Context, path string, body, out interface{}) error
	PatchJSON(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string) error
}

// Services defined in this package:
//   - MediaService: event media listing, upload and editing
//   - SponsorService: sponsors and their event assignments
//   - PollService and PollScheduler: polls, options, responses and automatic activation
//   - WhatsAppService: backend messaging endpoints
//   - WhatsAppSettingsService: provider credentials and webhook in the tenant settings
//   - CampaignService and CampaignMonitor: the bulk messaging wizard and its progress
//   - TemplateService: locally stored message templates
//   - CommitteeService: executive committee members
//   - UserProfileService: user profiles
//   - GalleryService: locally stored gallery albums
