package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/validation"
)

var (
	templateVariablePattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
	templateNamePattern     = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// TemplateService manages the tenant's stored message templates.
type TemplateService interface {
	ListTemplates(ctx context.Context) ([]dto.MessageTemplate, error)
	SaveTemplate(ctx context.Context, req dto.TemplateRequest) (*dto.MessageTemplate, error)
	Preview(ctx context.Context, req dto.TemplatePreviewRequest) (*dto.TemplatePreview, error)
}

type templateServiceImpl struct {
	store    repositories.TemplateStore
	tenantID string
}

// NewTemplateService creates a new template service instance
func NewTemplateService(store repositories.TemplateStore, tenantID string) TemplateService {
	return &templateServiceImpl{store: store, tenantID: tenantID}
}

// TemplateVariables lists the distinct {{variables}} of body in order of
// first use.
func TemplateVariables(body string) []string {
	vars := []string{}
	seen := map[string]bool{}
	for _, m := range templateVariablePattern.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}

func toTemplateDTO(t *models.MessageTemplate) dto.MessageTemplate {
	return dto.MessageTemplate{
		ID:       strconv.FormatInt(t.ID, 10),
		Name:     t.Name,
		Category: t.Category,
		Language: t.Language,
		Status:   "APPROVED",
		Components: []dto.TemplateComponent{
			{Type: "BODY", Text: t.Body},
		},
	}
}

func (s *templateServiceImpl) ListTemplates(ctx context.Context) ([]dto.MessageTemplate, error) {
	templates, err := s.store.List(ctx, s.tenantID)
	if err != nil {
		return nil, fmt.Errorf("error listing message templates: %w", err)
	}
	out := make([]dto.MessageTemplate, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateDTO(t))
	}
	return out, nil
}

func (s *templateServiceImpl) SaveTemplate(ctx context.Context, req dto.TemplateRequest) (*dto.MessageTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Body = strings.TrimSpace(req.Body)
	if err := validation.Default().Struct(req); err != nil {
		return nil, stepValidationError(err)
	}
	if !templateNamePattern.MatchString(req.Name) {
		return nil, apperrors.NewValidationError("name", "Template name may only contain lowercase letters, digits and underscores")
	}
	if req.Language == "" {
		req.Language = "en_US"
	}

	t := &models.MessageTemplate{
		TenantID:  s.tenantID,
		Name:      req.Name,
		Category:  req.Category,
		Language:  req.Language,
		Body:      req.Body,
		Variables: TemplateVariables(req.Body),
	}
	if err := s.store.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("error saving template %s: %w", req.Name, err)
	}
	out := toTemplateDTO(t)
	return &out, nil
}

// Preview renders a stored template, or an ad hoc body, for one recipient.
func (s *templateServiceImpl) Preview(ctx context.Context, req dto.TemplatePreviewRequest) (*dto.TemplatePreview, error) {
	body := req.Body
	if req.TemplateName != "" {
		templates, err := s.store.List(ctx, s.tenantID)
		if err != nil {
			return nil, fmt.Errorf("error listing message templates: %w", err)
		}
		body = ""
		for _, t := range templates {
			if t.Name == req.TemplateName {
				body = t.Body
				break
			}
		}
		if body == "" {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Template %s not found", req.TemplateName))
		}
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("body", "Either a template name or a message body is required")
	}
	return &dto.TemplatePreview{
		Rendered:  RenderMessage(body, req.Recipient, MessageContext{EventName: req.EventName}),
		Variables: TemplateVariables(body),
	}, nil
}
