package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

func TestTemplateVariables(t *testing.T) {
	got := TemplateVariables("Hi {{name}}, {{ event }} on {{date}}. Bye {{name}}")
	if want := []string{"name", "event", "date"}; !reflect.DeepEqual(got, want) {
		t.Errorf("variables = %v, want %v", got, want)
	}
}

func TestSaveAndListTemplates(t *testing.T) {
	ctx := context.Background()
	svc := NewTemplateService(repositories.NewMemoryTemplateStore(), testTenant)

	if _, err := svc.SaveTemplate(ctx, dto.TemplateRequest{Name: "Bad Name", Category: "UTILITY", Body: "x"}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("bad name: err = %v", err)
	}
	if _, err := svc.SaveTemplate(ctx, dto.TemplateRequest{Name: "promo", Category: "SPAM", Body: "x"}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("bad category: err = %v", err)
	}

	saved, err := svc.SaveTemplate(ctx, dto.TemplateRequest{Name: "gala_invite", Category: "MARKETING", Body: "Dear {{name}}, join us at {{event}}"})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Language != "en_US" || saved.Components[0].Text != "Dear {{name}}, join us at {{event}}" {
		t.Errorf("saved = %+v", saved)
	}

	list, err := svc.ListTemplates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "gala_invite" {
		t.Errorf("list = %+v", list)
	}
}

func TestPreviewTemplate(t *testing.T) {
	ctx := context.Background()
	svc := NewTemplateService(repositories.NewMemoryTemplateStore(), testTenant)
	if _, err := svc.SaveTemplate(ctx, dto.TemplateRequest{Name: "welcome", Category: "UTILITY", Body: "Welcome {{firstName}} to {{event}}"}); err != nil {
		t.Fatal(err)
	}

	p, err := svc.Preview(ctx, dto.TemplatePreviewRequest{TemplateName: "welcome", Recipient: dto.Recipient{Name: "Ravi Kumar"}, EventName: "Onam"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Rendered != "Welcome Ravi to Onam" {
		t.Errorf("rendered = %q", p.Rendered)
	}

	if _, err := svc.Preview(ctx, dto.TemplatePreviewRequest{TemplateName: "missing"}); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("missing template: err = %v", err)
	}
	if _, err := svc.Preview(ctx, dto.TemplatePreviewRequest{}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("empty preview: err = %v", err)
	}
}
