package seed

import (
	"context"
	"io"
	"testing"

	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/rs/zerolog"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	store := repositories.NewMemoryTemplateStore()
	ctx := context.Background()
	lgr := zerolog.New(io.Discard)

	for i := 0; i < 2; i++ {
		if err := CreateDefaultData(ctx, store, "tenant_demo_001", lgr); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	got, err := store.List(ctx, "tenant_demo_001")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(DefaultTemplates) {
		t.Fatalf("got %d templates, want %d", len(got), len(DefaultTemplates))
	}
	if other, _ := store.List(ctx, "someone_else"); len(other) != 0 {
		t.Errorf("templates leaked to another tenant: %d", len(other))
	}
}

func TestCreateDefaultDataSkipsMissingTenant(t *testing.T) {
	store := repositories.NewMemoryTemplateStore()
	if err := CreateDefaultData(context.Background(), store, "", zerolog.New(io.Discard)); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.List(context.Background(), ""); len(got) != 0 {
		t.Errorf("expected no templates, got %d", len(got))
	}
}
