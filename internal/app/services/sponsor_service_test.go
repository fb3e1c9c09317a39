package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

func sponsor(id int64, name, typ string) dto.EventSponsorDTO {
	return dto.EventSponsorDTO{ID: int64Ptr(id), Name: name, Type: typ}
}

func TestFilterAvailableSponsorsExcludesAssigned(t *testing.T) {
	all := []dto.EventSponsorDTO{
		sponsor(1, "Acme", "Gold"),
		sponsor(2, "Globex", "Silver"),
		sponsor(3, "Initech", "Bronze"),
		sponsor(4, "Umbrella", "Gold"),
	}
	assigned := map[int64]struct{}{1: {}, 2: {}}

	got := FilterAvailableSponsors(all, assigned, "", 0, 10)

	if len(got.Content) != 2 || got.Content[0].SponsorID() != 3 || got.Content[1].SponsorID() != 4 {
		t.Fatalf("available = %+v, want sponsors 3 and 4", got.Content)
	}
	if got.AssignedCount != 2 || got.TotalSponsors != 4 || got.TotalElements != 2 || got.TotalPages != 1 {
		t.Errorf("unexpected counters: %+v", got)
	}
}

func TestFilterAvailableSponsorsSearchAndPaging(t *testing.T) {
	company := "Umbrella Corporation"
	all := []dto.EventSponsorDTO{
		sponsor(1, "Acme", "Gold"),
		sponsor(2, "Globex", "gold"),
		sponsor(3, "Initech", "Bronze"),
		{ID: int64Ptr(4), Name: "U Corp", Type: "Silver", CompanyName: &company},
	}

	got := FilterAvailableSponsors(all, nil, "GOLD", 0, 1)
	if got.TotalElements != 2 || got.TotalPages != 2 || len(got.Content) != 1 {
		t.Fatalf("search by type: %+v", got)
	}

	got = FilterAvailableSponsors(all, map[int64]struct{}{1: {}}, "umbrella", 0, 10)
	if len(got.Content) != 1 || got.Content[0].SponsorID() != 4 {
		t.Errorf("search by company: %+v", got.Content)
	}

	got = FilterAvailableSponsors(all, nil, "", math.MaxInt64/10+1, 10)
	if len(got.Content) != 0 || got.TotalElements != 4 {
		t.Errorf("page far past the end: %+v", got)
	}
}

func TestAvailableSponsorsAgainstBackend(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/event-sponsors-join/event/7", http.StatusOK, map[string]interface{}{
		"content": []map[string]interface{}{
			{"id": 100, "sponsor": map[string]interface{}{"id": 1}},
			{"id": 101, "sponsor": map[string]interface{}{"id": 2, "name": "Globex"}},
		},
	})
	api.reply(http.MethodGet, "/api/event-sponsors/1", http.StatusOK, sponsor(1, "Acme", "Gold"))
	api.reply(http.MethodGet, "/api/event-sponsors", http.StatusOK, []dto.EventSponsorDTO{
		sponsor(1, "Acme", "Gold"),
		sponsor(2, "Globex", "Silver"),
		sponsor(3, "Initech", "Bronze"),
		sponsor(4, "Umbrella", "Gold"),
	})

	svc := NewSponsorService(client)
	got, err := svc.AvailableSponsors(context.Background(), 7, 0, 20, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, sp := range got.Content {
		if id := sp.SponsorID(); id == 1 || id == 2 {
			t.Errorf("assigned sponsor %d listed as available", id)
		}
	}
	if len(got.Content) != 2 {
		t.Errorf("got %d available sponsors, want 2", len(got.Content))
	}

	list := api.requests(http.MethodGet, "/api/event-sponsors")
	if len(list) != 1 || list[0].Query.Get("tenantId.equals") != testTenant || list[0].Query.Get("sort") != "name,asc" {
		t.Errorf("sponsor list query = %+v", list)
	}
	if n := len(api.requests(http.MethodGet, "/api/event-sponsors/1")); n != 1 {
		t.Errorf("expected one detail lookup for the id-only sponsor, got %d", n)
	}
}

func TestListEventSponsorsFallsBackToFilterQuery(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/event-sponsors-join", http.StatusOK, []map[string]interface{}{
		{"id": 5, "sponsor": map[string]interface{}{"id": 9, "name": "Acme"}},
	})

	joins, err := NewSponsorService(client).ListEventSponsors(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(joins) != 1 || joins[0].Sponsor.Name != "Acme" {
		t.Fatalf("joins = %+v", joins)
	}
	fallback := api.requests(http.MethodGet, "/api/event-sponsors-join")
	if len(fallback) != 1 || fallback[0].Query.Get("eventId.equals") != "3" {
		t.Errorf("fallback query = %+v", fallback)
	}
}

func TestCreateSponsorValidationAndDefaults(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPost, "/api/event-sponsors", http.StatusCreated, sponsor(10, "Acme", "Gold"))
	svc := NewSponsorService(client)

	_, err := svc.CreateSponsor(context.Background(), dto.SponsorRequest{Name: "  ", Type: "Gold"})
	if msg, ok := apperrors.UserMessage(err); !ok || msg != MsgSponsorNameRequired {
		t.Errorf("blank name: got %v", err)
	}
	_, err = svc.CreateSponsor(context.Background(), dto.SponsorRequest{Name: "Acme"})
	if msg, ok := apperrors.UserMessage(err); !ok || msg != MsgSponsorTypeRequired {
		t.Errorf("blank type: got %v", err)
	}

	if _, err := svc.CreateSponsor(context.Background(), dto.SponsorRequest{Name: " Acme ", Type: "Gold", WebsiteURL: " "}); err != nil {
		t.Fatal(err)
	}
	posts := api.requests(http.MethodPost, "/api/event-sponsors")
	if len(posts) != 1 {
		t.Fatalf("expected one create call, got %d", len(posts))
	}
	body := decodeBody(t, posts[0])
	if body["name"] != "Acme" || body["isActive"] != true || body["priorityRanking"] != float64(1) {
		t.Errorf("defaults not applied: %v", body)
	}
	if v, present := body["websiteUrl"]; !present || v != nil {
		t.Errorf("blank URL should be sent as null, got %v (present=%v)", v, present)
	}
	if body["tenantId"] != testTenant {
		t.Errorf("tenantId = %v", body["tenantId"])
	}
}

func TestUpdateSponsorUsesMergePatch(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPatch, "/api/event-sponsors/4", http.StatusOK, sponsor(4, "Acme", "Gold"))
	svc := &sponsorServiceImpl{api: client, now: func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }}

	if _, err := svc.UpdateSponsor(context.Background(), 4, dto.SponsorRequest{Name: "Acme", Type: "Gold"}); err != nil {
		t.Fatal(err)
	}
	patches := api.requests(http.MethodPatch, "/api/event-sponsors/4")
	if len(patches) != 1 || patches[0].ContentType != "application/merge-patch+json" {
		t.Fatalf("patch requests = %+v", patches)
	}
	body := decodeBody(t, patches[0])
	if body["id"] != float64(4) || body["updatedAt"] != "2025-01-01T00:00:00Z" {
		t.Errorf("patch body = %v", body)
	}
	if _, present := body["createdAt"]; present {
		t.Errorf("createdAt must not be overwritten: %v", body)
	}
}

func TestGetSponsorNotFound(t *testing.T) {
	_, client := newFakeAPI(t)
	_, err := NewSponsorService(client).GetSponsor(context.Background(), 99)
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
