package services

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

func TestExtractUploadedURL(t *testing.T) {
	tests := map[string]string{
		`{"data":[{"fileUrl":"https://cdn/a.png","url":"https://cdn/b.png"}]}`: "https://cdn/a.png",
		`{"data":[{"url":"https://cdn/b.png"}]}`:                               "https://cdn/b.png",
		`{"fileUrl":"https://cdn/c.png"}`:                                      "https://cdn/c.png",
		`{"url":"https://cdn/d.png"}`:                                          "https://cdn/d.png",
		`{"id":4}`:                                                             "",
		`null`:                                                                 "",
		`not json`:                                                             "",
	}
	for body, want := range tests {
		if got := ExtractUploadedURL([]byte(body)); got != want {
			t.Errorf("ExtractUploadedURL(%s) = %q, want %q", body, got, want)
		}
	}
}

func TestUploadProfileImagePatchesMember(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPost, "/api/event-medias/upload", http.StatusOK, map[string]interface{}{
		"data": []map[string]string{{"fileUrl": "https://cdn.example.org/m7.png"}},
	})
	api.reply(http.MethodPatch, "/api/executive-committee-team-members/7", http.StatusOK, dto.ExecutiveCommitteeMemberDTO{ID: int64Ptr(7)})

	res, err := NewCommitteeService(client).UploadProfileImage(context.Background(), 7, multipartFiles(t, "face.png")[0])
	if err != nil {
		t.Fatal(err)
	}
	if res.ProfileImageURL != "https://cdn.example.org/m7.png" || res.MemberID != 7 {
		t.Errorf("result = %+v", res)
	}

	upload := api.requests(http.MethodPost, "/api/event-medias/upload")[0]
	q := upload.Query
	if q.Get("eventId") != "0" || q.Get("executiveTeamMemberID") != "7" || q.Get("isTeamMemberProfileImage") != "true" ||
		q.Get("isPublic") != "true" || q.Get("title") != "Team Member Profile Image - 7" || q.Get("tenantId") != testTenant {
		t.Errorf("upload query = %v", q)
	}
	_, params, err := mime.ParseMediaType(upload.ContentType)
	if err != nil {
		t.Fatal(err)
	}
	form, err := multipart.NewReader(bytes.NewReader(upload.Body), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(form.File["file"]) != 1 {
		t.Errorf("expected the image under the file field, got %v", form.File)
	}

	patch := decodeBody(t, api.requests(http.MethodPatch, "/api/executive-committee-team-members/7")[0])
	if patch["profileImageUrl"] != "https://cdn.example.org/m7.png" || patch["id"] != float64(7) {
		t.Errorf("patch = %v", patch)
	}
}

func TestUploadProfileImageWithoutURLLeavesMember(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPost, "/api/event-medias/upload", http.StatusOK, map[string]int{"id": 1})

	res, err := NewCommitteeService(client).UploadProfileImage(context.Background(), 3, multipartFiles(t, "face.png")[0])
	if err != nil {
		t.Fatal(err)
	}
	if res.ProfileImageURL != "" {
		t.Errorf("url = %q", res.ProfileImageURL)
	}
	if n := len(api.requests(http.MethodPatch, "/api/executive-committee-team-members/3")); n != 0 {
		t.Errorf("member must not be patched, got %d patches", n)
	}
}

func TestUploadProfileImageFailure(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPost, "/api/event-medias/upload", http.StatusBadRequest, map[string]string{"title": "Bad upload"})

	if _, err := NewCommitteeService(client).UploadProfileImage(context.Background(), 3, multipartFiles(t, "face.png")[0]); err == nil {
		t.Fatal("expected the upload error to surface")
	}
}

func TestUpdateMemberPathIDWins(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPatch, "/api/executive-committee-team-members/5", http.StatusOK, dto.ExecutiveCommitteeMemberDTO{ID: int64Ptr(5), Title: "Treasurer"})

	m, err := NewCommitteeService(client).UpdateMember(context.Background(), 5, map[string]interface{}{"id": 99, "title": "Treasurer"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Title != "Treasurer" {
		t.Errorf("member = %+v", m)
	}
	req := api.requests(http.MethodPatch, "/api/executive-committee-team-members/5")[0]
	body := decodeBody(t, req)
	if body["id"] != float64(5) || req.ContentType != "application/merge-patch+json" {
		t.Errorf("patch = %v (%s)", body, req.ContentType)
	}
}

func TestCommitteeMemberNotFound(t *testing.T) {
	_, client := newFakeAPI(t)
	svc := NewCommitteeService(client)

	if _, err := svc.GetMember(context.Background(), 42); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("get: err = %v", err)
	}
	if err := svc.DeleteMember(context.Background(), 42); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("delete: err = %v", err)
	}
}

func TestCreateMemberRequiresNames(t *testing.T) {
	_, client := newFakeAPI(t)
	_, err := NewCommitteeService(client).CreateMember(context.Background(), dto.ExecutiveCommitteeMemberDTO{FirstName: " ", LastName: "Nair", Title: "Secretary"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("err = %v", err)
	}
}
