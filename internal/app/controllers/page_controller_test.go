package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/auth"
)

type fakeGallery struct {
	albums  []dto.GalleryAlbum
	photos  map[string][]dto.GalleryPhoto
	deleted []string
}

func (f *fakeGallery) ListAlbums() ([]dto.GalleryAlbum, error) { return f.albums, nil }

func (f *fakeGallery) ListPhotos(album string) ([]dto.GalleryPhoto, error) {
	if strings.Contains(album, ".") {
		return nil, apperrors.NewValidationError("album", "invalid album name")
	}
	return f.photos[album], nil
}

func (f *fakeGallery) UploadPhotos(album string, files []*multipart.FileHeader) ([]dto.GalleryPhoto, error) {
	return nil, errors.New("not used")
}

func (f *fakeGallery) DeletePhoto(album, name string) error {
	f.deleted = append(f.deleted, album+"/"+name)
	return nil
}

const testAdminEmail = "admin@example.org"

func pageFixture(t *testing.T) (*gin.Engine, *fakeGallery, *auth.JWTService) {
	t.Helper()

	templates, err := LoadTemplates(filepath.Join("..", "..", "..", "web", "templates"))
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	content := t.TempDir()
	if err := os.WriteFile(filepath.Join(content, "landing.md"), []byte("# Welcome\nline one\nline two\n\n<script>alert(1)</script>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "sk_test", SessionTTL: time.Hour, TokenIssuer: "eventadmin"})
	gallery := &fakeGallery{
		albums: []dto.GalleryAlbum{{Name: "summer-gala", Title: "Summer Gala", PhotoCount: 1}},
		photos: map[string][]dto.GalleryPhoto{
			"summer-gala": {{Name: "a.jpg", Album: "summer-gala", URL: "/photos/summer-gala/a.jpg", Size: 2048}},
		},
	}
	pc := NewPageController(templates, gallery, auth.NewAuthenticator(testAdminEmail, hash), jwtService, PageConfig{ContentPath: content})

	am := middleware.NewAuthMiddleware(jwtService)
	r := gin.New()
	pages := r.Group("", am.OptionalSession())
	pages.GET("/", pc.Landing)
	pages.GET("/about", pc.About)
	pages.GET("/gallery", pc.Gallery)
	pages.GET("/gallery/:album", pc.Album)
	pages.GET("/sign-in", pc.SignInForm)
	pages.POST("/sign-in", pc.SignIn)
	pages.POST("/sign-out", pc.SignOut)
	admin := pages.Group("/admin", am.SessionAuth(), am.RoleRequired(auth.AdminRole))
	admin.GET("", pc.Admin)
	admin.POST("/gallery/:album/:name/delete", pc.AdminDeletePhoto)
	return r, gallery, jwtService
}

func sessionCookie(t *testing.T, jwtService *auth.JWTService) *http.Cookie {
	t.Helper()
	token, _, err := jwtService.GenerateSessionToken(dto.SessionUser{UserID: testAdminEmail, Email: testAdminEmail, Role: auth.AdminRole})
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                     DefaultAfterSignIn,
		"/admin/gallery":       "/admin/gallery",
		"/gallery?x=1":         "/gallery?x=1",
		"https://evil.example": DefaultAfterSignIn,
		"//evil.example/admin": DefaultAfterSignIn,
		"/\\evil.example":      DefaultAfterSignIn,
		"admin":                DefaultAfterSignIn,
		"javascript:alert(1)":  DefaultAfterSignIn,
	}
	for in, want := range tests {
		if got := SafeRedirect(in); got != want {
			t.Errorf("SafeRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderMarkdownHardWrapsAndEscapesHTML(t *testing.T) {
	html, err := RenderMarkdown([]byte("first\nsecond\n\n<b>raw</b>\n"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(html)
	if !strings.Contains(out, "first<br>") && !strings.Contains(out, "first<br />") {
		t.Errorf("missing hard wrap: %s", out)
	}
	if strings.Contains(out, "<b>raw</b>") {
		t.Errorf("raw HTML passed through: %s", out)
	}
}

func TestLandingRendersMarkdown(t *testing.T) {
	r, _, _ := pageFixture(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h1>Welcome</h1>") {
		t.Errorf("markdown heading missing: %s", body)
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("script tag rendered unescaped")
	}
	if !strings.Contains(body, `href="/sign-in"`) {
		t.Error("signed-out nav should link to sign-in")
	}
}

func TestMissingContentIs404(t *testing.T) {
	r, _, _ := pageFixture(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAlbumPage(t *testing.T) {
	r, _, jwtService := pageFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gallery/summer-gala", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/photos/summer-gala/a.jpg") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "/delete") {
		t.Error("delete buttons shown without a session")
	}

	req := httptest.NewRequest(http.MethodGet, "/gallery/summer-gala", nil)
	req.AddCookie(sessionCookie(t, jwtService))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "/admin/gallery/summer-gala/a.jpg/delete") {
		t.Error("admins should see delete buttons")
	}

	for _, path := range []string{"/gallery/empty", "/gallery/..bad"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignInSetsSessionCookie(t *testing.T) {
	r, _, jwtService := pageFixture(t)
	w := postForm(r, "/sign-in", url.Values{
		"email":        {testAdminEmail},
		"password":     {"s3cret-pass"},
		"redirect_url": {"/admin?tab=gallery"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/admin?tab=gallery" {
		t.Errorf("Location = %q", loc)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	if session == nil || !session.HttpOnly {
		t.Fatalf("session cookie missing or not HttpOnly: %+v", session)
	}
	claims, err := jwtService.ValidateToken(session.Value)
	if err != nil || claims.Email != testAdminEmail {
		t.Errorf("cookie token invalid: %v %+v", err, claims)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	r, _, _ := pageFixture(t)
	w := postForm(r, "/sign-in", url.Values{
		"email":        {testAdminEmail},
		"password":     {"wrong"},
		"redirect_url": {"https://evil.example"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Invalid email or password.") {
		t.Error("error message missing")
	}
	if strings.Contains(body, "evil.example") {
		t.Error("unsafe redirect echoed back into the form")
	}
	if !strings.Contains(body, `value="`+testAdminEmail+`"`) {
		t.Error("email should be kept in the form")
	}

	w = postForm(r, "/sign-in", url.Values{"email": {"not-an-email"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("incomplete form: status = %d, want 400", w.Code)
	}
}

func TestSignInFormRedirectsSignedInAdmin(t *testing.T) {
	r, _, jwtService := pageFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/sign-in?redirect_url=/admin", nil)
	req.AddCookie(sessionCookie(t, jwtService))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Errorf("got %d to %q", w.Code, w.Header().Get("Location"))
	}
}

func TestAdminRequiresSession(t *testing.T) {
	r, _, jwtService := pageFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/sign-in?redirect_url=%2Fadmin") {
		t.Fatalf("got %d to %q", w.Code, w.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(sessionCookie(t, jwtService))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Summer Gala") {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}

func TestAdminDeletePhoto(t *testing.T) {
	r, gallery, jwtService := pageFixture(t)
	w := postForm(r, "/admin/gallery/summer-gala/a.jpg/delete", url.Values{}, sessionCookie(t, jwtService))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if len(gallery.deleted) != 1 || gallery.deleted[0] != "summer-gala/a.jpg" {
		t.Errorf("deleted = %v", gallery.deleted)
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	r, _, _ := pageFixture(t)
	w := postForm(r, "/sign-out", url.Values{})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("got %d to %q", w.Code, w.Header().Get("Location"))
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.MaxAge >= 0 {
			t.Errorf("session cookie not expired: %+v", c)
		}
	}
}
