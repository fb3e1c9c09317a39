package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/auth"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// DefaultAfterSignIn is where a successful sign-in lands without a
// redirect_url.
const DefaultAfterSignIn = "/admin"

// Raw HTML in markdown is escaped since WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts markdown source to HTML.
func RenderMarkdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// LoadTemplates parses every page template under dir.
func LoadTemplates(dir string) (*template.Template, error) {
	funcs := template.FuncMap{
		"albumTitle": services.AlbumTitle,
		"year":       func() int { return time.Now().Year() },
		"kb":         func(n int64) int64 { return (n + 1023) / 1024 },
	}
	return template.New("pages").Funcs(funcs).ParseGlob(filepath.Join(dir, "*.html"))
}

// PageConfig carries what the page controller needs besides its services.
type PageConfig struct {
	ContentPath   string
	SecureCookies bool
}

// PageController renders the public site, the gallery and the admin
// sign-in flow.
type PageController struct {
	templates      *template.Template
	galleryService services.GalleryService
	authenticator  *auth.Authenticator
	jwtService     *auth.JWTService
	config         PageConfig
}

// NewPageController creates a new PageController
func NewPageController(
	templates *template.Template,
	galleryService services.GalleryService,
	authenticator *auth.Authenticator,
	jwtService *auth.JWTService,
	config PageConfig,
) *PageController {
	return &PageController{
		templates:      templates,
		galleryService: galleryService,
		authenticator:  authenticator,
		jwtService:     jwtService,
		config:         config,
	}
}

func (pc *PageController) render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["SignedIn"] = ctx.GetString(middleware.EmailKey) != ""
	data["SessionEmail"] = ctx.GetString(middleware.EmailKey)
	// The layout's sign-out form needs a token on every page.
	data["CSRFToken"] = middleware.CSRFToken(ctx)

	var buf bytes.Buffer
	if err := pc.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error().Err(err).Str("template", name).Msg("Failed to render page")
		ctx.String(http.StatusInternalServerError, "internal server error")
		return
	}
	ctx.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (pc *PageController) renderError(ctx *gin.Context, status int, message string) {
	pc.render(ctx, status, "error.html", gin.H{"Title": http.StatusText(status), "Status": status, "Message": message})
}

func (pc *PageController) markdownPage(ctx *gin.Context, file, title string) {
	src, err := os.ReadFile(filepath.Join(pc.config.ContentPath, file))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			pc.renderError(ctx, http.StatusNotFound, "Page not found")
			return
		}
		logger.Error().Err(err).Str("file", file).Msg("Failed to read page content")
		pc.renderError(ctx, http.StatusInternalServerError, "This page could not be loaded")
		return
	}
	body, err := RenderMarkdown(src)
	if err != nil {
		logger.Error().Err(err).Str("file", file).Msg("Failed to render markdown")
		pc.renderError(ctx, http.StatusInternalServerError, "This page could not be loaded")
		return
	}
	pc.render(ctx, http.StatusOK, "content.html", gin.H{"Title": title, "Body": body})
}

// Landing renders the home page from content/landing.md.
func (pc *PageController) Landing(ctx *gin.Context) {
	pc.markdownPage(ctx, "landing.md", "Giving Hope")
}

// About renders content/about.md.
func (pc *PageController) About(ctx *gin.Context) {
	pc.markdownPage(ctx, "about.md", "About Us")
}

// Gallery lists albums.
func (pc *PageController) Gallery(ctx *gin.Context) {
	albums, err := pc.galleryService.ListAlbums()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list gallery albums")
		pc.renderError(ctx, http.StatusInternalServerError, "The gallery could not be loaded")
		return
	}
	pc.render(ctx, http.StatusOK, "gallery.html", gin.H{"Title": "Gallery", "Albums": albums})
}

// Album lists the photos of one album.
func (pc *PageController) Album(ctx *gin.Context) {
	album := ctx.Param("album")
	photos, err := pc.galleryService.ListPhotos(album)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidationFailed) {
			pc.renderError(ctx, http.StatusNotFound, "Album not found")
			return
		}
		logger.Error().Err(err).Str("album", album).Msg("Failed to list gallery photos")
		pc.renderError(ctx, http.StatusInternalServerError, "The album could not be loaded")
		return
	}
	if len(photos) == 0 {
		pc.renderError(ctx, http.StatusNotFound, "Album not found")
		return
	}
	pc.render(ctx, http.StatusOK, "album.html", gin.H{
		"Title":  services.AlbumTitle(album),
		"Album":  album,
		"Photos": photos,
	})
}

// SafeRedirect accepts only same-site absolute paths.
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return DefaultAfterSignIn
	}
	if u, err := url.Parse(target); err != nil || u.Host != "" || u.Scheme != "" {
		return DefaultAfterSignIn
	}
	return target
}

// SignInForm shows the sign-in form, or skips it for a signed-in admin.
func (pc *PageController) SignInForm(ctx *gin.Context) {
	redirect := SafeRedirect(ctx.Query("redirect_url"))
	if ctx.GetString(middleware.EmailKey) != "" {
		ctx.Redirect(http.StatusFound, redirect)
		return
	}
	pc.render(ctx, http.StatusOK, "sign_in.html", gin.H{
		"Title":       "Sign in",
		"RedirectURL": redirect,
	})
}

// SignIn checks the posted credentials and sets the session cookie.
func (pc *PageController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	formError := func(status int, message string) {
		pc.render(ctx, status, "sign_in.html", gin.H{
			"Title":       "Sign in",
			"RedirectURL": SafeRedirect(req.RedirectURL),
			"Email":       req.Email,
			"Error":       message,
		})
	}
	if err := ctx.ShouldBind(&req); err != nil {
		formError(http.StatusBadRequest, "Please enter your email and password.")
		return
	}

	user, err := pc.authenticator.Authenticate(req.Email, req.Password)
	if err != nil {
		logger.Warn().Str("email", req.Email).Str("ip", ctx.ClientIP()).Msg("Admin sign-in failed")
		formError(http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, expiresAt, err := pc.jwtService.GenerateSessionToken(user)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue session token")
		formError(http.StatusInternalServerError, "Sign-in is unavailable right now.")
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.SessionCookie, token, int(time.Until(expiresAt).Seconds()), "/", "", pc.config.SecureCookies, true)
	logger.Info().Str("email", user.Email).Msg("Admin signed in")
	ctx.Redirect(http.StatusSeeOther, SafeRedirect(req.RedirectURL))
}

// SignOut clears the session cookie.
func (pc *PageController) SignOut(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.SessionCookie, "", -1, "/", "", pc.config.SecureCookies, true)
	ctx.Redirect(http.StatusSeeOther, "/")
}

// Admin renders the dashboard with the gallery management forms.
func (pc *PageController) Admin(ctx *gin.Context) {
	pc.renderAdmin(ctx, http.StatusOK, ctx.Query("notice"), "")
}

func (pc *PageController) renderAdmin(ctx *gin.Context, status int, notice, errMsg string) {
	albums, err := pc.galleryService.ListAlbums()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list gallery albums")
		errMsg = "The gallery could not be loaded"
	}
	pc.render(ctx, status, "admin.html", gin.H{
		"Title":  "Admin",
		"Albums": albums,
		"Notice": notice,
		"Error":  errMsg,
	})
}

// AdminUploadPhotos handles the dashboard's gallery upload form.
func (pc *PageController) AdminUploadPhotos(ctx *gin.Context) {
	album := strings.TrimSpace(ctx.PostForm("album"))
	form, err := ctx.MultipartForm()
	if err != nil || len(form.File["photos"]) == 0 {
		pc.renderAdmin(ctx, http.StatusBadRequest, "", "Please select at least one photo.")
		return
	}
	photos, err := pc.galleryService.UploadPhotos(album, form.File["photos"])
	if err != nil {
		_, detail := middleware.ErrorDetailFor(err)
		pc.renderAdmin(ctx, http.StatusBadRequest, "", detail.Message)
		return
	}
	notice := fmt.Sprintf("Uploaded %d photo(s) to %s", len(photos), services.AlbumTitle(album))
	ctx.Redirect(http.StatusSeeOther, "/admin?notice="+url.QueryEscape(notice))
}

// AdminDeletePhoto handles the dashboard's delete buttons.
func (pc *PageController) AdminDeletePhoto(ctx *gin.Context) {
	if err := pc.galleryService.DeletePhoto(ctx.Param("album"), ctx.Param("name")); err != nil {
		_, detail := middleware.ErrorDetailFor(err)
		pc.renderAdmin(ctx, http.StatusBadRequest, "", detail.Message)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/admin?notice="+url.QueryEscape("Photo deleted"))
}
