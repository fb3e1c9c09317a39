package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/backend"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// ProxyResources are the backend resources reachable through /api/proxy.
var ProxyResources = map[string]bool{
	"event-medias":                     true,
	"event-sponsors":                   true,
	"event-sponsors-join":              true,
	"event-polls":                      true,
	"event-poll-options":               true,
	"event-poll-responses":             true,
	"whatsapp-messages":                true,
	"executive-committee-team-members": true,
	"user-profiles":                    true,
}

var proxyAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// ProxyBackend is what the proxy and upload handlers need from the backend
// client. *backend.Client implements it.
type ProxyBackend interface {
	TenantID() string
	Raw(ctx context.Context, req backend.Request) (*backend.Response, error)
	Stream(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*http.Response, error)
}

// ProxyController forwards admin UI calls to the backend, adding the tenant
// and the service token.
type ProxyController struct {
	api     ProxyBackend
	uploads *UploadController
}

// NewProxyController creates a new proxy controller
func NewProxyController(api ProxyBackend, uploads *UploadController) *ProxyController {
	return &ProxyController{api: api, uploads: uploads}
}

// ProxyPath joins resource and the URL-encoded slug segments.
func ProxyPath(resource string, slug []string) string {
	var b strings.Builder
	b.WriteString(resource)
	for _, s := range slug {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// IsListRequest reports whether a request targets a collection: a GET or
// POST whose path carries no numeric id.
func IsListRequest(method, path string) bool {
	if method != http.MethodGet && method != http.MethodPost {
		return false
	}
	return !numericSegment.MatchString("/" + path)
}

// ProxyQuery copies q and adds tenantId.equals for list requests unless the
// caller already filtered by tenant.
func ProxyQuery(q url.Values, method, path, tenantID string) url.Values {
	out := url.Values{}
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	if IsListRequest(method, path) && !out.Has(backend.TenantFilter) {
		out.Set(backend.TenantFilter, tenantID)
	}
	return out
}

// injectTenantID sets tenantId on a JSON object body. Other bodies are
// returned unchanged.
func injectTenantID(body []byte, tenantID string) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if len(trimmed) > 0 && !json.Valid(trimmed) {
			return nil, apperrors.NewBadRequestError("Invalid JSON in request body")
		}
		return body, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, apperrors.NewBadRequestError("Invalid JSON in request body")
	}
	obj["tenantId"] = tenantID
	return json.Marshal(obj)
}

func splitSlug(path string) []string {
	var slug []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			slug = append(slug, s)
		}
	}
	return slug
}

// Forward godoc
// @Summary Proxy to the backend API
// @Description Forwards the request to the backend resource, adding tenantId.equals to list requests and tenantId to JSON bodies. GET responses carry X-Total-Count.
// @Tags proxy
// @Security SessionAuth
// @Param resource path string true "Backend resource" Enums(event-medias, event-sponsors, event-sponsors-join, event-polls, event-poll-options, event-poll-responses, whatsapp-messages, executive-committee-team-members, user-profiles)
// @Param path path string false "Resource sub-path"
// @Success 200 {object} interface{} "Backend response"
// @Failure 405 {string} string "Method not allowed"
// @Failure 500 {object} map[string]string "Proxy failure"
// @Router /proxy/{resource}/{path} [get]
// @Router /proxy/{resource}/{path} [post]
// @Router /proxy/{resource}/{path} [put]
// @Router /proxy/{resource}/{path} [patch]
// @Router /proxy/{resource}/{path} [delete]
func (pc *ProxyController) Forward(c *gin.Context) {
	resource := c.Param("resource")
	if !ProxyResources[resource] {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Unknown proxy resource %q", resource)})
		return
	}
	slug := splitSlug(c.Param("path"))

	if resource == "event-medias" && len(slug) == 1 && (slug[0] == "upload" || slug[0] == "upload-multiple") {
		pc.uploads.Upload(c, slug[0])
		return
	}

	method := c.Request.Method
	if !methodAllowed(method) {
		c.Header("Allow", strings.Join(proxyAllowedMethods, ", "))
		c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", method)
		return
	}

	path := ProxyPath(resource, slug)
	req := backend.Request{
		Method: method,
		Path:   path,
		Query:  ProxyQuery(c.Request.URL.Query(), method, path, pc.api.TenantID()),
	}

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}
		body, err := injectTenantID(raw, pc.api.TenantID())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Body = body
		req.ContentType = backend.ContentTypeJSON
		if method == http.MethodPatch {
			req.ContentType = backend.ContentTypeMergePatch
			if ct := c.GetHeader("Content-Type"); strings.Contains(ct, "json") {
				req.ContentType = ct
			}
		}
	}

	resp, err := pc.api.Raw(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.ErrNotConfigured.Error()})
			return
		}
		logger.Error().Err(err).Str("method", method).Str("path", path).Msg("Proxy request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}

	if method == http.MethodGet {
		if total := resp.Header.Get(backend.TotalCountHeader); total != "" {
			c.Header(backend.TotalCountHeader, total)
		}
		c.Data(resp.Status, "application/json; charset=utf-8", resp.Body)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	c.Data(resp.Status, contentType, resp.Body)
}

func methodAllowed(method string) bool {
	for _, m := range proxyAllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}
