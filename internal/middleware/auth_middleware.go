package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/auth"
)

// Context keys set by SessionAuth.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
	RoleKey   = "roleType"
)

// SignInPath is where HTML requests without a session are sent.
const SignInPath = "/sign-in"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// sessionToken reads the session from the cookie, then from a bearer header.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); header != "" {
		if token, err := auth.ExtractBearerToken(header); err == nil {
			return token
		}
	}
	return ""
}

// wantsHTML reports whether the caller is a browser navigating to a page.
func wantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// SessionAuth requires a valid admin session. Browsers are redirected to the
// sign-in page with a redirect_url back; API callers get 401.
func (m *AuthMiddleware) SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			if wantsHTML(c) {
				target := SignInPath + "?redirect_url=" + url.QueryEscape(c.Request.URL.RequestURI())
				c.Redirect(http.StatusFound, target)
				c.Abort()
				return
			}

			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			switch {
			case token == "":
				errorDetail.WithDetails("Session missing")
			case errors.Is(err, auth.ErrExpiredToken):
				errorDetail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Authentication required").WithDetails("Session has expired")
			default:
				errorDetail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication required").WithDetails("Invalid session")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// OptionalSession loads the session when present without requiring one, so
// public pages can show admin controls.
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := m.jwtService.ValidateToken(sessionToken(c)); err == nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(EmailKey, claims.Email)
			c.Set(RoleKey, claims.Role)
		}
		c.Next()
	}
}

// RoleRequired middleware to check if user has required role
func (m *AuthMiddleware) RoleRequired(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		if role == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}
		if role != requiredRole {
			HandleAPIError(c, apperrors.NewForbiddenError("You don't have sufficient permissions for this operation"))
			c.Abort()
			return
		}
		c.Next()
	}
}
