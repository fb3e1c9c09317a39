package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

// BcryptCost is used when hashing new admin passwords.
const BcryptCost = 12

// AdminRole is the role carried by sessions issued at sign-in.
const AdminRole = "ADMIN"

// HashPassword hashes a password with BcryptCost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Authenticator checks sign-in credentials against the configured admin.
type Authenticator struct {
	email        string
	passwordHash string
}

// NewAuthenticator creates an Authenticator for a single admin account.
func NewAuthenticator(email, passwordHash string) *Authenticator {
	return &Authenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
	}
}

// Authenticate returns the session user for valid credentials.
func (a *Authenticator) Authenticate(email, password string) (dto.SessionUser, error) {
	if a.email == "" || a.passwordHash == "" {
		return dto.SessionUser{}, apperrors.ErrInvalidCredentials
	}
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	passOK := CheckPassword(a.passwordHash, password)
	if !emailOK || !passOK {
		return dto.SessionUser{}, apperrors.ErrInvalidCredentials
	}
	return dto.SessionUser{UserID: a.email, Email: a.email, Role: AdminRole}, nil
}
