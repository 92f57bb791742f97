package auth

import (
	"strings"

	"laptop-inventory-backend/internal/config"
	"laptop-inventory-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks credentials against the single admin from config.
// The password is hashed once at startup and only the hash is kept.
type Authenticator struct {
	admin  models.User
	secret string
}

func NewAuthenticator(cfg *config.Config) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(strings.ToLower(cfg.AdminUsername))
	return &Authenticator{
		admin: models.User{
			ID:           username,
			Username:     username,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		},
		secret: cfg.JWTSecret,
	}, nil
}

// Verify returns the user for valid credentials.
func (a *Authenticator) Verify(username, password string) (*models.User, bool) {
	if strings.TrimSpace(strings.ToLower(username)) != a.admin.Username {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.admin.PasswordHash), []byte(password)); err != nil {
		return nil, false
	}
	u := a.admin
	return &u, true
}

func (a *Authenticator) Secret() string {
	return a.secret
}
