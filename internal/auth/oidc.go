package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
)

// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
var ErrOIDCDisabled = errors.New("oidc authentication is disabled")

// OIDCConfig holds OpenID Connect (OIDC) configuration for authentication.
type OIDCConfig struct {
	Enabled bool
	// ProviderURL is the issuer used for discovery (e.g., "https://accounts.google.com").
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Scopes default to openid, profile and email.
	Scopes []string
	// AdminEmails are granted the admin role. Everyone else logs in as editor.
	AdminEmails []string
}

// OIDCConfigFrom maps the configuration file section.
func OIDCConfigFrom(c config.OIDCAuth) *OIDCConfig {
	return &OIDCConfig{
		Enabled:      c.Enabled,
		ProviderURL:  c.ProviderURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		AdminEmails:  c.AdminEmails,
	}
}

// OIDCProvider handles OIDC authentication.
type OIDCProvider struct {
	config   *OIDCConfig
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
	db       *gorm.DB
}

// NewOIDCProvider creates a new OIDC provider.
func NewOIDCProvider(ctx context.Context, config *OIDCConfig, db *gorm.DB) (*OIDCProvider, error) {
	if !config.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, config.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		config:   config,
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: config.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		db: db,
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// GetAuthURL returns the OIDC authorization URL with state token.
func (p *OIDCProvider) GetAuthURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// HandleCallback exchanges the code, verifies the ID token and returns the linked account.
func (p *OIDCProvider) HandleCallback(ctx context.Context, code string) (*models.User, string, error) {
	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, "", ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return nil, "", fmt.Errorf("failed to parse claims: %w", err)
	}

	user, err := upsertOIDCUser(p.db, claims.Sub, claims.Email, p.config.AdminEmails)
	if err != nil {
		return nil, "", err
	}

	return user, rawIDToken, nil
}

// upsertOIDCUser finds or creates the account for subject and refreshes its email and role.
func upsertOIDCUser(db *gorm.DB, subject, email string, adminEmails []string) (*models.User, error) {
	role := models.RoleEditor

	for _, e := range adminEmails {
		if email != "" && strings.EqualFold(e, email) {
			role = models.RoleAdmin
			break
		}
	}

	var user models.User

	err := db.Where("external_id = ? AND auth_source = ?", subject, models.AuthSourceOIDC).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Active:     true,
			Username:   email,
			Email:      email,
			Role:       role,
			AuthSource: models.AuthSourceOIDC,
			ExternalID: subject,
		}

		if err = db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	case !user.Active:
		return nil, ErrUserAccountDisabled
	default:
		user.Email = email
		user.Role = role

		if err = db.Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return &user, nil
}

// GetLogoutURL constructs the provider's logout URL, or returns an empty string when
// the provider publishes no end_session_endpoint.
func (p *OIDCProvider) GetLogoutURL(idToken, postLogoutRedirectURI string) string {
	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}

	if err := p.provider.Claims(&claims); err != nil || claims.EndSessionEndpoint == "" {
		return ""
	}

	q := url.Values{}
	if idToken != "" {
		q.Set("id_token_hint", idToken)
	}

	q.Set("post_logout_redirect_uri", postLogoutRedirectURI)

	return claims.EndSessionEndpoint + "?" + q.Encode()
}

// StateStore remembers issued OIDC state tokens until they are used or expire.
type StateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewStateStore returns a store whose tokens live for ttl.
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{states: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

// Add remembers state.
func (s *StateStore) Add(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state] = s.now().Add(s.ttl)
}

// Consume reports whether state was issued and is still valid, and forgets it either way.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	delete(s.states, state)

	return ok && s.now().Before(exp)
}

// Cleanup drops expired tokens.
func (s *StateStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for state, exp := range s.states {
		if now.After(exp) {
			delete(s.states, state)
		}
	}
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *StateStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
