package auth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
)

// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
var ErrLDAPDisabled = errors.New("ldap authentication is disabled")

const memberOfAttr = "memberOf"

// LDAPConfig holds LDAP/Active Directory configuration for authentication.
type LDAPConfig struct {
	Enabled bool
	Host    string
	// Port is typically 389 for LDAP and 636 for LDAPS.
	Port       int
	UseSSL     bool
	UseTLS     bool
	SkipVerify bool
	// BindDN and BindPassword identify the service account used for searches.
	BindDN       string
	BindPassword string
	BaseDN       string
	// UserFilter is the search filter, {username} is replaced by the escaped login name.
	UserFilter string
	// AdminGroupDN grants the admin role to its members (read from memberOf). Everyone else is an editor.
	AdminGroupDN string
	UsernameAttr string
	EmailAttr    string
	// Timeout is the connection timeout in seconds.
	Timeout int
}

// LDAPConfigFrom maps the configuration file section.
func LDAPConfigFrom(c config.LDAPAuth) *LDAPConfig {
	return &LDAPConfig{
		Enabled:      c.Enabled,
		Host:         c.Host,
		Port:         c.Port,
		UseSSL:       c.UseSSL,
		UseTLS:       c.UseTLS,
		SkipVerify:   c.SkipVerify,
		BindDN:       c.BindDN,
		BindPassword: c.BindPassword,
		BaseDN:       c.BaseDN,
		UserFilter:   c.UserFilter,
		AdminGroupDN: c.AdminGroupDN,
		EmailAttr:    c.EmailAttr,
		Timeout:      c.Timeout,
	}
}

// LDAPProvider handles LDAP authentication.
type LDAPProvider struct {
	config *LDAPConfig
	db     *gorm.DB
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(config *LDAPConfig, db *gorm.DB) (*LDAPProvider, error) {
	if !config.Enabled {
		return nil, ErrLDAPDisabled
	}

	if config.UsernameAttr == "" {
		config.UsernameAttr = "uid"
	}

	if config.EmailAttr == "" {
		config.EmailAttr = "mail"
	}

	if config.UserFilter == "" {
		config.UserFilter = "(" + config.UsernameAttr + "={username})"
	}

	if config.Timeout == 0 {
		config.Timeout = 10
	}

	return &LDAPProvider{
		config: config,
		db:     db,
	}, nil
}

// Connect establishes a connection to the LDAP server.
func (p *LDAPProvider) Connect() (*ldap.Conn, error) {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))

	ldapURL := "ldap://" + hostPort
	if p.config.UseSSL {
		ldapURL = "ldaps://" + hostPort
	}

	var tlsConfig *tls.Config
	if p.config.UseSSL || p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipVerify, //nolint:gosec // opt-in for lab directories
			ServerName:         p.config.Host,
		}
	}

	conn, err := ldap.DialURL(ldapURL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if !p.config.UseSSL && p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	if p.config.Timeout > 0 {
		conn.SetTimeout(time.Duration(p.config.Timeout) * time.Second)
	}

	return conn, nil
}

// Authenticate binds as the user and returns the matching local account, creating it on first login.
func (p *LDAPProvider) Authenticate(username, password string) (*models.User, error) {
	if password == "" {
		// an empty password would be an unauthenticated bind, which most servers accept
		return nil, ErrInvalidPassword
	}

	conn, err := p.Connect()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if err = p.bindService(conn); err != nil {
		return nil, err
	}

	entry, err := p.searchUserEntry(conn, username)
	if err != nil {
		return nil, err
	}

	if err = conn.Bind(entry.DN, password); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	email := entry.GetAttributeValue(p.config.EmailAttr)
	role := p.roleFor(entry.GetAttributeValues(memberOfAttr))

	return p.upsertLDAPUser(username, entry.DN, email, role)
}

func (p *LDAPProvider) bindService(conn *ldap.Conn) error {
	if p.config.BindDN == "" {
		return nil
	}

	if err := conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
		return fmt.Errorf("failed to bind with service account: %w", err)
	}

	return nil
}

func (p *LDAPProvider) roleFor(groups []string) models.Role {
	if p.config.AdminGroupDN == "" {
		return models.RoleEditor
	}

	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), p.config.AdminGroupDN) {
			return models.RoleAdmin
		}
	}

	return models.RoleEditor
}

// searchUserEntry searches LDAP for the given username and returns a single entry.
func (p *LDAPProvider) searchUserEntry(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	userFilter := strings.ReplaceAll(p.config.UserFilter, "{username}", ldap.EscapeFilter(username))
	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		p.config.Timeout,
		false,
		userFilter,
		[]string{p.config.UsernameAttr, p.config.EmailAttr, memberOfAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

// upsertLDAPUser creates or updates the account linked to userDN. Disabled accounts stay disabled.
func (p *LDAPProvider) upsertLDAPUser(username, userDN, email string, role models.Role) (*models.User, error) {
	var user models.User

	err := p.db.Where("external_id = ? AND auth_source = ?", userDN, models.AuthSourceLDAP).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Active:     true,
			Username:   username,
			Email:      email,
			Role:       role,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: userDN,
		}

		if err = p.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		return &user, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	user.Email = email
	user.Role = role

	if err = p.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

// TestConnection tests the LDAP server connection and bind credentials.
func (p *LDAPProvider) TestConnection() error {
	conn, err := p.Connect()
	if err != nil {
		return err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	return p.bindService(conn)
}
