package config

import "time"

// LocalDBAuth enables username/password login against the users table.
type LocalDBAuth struct {
	Enabled bool
}

// LDAPAuth holds the directory login settings.
type LDAPAuth struct {
	Enabled      bool
	Host         string
	Port         int
	UseSSL       bool
	UseTLS       bool
	SkipVerify   bool
	BindDN       string
	BindPassword string
	BaseDN       string
	UserFilter   string // e.g. (uid={username})
	AdminGroupDN string // members of this group become admins, others editors
	EmailAttr    string
	Timeout      int // seconds
}

// OIDCAuth holds the single sign-on settings.
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AdminEmails  []string // emails granted the admin role, others become editors
}

// JWT holds the API token settings.
type JWT struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TOTP holds the second factor settings.
type TOTP struct {
	Issuer string
}

// SeedAdmin is the account created when the users table is empty.
type SeedAdmin struct {
	Username string
	Password string
	Email    string
}

// Auth implements admin authentication settings.
type Auth struct {
	LocalDB   LocalDBAuth
	LDAP      LDAPAuth
	OIDC      OIDCAuth
	JWT       JWT
	TOTP      TOTP
	SeedAdmin SeedAdmin
}
