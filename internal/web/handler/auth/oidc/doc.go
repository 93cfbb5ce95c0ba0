// Package oidc provides handlers for OpenID Connect (OIDC) admin login.
//
// The flow includes:
//   - Login initiation with CSRF protection via state tokens
//   - Authorization callback handling with ID token verification
//   - Account provisioning from the email claim (admin role for configured emails)
//   - Logout with provider end session support
//
// Example usage:
//
//	oidc.Handler.Init(ctx, app, cfg, db)
//
//	// GET /auth/oidc/login    - Initiate OIDC login flow
//	// GET /auth/oidc/callback - Handle provider callback
//	// GET /auth/oidc/logout   - Logout and optionally end provider session
package oidc
