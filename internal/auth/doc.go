// Package auth provides authentication and authorization for the admin panel and the write API.
//
// Accounts live in the users table and authenticate through one of three sources:
//   - Local database passwords hashed with Argon2id
//   - LDAP/Active Directory bind, with admins recognised by membership of a configured group
//   - OpenID Connect, with admins recognised by a configured list of e-mail addresses
//
// A local account may carry a TOTP secret, in which case a login needs a one-time code after the password.
//
// # Authorization
//
// Every account has a role. Roles map to a fixed set of permissions:
//   - admin: everything, including account management
//   - editor: content, uploads, leads and exports
//
// Service.HasPermission always re-reads the account, so deactivating a user or changing a role
// takes effect on the next request.
//
// # API tokens
//
// TokenIssuer signs short-lived HS256 JWTs for API clients. The web middleware accepts either the
// session cookie or an "Authorization: Bearer" header.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Post("/api/hero",
//	    auth.RequirePermission(authService, auth.PermContentEdit),
//	    handler,
//	)
package auth
