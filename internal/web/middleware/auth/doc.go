// Package auth provides the authentication middleware of the web application.
//
// The middleware resolves who is calling and never blocks a request by itself:
//   - A valid session cookie (with any second factor completed) identifies a browser user
//   - Otherwise an "Authorization: Bearer" JWT identifies an API client
//   - The resolved, still active account is stored in fiber.Locals under auth.LocalsUser
//   - Authenticated users visiting the login page are sent to the dashboard
//
// Route protection is left to auth.RequirePermission.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{Tokens: issuer, Users: auth.NewLocalProvider(db)}))
package auth
