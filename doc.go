// Package main provides the entry point of flameguard-site.
// It serves the public website of a fire alarm systems vendor, the JSON API
// used by its scripts and integrations, and a session-authenticated admin
// panel for editing content and processing contact requests. Data lives in
// MySQL, PostgreSQL or SQLite through gorm.
package main
