// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/flameguard/flameguard-site/internal/config"
)

// DefaultSQLitePath is used when DB.Path is empty.
const DefaultSQLitePath = "./data/flameguard.db"

// Create builds the gorm Data Source Name for the configured engine.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host,
			db.Port,
			db.User,
			db.Password,
			db.Name,
		)
		if db.Extras != "" {
			out += " " + db.Extras
		}

		return out
	case config.EngineSQLite, "":
		if db.Path == "" {
			return DefaultSQLitePath
		}

		return db.Path
	default:
		out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
		)
		if db.Extras != "" {
			out += "?" + db.Extras
		}

		return out
	}
}

// URI builds the connection string the fiber session storages expect.
// MySQL storage takes the driver DSN, Postgres storage a postgres:// URL.
func URI(cfg *config.Config) string {
	db := cfg.DB

	if db.GormEngine != config.EnginePostgres {
		return Create(cfg)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + strconv.Itoa(db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}
