// Package store opens the persistent record store selected by configuration.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/config"
	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/JonMunkholm/scidesk/internal/store/postgres"
	"github.com/JonMunkholm/scidesk/internal/store/sqlite"
)

// Open connects to the configured driver and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "":
		return postgres.Open(ctx, postgres.Options{
			URL:             cfg.URL,
			MaxConns:        int32(cfg.MaxConns),
			MinConns:        int32(cfg.MinConns),
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
	case "sqlite":
		return sqlite.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
