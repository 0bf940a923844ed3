package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/postgres"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// openStore connects to the configured database and applies migrations.
func openStore(ctx context.Context, db config.DatabaseConfig) (storage.Store, error) {
	if err := db.Validate(); err != nil {
		return nil, err
	}

	switch db.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, db.URL, postgres.Options{
			MaxOpenConns:    db.MaxOpenConns,
			MaxIdleConns:    db.MaxIdleConns,
			ConnMaxLifetime: db.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", db.Driver)
		return store, nil
	default:
		store, err := sqlite.New(db.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", db.Driver, "database", db.Path)
		return store, nil
	}
}

func migrateStore(db config.DatabaseConfig, down bool) error {
	if err := db.Validate(); err != nil {
		return err
	}
	if db.Driver == config.DriverPostgres {
		return postgres.Migrate(db.URL, down)
	}
	if err := os.MkdirAll(filepath.Dir(db.Path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return sqlite.Migrate(db.Path, down)
}

// dialBroker returns nil when AMQP is not configured or unreachable; events
// then only reach local websocket subscribers.
func dialBroker(c config.AMQPConfig) *events.AMQPPublisher {
	if c.URL == "" {
		slog.Info("AMQP disabled, events stay in-process")
		return nil
	}
	pub, err := events.NewAMQPPublisher(c.URL, c.Exchange)
	if err != nil {
		slog.Warn("Failed to connect to AMQP broker, continuing without it", "error", err)
		return nil
	}
	slog.Info("AMQP publisher initialized", "exchange", c.Exchange)
	return pub
}
