// internal/infra/database/connection.go
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNoDatabaseURL = errors.New("database: DATABASE_URL is empty")

type DB struct {
	Client *sql.DB
}

// NewConnection opens a PostgreSQL pool from a lib/pq DSN or URL and pings it.
func NewConnection(ctx context.Context, databaseURL string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		return nil, ErrNoDatabaseURL
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	log.Named("database").Info("connected to PostgreSQL")
	return &DB{Client: db}, nil
}

// Migrate applies the embedded goose migrations.
func (d *DB) Migrate(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return errors.New("database: not connected")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("database: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, d.Client, "migrations"); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
