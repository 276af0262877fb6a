package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"admissions-service/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ForeignKeyer is implemented by models whose table references another one.
// Each entry is the clause passed to CREATE TABLE ... FOREIGN KEY.
type ForeignKeyer interface {
	ForeignKeys() []string
}

func DSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
	)
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	db, err := NewWithDSN(ctx, DSN(cfg))
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)
	return db, nil
}

// NewWithDSN creates a new database connection with a custom DSN (useful for testing)
func NewWithDSN(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected successfully")
	return db, nil
}

func configurePool(db *bun.DB, cfg config.DatabaseConfig) {
	maxOpen := withDefault(cfg.MaxOpenConns, 25)
	maxIdle := withDefault(cfg.MaxIdleConns, 10)
	connMaxLifetime := withDefault(cfg.ConnMaxLifetime, 300)
	connMaxIdleTime := withDefault(cfg.ConnMaxIdleTime, 60)

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(connMaxIdleTime) * time.Second)

	slog.Info("database pool configured",
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
		"conn_max_lifetime_seconds", connMaxLifetime,
		"conn_max_idle_time_seconds", connMaxIdleTime,
	)
}

func withDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func Close(db *bun.DB) {
	if db != nil {
		_ = db.Close()
	}
}

// RunMigrations creates the tables for models in order. Referenced tables
// must come before the tables that reference them.
func RunMigrations(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		q := db.NewCreateTable().
			Model(model).
			IfNotExists()

		if fk, ok := model.(ForeignKeyer); ok {
			for _, clause := range fk.ForeignKeys() {
				q = q.ForeignKey(clause)
			}
		}

		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	slog.Info("database migrations completed successfully", "tables", len(models))
	return nil
}
