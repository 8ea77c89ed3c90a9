package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config controls the Postgres connection pool for the metadata store.
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel
}

// Connect opens the metadata database, creating the target database first
// when it does not exist yet.
func Connect(cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	log = log.With().Str("component", "database").Logger()

	if cfg.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	if err := ensureDatabaseExists(cfg.DSN, log); err != nil {
		return nil, fmt.Errorf("bootstrap target database: %w", err)
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = gormlogger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open metadata database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access underlying sql pool: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	log.Info().Msg("metadata database connected")
	return db, nil
}

// bootstrapTarget derives the admin DSN and target database name from the
// configured DSN. ok is false when no bootstrap applies: non-URL DSN formats
// and connections straight to the postgres maintenance database.
func bootstrapTarget(dsn string) (adminDSN, dbName string, ok bool) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", "", false
	}

	dbName = strings.TrimPrefix(u.Path, "/")
	if dbName == "" || dbName == "postgres" {
		return "", "", false
	}

	admin := *u
	admin.Path = "/postgres"
	return admin.String(), dbName, true
}

func ensureDatabaseExists(dsn string, log zerolog.Logger) error {
	adminDSN, dbName, ok := bootstrapTarget(dsn)
	if !ok {
		return nil
	}

	adminDB, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return err
	}
	defer adminDB.Close()

	var exists bool
	err = adminDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if exists {
		return nil
	}

	if _, err := adminDB.Exec("CREATE DATABASE " + quoteIdentifier(dbName)); err != nil {
		return err
	}
	log.Info().Str("database", dbName).Msg("created target database")
	return nil
}

func quoteIdentifier(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
