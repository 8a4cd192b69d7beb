package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop-management-backend/config"
)

// pool sizes one *sql.DB.
type pool struct {
	name    string
	maxOpen int
	maxIdle int
}

// requestPool serves the per-request transactions.
func requestPool(cfg *config.Config) pool {
	n := cfg.Database.MaxOpenConns
	if n <= 0 {
		n = 25
	}
	return pool{name: "request", maxOpen: n, maxIdle: min(n, 10)}
}

// sequencerPool serves the invoice counter upsert. It must stay apart from the
// request pool: a sale asks for a number while its transaction already holds a
// request connection and lot locks.
func sequencerPool(cfg *config.Config) pool {
	n := cfg.Database.SequencerConns
	if n <= 0 {
		n = 4
	}
	return pool{name: "sequencer", maxOpen: n, maxIdle: n}
}

// Connect opens the request pool. The caller owns the handle and closes it with Close.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return open(cfg, requestPool(cfg))
}

// ConnectSequencer opens the small pool that only runs single-statement
// invoice number upserts.
func ConnectSequencer(cfg *config.Config) (*gorm.DB, error) {
	return open(cfg, sequencerPool(cfg))
}

func open(cfg *config.Config, p pool) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogLevel() == slog.LevelDebug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", p.name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s database handle: %w", p.name, err)
	}
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", p.name, err)
	}

	slog.Info("database connected", "pool", p.name, "max_open", p.maxOpen, "host", cfg.Database.Host, "name", cfg.Database.Name)
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
