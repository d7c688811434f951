package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/soart-backend/internal/platform/logger"
)

// DatabaseFile is the name of the embedded database inside the data dir.
const DatabaseFile = "soart.sqlite"

type Config struct {
	// DataDir holds the embedded database file. Created when missing.
	DataDir string
	// DSN overrides the embedded file. A postgres:// or postgresql:// DSN
	// selects the Postgres driver; anything else is handed to SQLite.
	DSN string
}

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
}

func NewService(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService")

	dialector, driver, target, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// One writer at a time; WAL lets readers proceed alongside it.
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	serviceLog.Info("Database opened", "driver", driver, "target", target)
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

// AutoMigrate creates the canvases and settings tables when missing. Safe
// to run on every start.
func (s *Service) AutoMigrate() error {
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg Config) (gorm.Dialector, string, string, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn), "postgres", redactDSN(dsn), nil
	}
	if dsn == "" {
		dir := strings.TrimSpace(cfg.DataDir)
		if dir == "" {
			return nil, "", "", fmt.Errorf("database: data dir or DSN is required")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", "", fmt.Errorf("create data dir: %w", err)
		}
		path := filepath.Join(dir, DatabaseFile)
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
		return sqlite.Open(dsn), "sqlite", path, nil
	}
	return sqlite.Open(dsn), "sqlite", dsn, nil
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
