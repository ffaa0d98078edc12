package config

import (
	"log"
	"os"
	"time"

	"github.com/flashgen/flashgen-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Database *gorm.DB

// Connect opens the database and runs migrations. DB_URL selects Postgres;
// without it a local SQLite file is used so development needs no setup.
func Connect() error {
	var err error

	gormLogger := logger.New(
		log.New(loggerWriter{}, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	dbURL := os.Getenv("DB_URL")
	if dbURL != "" {
		Database, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{Logger: gormLogger})
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "flashgen.db"
		}
		Database, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"), &gorm.Config{Logger: gormLogger})
	}
	if err != nil {
		panic("failed to connect database")
	}

	err = Migrate(Database)
	if err != nil {
		panic("failed to auto migrate database")
	}

	return nil
}

// Migrate runs all automigrations. Keep the model list in one place.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.GenerationSession{},
		&models.Flashcard{},
		&models.AuditEvent{},
	)
}

// loggerWriter satisfies io.Writer for the GORM logger but delegates to log.Printf
type loggerWriter struct{}

func (loggerWriter) Write(p []byte) (int, error) {
	log.Printf("%s", p)
	return len(p), nil
}
