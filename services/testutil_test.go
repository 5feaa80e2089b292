package services

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"rageroom-backend/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the service schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	admin   = Actor{UserID: "admin-1", Email: "admin@example.com", IsAdmin: true}
	ana     = Actor{UserID: "user-ana", Email: "ana@example.com"}
	bruno   = Actor{UserID: "user-bruno", Email: "bruno@example.com"}
	periods = AdmissionRule{Slots: []string{"morning", "afternoon"}, DailyCapacity: 2, AutoApproveFree: true}
)

func newTestBookingService(t *testing.T, rule AdmissionRule) *BookingService {
	t.Helper()
	return NewBookingService(NewGormBookingStore(newTestDB(t)), rule, true, nil, discardLogger())
}
