package repos

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/annothub/annothub-backend/internal/db"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
)

// testDB opens a private in-memory database migrated with the full
// schema. The DSN is keyed by test name so parallel tests never share
// state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func testLog() *logger.Logger { return logger.NewNop() }
