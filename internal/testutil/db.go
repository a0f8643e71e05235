package testutil

import (
	"io"
	"testing"

	"anoa.com/betpoints/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory sqlite database with the full schema
// migrated. The pool is limited to one connection so every query sees the
// same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.PointType{},
		&model.UserBalance{},
		&model.Transaction{},
		&model.Rank{},
		&model.UserRank{},
		&model.EarningRule{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Prediction{},
		&model.Bet{},
		&model.UserStats{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// NewTestLogger returns a logger that swallows all output.
func NewTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
