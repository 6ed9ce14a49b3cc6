// Package dbtest builds throwaway gorm databases for package tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMockDB returns a postgres-dialect gorm handle backed by sqlmock. Any
// statement without a matching expectation fails the test.
func NewMockDB(t testing.TB) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

// NewSQLiteDB returns an isolated in-memory database with every model
// migrated. A single connection keeps concurrent transactions serialised the
// way row locks would on postgres.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open sqlite database: %s", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("could not access sqlite connection: %s", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := gormDB.AutoMigrate(Models()...); err != nil {
		t.Fatalf("error migration: %s", err)
	}
	return gormDB
}

func Models() []any {
	return models.All()
}
