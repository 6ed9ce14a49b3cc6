package db

import (
	"database/sql"
	"log"

	"github.com/wasnasmay/altess-final-sub004/src/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDb opens the marketplace database on first use. Webhook handlers run
// their own transactions, so gorm's implicit per-write transaction is skipped.
func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	_db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Printf("Error connecting to database: %s\n", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	ConfigurePool(sqlDB)

	db = _db
	return _db
}

func ConfigurePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(config.DBMaxOpenConns())
	sqlDB.SetMaxIdleConns(config.DBMaxIdleConns())
	sqlDB.SetConnMaxLifetime(config.DBConnMaxLifetime())
}

func NewDB(newdb *gorm.DB) {
	db = newdb
}
