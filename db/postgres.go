// api/db/postgres.go
package db

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
)

var DB *gorm.DB

func InitPostgres() error {
	dsn := viper.GetString("postgres.dsn")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// The DAOs map gorm.ErrDuplicatedKey to per-resource conflict
		// errors; without translation pgx surfaces raw pgconn errors.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(viper.GetInt("postgres.maxOpenConns"))
	sqlDB.SetMaxIdleConns(viper.GetInt("postgres.maxIdleConns"))
	sqlDB.SetConnMaxLifetime(viper.GetDuration("postgres.connMaxLifetime"))

	if err := db.AutoMigrate(
		&model.Zone{},
		&model.Institute{},
		&model.User{},
		&model.Course{},
		&model.Video{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	DB = db
	logger.Info("Successfully connected to Postgres")
	return nil
}

func ClosePostgres() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Error("Error accessing connection pool on close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing Postgres connection", zap.Error(err))
	}
}
