package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens a connection to the configured store dialect. MariaDB
// shares the MySQL wire protocol so both select the mysql driver; the
// distinction exists in configuration for operators, not in the driver
// layer. It returns a *gorm.DB or an error if the connection or the
// initial ping fails.
func Connect(cfg Config) (*gorm.DB, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("invalid database config: dbType=%q connectionString set=%v", cfg.DBType, cfg.ConnectionString != "")
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	// Suppress GORM's own query logging; the scheduler's structured
	// logger carries reconciliation-level detail instead.
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DBType {
	case Postgres:
		db, err = gorm.Open(postgres.Open(cfg.ConnectionString), gormConfig)
	case MySql, MariaDB:
		db, err = gorm.Open(mysql.Open(cfg.ConnectionString), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported dbType: %s", cfg.DBType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
