package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MirrorDB is the session mirror database, nil while the mirror is off
var MirrorDB *gorm.DB

// ConnectMirrorDatabase opens the MySQL database that backs the session mirror
func ConnectMirrorDatabase(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	// Mirror writes are fire-and-forget, so slow statements only matter in dev
	level := logger.Error
	if cfg.IsDev() {
		level = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(buildDSN(cfg.Database)), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mirror database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	applyPool(sqlDB, cfg.Database)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping mirror database: %w", err)
	}

	MirrorDB = db

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"db":       cfg.Database.DBName,
		"max_open": cfg.Database.MaxOpen,
	}).Info("session mirror database connected")

	return db, nil
}

// applyPool sizes the pool for the mirror's small write-behind load
func applyPool(sqlDB *sql.DB, d DatabaseConfig) {
	sqlDB.SetMaxIdleConns(d.MaxIdle)
	sqlDB.SetMaxOpenConns(d.MaxOpen)
	sqlDB.SetConnMaxLifetime(d.ConnLifetime)
}

// buildDSN returns the database connection string. Mirror rows carry UTC expiry times.
func buildDSN(d DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
		d.PingTimeout,
	)
}

// CloseMirrorDatabase releases the mirror pool
func CloseMirrorDatabase() error {
	if MirrorDB == nil {
		return nil
	}
	sqlDB, err := MirrorDB.DB()
	if err != nil {
		return err
	}
	MirrorDB = nil
	return sqlDB.Close()
}

// MirrorHealth pings the mirror database within the configured timeout
func MirrorHealth(ctx context.Context, timeout time.Duration) error {
	if MirrorDB == nil {
		return fmt.Errorf("session mirror database not connected")
	}
	sqlDB, err := MirrorDB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
