package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"clinic_queue/internal/config"
	"clinic_queue/internal/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDatabase opens a Postgres connection. Driver errors are translated so unique violations
// surface as gorm.ErrDuplicatedKey.
func ConnectDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// TestingDSN builds a DSN from TEST_DB_* variables. It returns "" when TEST_DB_HOST is unset.
func TestingDSN() string {
	if os.Getenv("TEST_DB_HOST") == "" {
		return ""
	}
	return config.DatabaseConfig{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     os.Getenv("TEST_DB_PORT"),
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		Name:     os.Getenv("TEST_DB_NAME"),
	}.DSN()
}

// Migrate creates the tables and the partial unique index that allows at most one in-progress
// entry per queue.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Doctor{}, &models.Patient{}, &models.Queue{}, &models.QueueEntry{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_queue_in_progress
		ON queue_entries (queue_id) WHERE status = 'in-progress'`).Error
	if err != nil {
		return fmt.Errorf("create in-progress index: %w", err)
	}
	return nil
}

// InitRedis connects to Redis and pings it. A nil client and nil error mean caching is disabled.
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
