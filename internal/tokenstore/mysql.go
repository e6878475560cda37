package tokenstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/db"
	"github.com/SigNoz/ecommerce-console/internal/metrics"
)

//go:embed schema.sql
var schemaSQL string

const accessTokenKey = "access_token"

// MySQLStore keeps the token as a row of console_settings
type MySQLStore struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

// NewMySQLStore returns a store on database
func NewMySQLStore(database *db.DB, m *metrics.AppMetrics) *MySQLStore {
	return &MySQLStore{db: database, metrics: m}
}

// Migrate creates the console_settings table if needed
func (s *MySQLStore) Migrate(ctx context.Context) error {
	return s.db.InitSchema(ctx, schemaSQL)
}

// Get returns the token, or "" when the row does not exist
func (s *MySQLStore) Get(ctx context.Context) (string, error) {
	start := time.Now()
	query := "SELECT setting_value FROM console_settings WHERE setting_key = ?"

	var token string
	err := s.db.QueryRowContext(ctx, query, accessTokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		s.metrics.RecordDBQuery(ctx, "SELECT", "console_settings", start, true)
		return "", nil
	}
	s.metrics.RecordDBQuery(ctx, "SELECT", "console_settings", start, err == nil)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// Set upserts the token row
func (s *MySQLStore) Set(ctx context.Context, token string) error {
	start := time.Now()
	query := "INSERT INTO console_settings (setting_key, setting_value) VALUES (?, ?) ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)"

	_, err := s.db.ExecContext(ctx, query, accessTokenKey, token)
	s.metrics.RecordDBQuery(ctx, "INSERT", "console_settings", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Clear deletes the token row
func (s *MySQLStore) Clear(ctx context.Context) error {
	start := time.Now()
	query := "DELETE FROM console_settings WHERE setting_key = ?"

	_, err := s.db.ExecContext(ctx, query, accessTokenKey)
	s.metrics.RecordDBQuery(ctx, "DELETE", "console_settings", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
