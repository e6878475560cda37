package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// DB wraps the otelsql-instrumented MySQL connection used for console state
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// NewDB opens a MySQL connection with OpenTelemetry instrumentation
func NewDB(ctx context.Context, dsn, serviceName string, logger zerolog.Logger) (*DB, error) {
	driverName, err := otelsql.Register("mysql",
		otelsql.WithAttributes(
			attribute.String("db.system", "mysql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(
		attribute.String("db.system", "mysql"),
		attribute.String("service.name", serviceName),
	)); err != nil {
		logger.Warn().Err(err).Msg("failed to register otelsql stats metrics")
	}

	return Wrap(db, logger), nil
}

// Wrap adopts an already opened connection
func Wrap(sqlDB *sql.DB, logger zerolog.Logger) *DB {
	return &DB{DB: sqlDB, logger: logger}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// InitSchema executes the statements of schemaSQL one by one
func (db *DB) InitSchema(ctx context.Context, schemaSQL string) error {
	statements := SplitSQLStatements(schemaSQL)

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w\nStatement: %s", i+1, err, stmt)
		}
	}

	db.logger.Info().Int("statements", len(statements)).Msg("database schema initialized")
	return nil
}

// SplitSQLStatements drops "--" comment lines and returns the non-empty
// statements between semicolons
func SplitSQLStatements(schema string) []string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(schema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
	}

	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
