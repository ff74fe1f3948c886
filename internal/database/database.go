// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/logging"
)

// DB wraps the DuckDB connection holding the raw event stream that reports
// are computed from.
type DB struct {
	conn          *sql.DB
	cfg           *config.DatabaseConfig
	jsonAvailable bool
}

// New opens the event store and initializes its schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s",
		cfg.Path, numThreads, cfg.MaxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// Conn returns the underlying SQL database connection for the query engine.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// IsJSONAvailable reports whether the json extension loaded. Breakdowns and
// property filters need it.
func (db *DB) IsJSONAvailable() bool {
	return db.jsonAvailable
}

// Path returns the configured database path.
func (db *DB) Path() string {
	return db.cfg.Path
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()
	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// initialize loads extensions and creates tables and indexes.
func (db *DB) initialize() error {
	db.loadExtensions()

	if err := db.createTables(); err != nil {
		return err
	}
	if err := db.createIndexes(); err != nil {
		return err
	}

	if db.cfg.SeedDemoData {
		ctx, cancel := schemaContext()
		defer cancel()
		if err := db.SeedDemoEvents(ctx, time.Now().UTC()); err != nil {
			logging.Warn().Err(err).Msg("Demo event seeding failed")
		}
	}
	return nil
}

// loadExtensions loads the json extension. A failure is logged and leaves
// breakdown queries unavailable.
func (db *DB) loadExtensions() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "LOAD json;"); err != nil {
		if _, installErr := db.conn.ExecContext(ctx, "INSTALL json; LOAD json;"); installErr != nil {
			logging.Warn().Err(installErr).Msg("DuckDB json extension unavailable, breakdowns disabled")
			return
		}
	}
	db.jsonAvailable = true
}
