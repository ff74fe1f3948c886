// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema and seeding statements.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the event table. Timestamps are stored as naive UTC.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (db *DB) getTableCreationQueries() []string {
	properties := "JSON"
	if !db.jsonAvailable {
		properties = "VARCHAR"
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			profile_id VARCHAR NOT NULL,
			session_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			properties %s
		);`, properties),
	}
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range []string{
		`CREATE INDEX IF NOT EXISTS idx_events_name_created ON events(name, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_events_profile ON events(profile_id, created_at);`,
	} {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
