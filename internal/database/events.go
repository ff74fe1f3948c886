// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event is one tracked occurrence. Properties hold breakdown and filter
// dimensions such as country or browser.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	ProfileID  string         `json:"profile_id"`
	SessionID  string         `json:"session_id"`
	CreatedAt  time.Time      `json:"created_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// InsertEvents writes events in one transaction. Missing IDs are generated
// and CreatedAt is stored in UTC.
func (db *DB) InsertEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, name, profile_id, session_id, created_at, properties) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "insert statement")

	for i := range events {
		e := events[i]
		if e.Name == "" {
			return fmt.Errorf("event %d: name is required", i)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		props := "{}"
		if len(e.Properties) > 0 {
			b, err := json.Marshal(e.Properties)
			if err != nil {
				return fmt.Errorf("event %d: encode properties: %w", i, err)
			}
			props = string(b)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.ProfileID, e.SessionID, e.CreatedAt.UTC(), props); err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// CountEvents returns the number of stored events.
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// EventNames lists distinct event names, most frequent first.
func (db *DB) EventNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM events GROUP BY name ORDER BY COUNT(*) DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list event names: %w", err)
	}
	defer closeWithLog(rows, "event name rows")

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
