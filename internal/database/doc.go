// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package database provides the DuckDB event store that report queries run against.

# Schema

A single events table holds the raw stream:

	events(id, name, profile_id, session_id, created_at TIMESTAMP, properties JSON)

created_at is naive UTC. properties carries breakdown and filter dimensions
read with json_extract_string. Indexes cover (name, created_at),
(session_id, created_at) and (profile_id, created_at), which serve the
series, sankey and retention queries respectively.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	err = db.InsertEvents(ctx, []database.Event{{Name: "signup", SessionID: "s1"}})

Query construction lives in the query package; this package owns the
connection, schema and writes.

# Demo Data

With database.seed_demo_data set, an empty store is filled with a
deterministic month of sessions so that every chart type has data.
*/
package database
