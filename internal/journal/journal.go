// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package journal records raw captures and their decodes in a SQLite file
// so they can be replayed later.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrEmptyCapture is returned when appending an entry without pulses
var ErrEmptyCapture = errors.New("capture has no pulses")

// Entry is one journaled capture. Protocol and Fields are empty when no
// protocol decoded the pulses.
type Entry struct {
	ID         string
	ReceivedAt time.Time
	Pulses     []uint32
	Protocol   string
	Fields     map[string]any
}

// Decoded reports whether a protocol matched the capture
func (e Entry) Decoded() bool {
	return e.Protocol != ""
}

// Journal is a capture store backed by SQLite in WAL mode
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal at path.
//
// The database is configured with:
//   - WAL mode so replay can read while raw_log writes
//   - a single connection, SQLite allows one writer
//   - a 5 second busy timeout
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append stores an entry and returns its ID. A UUIDv7 is assigned when the
// entry has no ID, and the current time when ReceivedAt is zero.
func (j *Journal) Append(ctx context.Context, e Entry) (string, error) {
	if len(e.Pulses) == 0 {
		return "", ErrEmptyCapture
	}
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}

	var protoID, fields sql.NullString
	if e.Protocol != "" {
		protoID = sql.NullString{String: e.Protocol, Valid: true}
	}
	if e.Fields != nil {
		data, err := json.Marshal(e.Fields)
		if err != nil {
			return "", fmt.Errorf("failed to marshal fields: %w", err)
		}
		fields = sql.NullString{String: string(data), Valid: true}
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO captures (id, received_at, pulses, protocol, fields) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.ReceivedAt.UnixMicro(), protocol.FormatPulses(e.Pulses), protoID, fields)
	if err != nil {
		return "", fmt.Errorf("failed to insert capture %s: %w", e.ID, err)
	}
	return e.ID, nil
}

// List returns every entry ordered by receive time
func (j *Journal) List(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, received_at, pulses, protocol, fields FROM captures ORDER BY received_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			received int64
			pulses   string
			protoID  sql.NullString
			fields   sql.NullString
		)
		if err := rows.Scan(&e.ID, &received, &pulses, &protoID, &fields); err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		e.ReceivedAt = time.UnixMicro(received)
		e.Pulses, err = protocol.ParsePulses(pulses)
		if err != nil {
			return nil, fmt.Errorf("capture %s: %w", e.ID, err)
		}
		e.Protocol = protoID.String
		if fields.Valid {
			if err := json.Unmarshal([]byte(fields.String), &e.Fields); err != nil {
				return nil, fmt.Errorf("capture %s: failed to unmarshal fields: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate captures: %w", err)
	}
	return entries, nil
}

// Count returns the number of journaled captures
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count captures: %w", err)
	}
	return n, nil
}
