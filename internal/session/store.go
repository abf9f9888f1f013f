package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a session ID is absent from the catalog.
var ErrNotFound = errors.New("session not found")

// Create records a new running session.
func (s *Store) Create(ctx context.Context, id, dir, sourcePath string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("create session: empty id")
	}
	timestamp := formatTime(time.Now())
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO sessions (id, dir, source_path, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, dir, nullableString(sourcePath), StatusRunning, timestamp, timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a session and its artifact ledger in creation order.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	artifacts, err := s.Artifacts(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Artifacts = artifacts
	return sess, nil
}

// List returns sessions newest first, optionally filtered by status. Artifact
// ledgers are not loaded.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Session, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + sessionColumns + " FROM sessions"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Artifacts returns the ledger for one session ordered by sequence.
func (s *Store) Artifacts(ctx context.Context, sessionID string) ([]Artifact, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, path, kind, stage, created_at FROM artifacts WHERE session_id = ? ORDER BY seq",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		art, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, rows.Err()
}

// AddArtifact appends an artifact to the session ledger and returns it with
// its assigned sequence number.
func (s *Store) AddArtifact(ctx context.Context, sessionID string, art Artifact) (Artifact, error) {
	ctx = ensureContext(ctx)
	if art.CreatedAt.IsZero() {
		art.CreatedAt = time.Now().UTC()
	}
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var next int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq), 0) + 1 FROM artifacts WHERE session_id = ?", sessionID,
		).Scan(&next); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO artifacts (session_id, seq, path, kind, stage, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, next, art.Path, art.Kind, art.Stage, formatTime(art.CreatedAt),
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE sessions SET updated_at = ? WHERE id = ?", formatTime(time.Now()), sessionID,
		); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		art.Seq = next
		return nil
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("record artifact: %w", err)
	}
	return art, nil
}

// MarkCompleted transitions a session to completed with its final artifact path.
func (s *Store) MarkCompleted(ctx context.Context, id, finalPath string) error {
	return s.updateStatus(ctx,
		"UPDATE sessions SET status = ?, final_path = ?, failed_stage = NULL, error_message = NULL, updated_at = ? WHERE id = ?",
		StatusCompleted, nullableString(finalPath), formatTime(time.Now()), id,
	)
}

// MarkFailed records the failing stage and message. status is normally
// StatusFailed or StatusBlocked.
func (s *Store) MarkFailed(ctx context.Context, id string, status Status, stage, message string) error {
	if status == "" || status == StatusRunning || status == StatusCompleted {
		status = StatusFailed
	}
	return s.updateStatus(ctx,
		"UPDATE sessions SET status = ?, failed_stage = ?, error_message = ?, updated_at = ? WHERE id = ?",
		status, nullableString(stage), nullableString(message), formatTime(time.Now()), id,
	)
}

func (s *Store) updateStatus(ctx context.Context, query string, args ...any) error {
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, args[len(args)-1])
	}
	return nil
}

// Delete removes a session row and its artifact ledger.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
