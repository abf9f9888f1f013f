package session

import (
	"database/sql"
	"errors"
	"time"
)

const sessionColumns = "id, dir, source_path, status, failed_stage, error_message, final_path, created_at, updated_at"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id           string
		dir          string
		sourcePath   sql.NullString
		statusStr    string
		failedStage  sql.NullString
		errorMessage sql.NullString
		finalPath    sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&dir,
		&sourcePath,
		&statusStr,
		&failedStage,
		&errorMessage,
		&finalPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:           id,
		Dir:          dir,
		SourcePath:   sourcePath.String,
		Status:       Status(statusStr),
		FailedStage:  failedStage.String,
		ErrorMessage: errorMessage.String,
		FinalPath:    finalPath.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		sess.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		sess.UpdatedAt = updated
	}
	return sess, nil
}

func scanArtifact(scanner interface{ Scan(dest ...any) error }) (Artifact, error) {
	var (
		art        Artifact
		kind       string
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&art.Seq, &art.Path, &kind, &art.Stage, &createdRaw); err != nil {
		return Artifact{}, err
	}
	art.Kind = Kind(kind)
	if created, err := parseTimeString(createdRaw.String); err == nil {
		art.CreatedAt = created
	}
	return art, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
