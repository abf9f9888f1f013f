package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dubber/internal/fileutil"
)

const (
	// LockFileName is the flock file guarding a session directory.
	LockFileName = ".session.lock"
	// ScratchDirName holds transient files removed when the workspace closes.
	ScratchDirName = ".scratch"
	// UploadStage is the stage name recorded for the imported source video.
	UploadStage = "upload"
)

var (
	// ErrLocked is returned when another process holds the session directory lock.
	ErrLocked = errors.New("session directory is locked by another process")
	// ErrMissingArtifact is returned when a stage hands back an empty or absent path.
	ErrMissingArtifact = errors.New("artifact missing")
)

// Workspace is the exclusively owned working directory of one running session.
// Artifacts recorded through it are appended to the catalog ledger in order.
type Workspace struct {
	ID  string
	Dir string

	store *Store
	lock  *flock.Flock

	mu        sync.Mutex
	artifacts []Artifact
	closed    bool
}

// Start creates a fresh session directory under sessionsDir, locks it, and
// registers the session in the catalog. Directories are never reused.
func Start(ctx context.Context, store *Store, sessionsDir, sourcePath string) (*Workspace, error) {
	if store == nil {
		return nil, errors.New("start session: nil store")
	}
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}

	id := uuid.NewString()
	dir := filepath.Join(sessionsDir, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		_ = os.RemoveAll(dir)
		return nil, ErrLocked
	}

	if _, err := store.Create(ctx, id, dir, sourcePath); err != nil {
		_ = lock.Unlock()
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return &Workspace{ID: id, Dir: dir, store: store, lock: lock}, nil
}

// Path joins name onto the session directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// ScratchDir returns the transient directory, creating it on first use.
func (w *Workspace) ScratchDir() (string, error) {
	dir := filepath.Join(w.Dir, ScratchDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	return dir, nil
}

// ImportSource copies the uploaded video into the session under its base name.
func (w *Workspace) ImportSource(ctx context.Context, sourcePath string) (Artifact, error) {
	base := filepath.Base(sourcePath)
	if base == "." || base == string(filepath.Separator) {
		return Artifact{}, fmt.Errorf("import source: invalid path %q", sourcePath)
	}
	dest := w.Path(base)
	if _, err := fileutil.Copy(sourcePath, dest); err != nil {
		return Artifact{}, fmt.Errorf("import source: %w", err)
	}
	return w.Record(ctx, KindVideo, UploadStage, dest)
}

// Record validates that path names a non-empty file and appends it to the ledger.
func (w *Workspace) Record(ctx context.Context, kind Kind, stage, path string) (Artifact, error) {
	if err := CheckArtifact(path); err != nil {
		return Artifact{}, err
	}
	art, err := w.store.AddArtifact(ctx, w.ID, Artifact{Path: path, Kind: kind, Stage: stage})
	if err != nil {
		return Artifact{}, err
	}
	w.mu.Lock()
	w.artifacts = append(w.artifacts, art)
	w.mu.Unlock()
	return art, nil
}

// Artifacts returns a copy of the artifacts recorded so far.
func (w *Workspace) Artifacts() []Artifact {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Artifact, len(w.artifacts))
	copy(out, w.artifacts)
	return out
}

// Complete marks the session completed with its final artifact.
func (w *Workspace) Complete(ctx context.Context, finalPath string) error {
	return w.store.MarkCompleted(ctx, w.ID, finalPath)
}

// Fail records the failing stage on the session.
func (w *Workspace) Fail(ctx context.Context, status Status, stage, message string) error {
	return w.store.MarkFailed(ctx, w.ID, status, stage, message)
}

// Close removes the scratch directory and releases the directory lock.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := os.RemoveAll(filepath.Join(w.Dir, ScratchDirName)); err != nil {
		errs = append(errs, fmt.Errorf("remove scratch: %w", err))
	}
	if err := w.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("release session lock: %w", err))
	}
	return errors.Join(errs...)
}

// CheckArtifact reports ErrMissingArtifact unless path names an existing,
// non-empty regular file.
func CheckArtifact(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrMissingArtifact)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMissingArtifact, path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrMissingArtifact, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrMissingArtifact, path)
	}
	return nil
}

// Remove deletes a finished session's directory and catalog row. Sessions whose
// directory lock is still held by a running pipeline are refused.
func Remove(ctx context.Context, store *Store, id string) error {
	sess, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	if info, statErr := os.Stat(sess.Dir); statErr == nil && info.IsDir() {
		lock := flock.New(filepath.Join(sess.Dir, LockFileName))
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("check session lock: %w", err)
		}
		if !locked {
			return ErrLocked
		}
		removeErr := os.RemoveAll(sess.Dir)
		_ = lock.Unlock()
		if removeErr != nil {
			return fmt.Errorf("remove session directory: %w", removeErr)
		}
	}

	return store.Delete(ctx, id)
}
