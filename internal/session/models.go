package session

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a dubbing session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusBlocked marks a session that stopped on a condition the operator
	// must fix (missing credential, invalid input, missing tool).
	StatusBlocked Status = "blocked"
)

var allStatuses = []Status{
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusBlocked,
}

// AllStatuses returns every known session status in display order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus resolves a case-insensitive status name.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether the session will not change further.
func (s Status) IsTerminal() bool {
	return s != StatusRunning
}

// Kind classifies an artifact produced by a pipeline stage.
type Kind string

const (
	KindVideo         Kind = "video"
	KindAudio         Kind = "audio"
	KindSubtitleTrack Kind = "subtitle_track"
	KindFrameImage    Kind = "frame_image"
)

// Artifact is a file produced by exactly one stage inside a session directory.
type Artifact struct {
	Seq       int       `json:"seq" yaml:"seq"`
	Path      string    `json:"path" yaml:"path"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Stage     string    `json:"stage" yaml:"stage"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Session is one pipeline run and the directory it exclusively owns.
type Session struct {
	ID           string     `json:"id" yaml:"id"`
	Dir          string     `json:"dir" yaml:"dir"`
	SourcePath   string     `json:"source_path" yaml:"source_path"`
	Status       Status     `json:"status" yaml:"status"`
	FailedStage  string     `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	FinalPath    string     `json:"final_path,omitempty" yaml:"final_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" yaml:"updated_at"`
	Artifacts    []Artifact `json:"artifacts" yaml:"artifacts"`
}
