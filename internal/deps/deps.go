package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"dubber/internal/config"
)

// Requirement defines an external binary dubber invokes at the process boundary.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the binaries the configured pipeline needs. ffmpeg,
// ffprobe and tesseract are required; the transcription runner and the
// external lip-sync command degrade to fallbacks when absent.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Audio extraction, muxing and subtitle burn"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "Video duration probing"},
		{Name: "Tesseract", Command: cfg.Tools.Tesseract, Description: "On-frame text recognition"},
		{Name: "uvx", Command: cfg.Tools.UVX, Description: "Runs WhisperX transcription (placeholder transcript when absent)", Optional: true},
	}
	if cfg.LipSync.Mode == config.LipSyncModeExternal {
		reqs = append(reqs, Requirement{
			Name:        "Lip-sync model",
			Command:     cfg.LipSync.Command,
			Description: "External lip-sync inference (audio replacement when absent)",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, checkBinary(req))
	}
	return results
}

func checkBinary(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}

// MissingRequired returns the statuses of required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
