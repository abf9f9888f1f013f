package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dubber/internal/config"
	"dubber/internal/fileutil"
	"dubber/internal/pipeline"
	"dubber/internal/services"
	"dubber/internal/session"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Dub a video into French and burn on-screen text subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			store, err := session.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := pipeline.NewFromConfig(cmd.Context(), cfg, store, logger)
			if err != nil {
				return err
			}

			outcome, runErr := p.Run(cmd.Context(), input)
			out := cmd.OutOrStdout()
			if outcome.SessionID != "" {
				printOutcome(out, outcome)
			}
			if runErr != nil {
				var stageErr *pipeline.StageError
				if errors.As(runErr, &stageErr) {
					return fmt.Errorf("%s (session %s): %s", stageErr.Message, stageErr.SessionID, services.Hint(runErr))
				}
				return runErr
			}

			if strings.TrimSpace(outputPath) != "" {
				dest, err := resolveOutputPath(outputPath)
				if err != nil {
					return err
				}
				if _, err := fileutil.CopyVerified(outcome.FinalPath, dest); err != nil {
					return fmt.Errorf("copy final video: %w", err)
				}
				fmt.Fprintf(out, "Saved: %s\n", dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Copy the final video to this file or directory")
	return cmd
}

// resolveOutputPath expands path and appends the default file name when it
// names an existing directory.
func resolveOutputPath(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		return filepath.Join(expanded, pipeline.DownloadFileName), nil
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return expanded, nil
}

func printOutcome(out io.Writer, o pipeline.Outcome) {
	rows := [][]string{
		{"Session", o.SessionID},
		{"Status", string(o.Status)},
		{"Transcript", fmt.Sprintf("%s (%d chars)", o.TranscriptStatus, len(o.Transcript))},
		{"Translation", fmt.Sprintf("%d chars", len(o.Translation))},
		{"Speech", filepath.Base(o.AudioPath)},
		{"Lip-sync", lipSyncLabel(o)},
		{"Text detection", fmt.Sprintf("%s (%d/%d frames)", o.DetectionStatus, o.FramesDetected, o.FramesSampled)},
		{"Subtitles burned", yesNo(o.SubtitlesBurned)},
	}
	if len(o.SubtitleIssues) > 0 {
		rows = append(rows, []string{"Subtitle issues", strings.Join(o.SubtitleIssues, "; ")})
	}
	if o.ExportURI != "" {
		rows = append(rows, []string{"Exported", o.ExportURI})
	}
	if o.FinalPath != "" {
		rows = append(rows, []string{"Final video", o.FinalPath})
	}
	rows = append(rows, []string{"Elapsed", o.Elapsed.Round(1e6).String()})
	fmt.Fprintln(out, renderTable([]string{"Stage", "Result"}, rows, nil))
}

func lipSyncLabel(o pipeline.Outcome) string {
	if o.LipSyncMethod == "" {
		return ""
	}
	if o.FallbackReason != "" {
		return fmt.Sprintf("%s (fallback: %s)", o.LipSyncMethod, o.FallbackReason)
	}
	return string(o.LipSyncMethod)
}
