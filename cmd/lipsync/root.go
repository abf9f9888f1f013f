package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dubber/internal/media/ffmpeg"
	"dubber/internal/session"
)

type options struct {
	face    string
	audio   string
	outfile string
	ffmpeg  string
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "lipsync --face <video> --audio <audio> --outfile <output>",
		Short:         "Produce a video whose soundtrack is the given audio",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := ffmpeg.New(opts.ffmpeg)
			path, err := syncVideo(cmd, tool, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.face, "face", "", "Input video containing the face")
	cmd.Flags().StringVar(&opts.audio, "audio", "", "Replacement audio track")
	cmd.Flags().StringVar(&opts.outfile, "outfile", "", "Output video path")
	cmd.Flags().StringVar(&opts.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")
	for _, name := range []string{"face", "audio", "outfile"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// tempPath inserts "_temp" before the extension so ffmpeg still infers the
// container from the name.
func tempPath(outfile string) string {
	ext := filepath.Ext(outfile)
	return strings.TrimSuffix(outfile, ext) + "_temp" + ext
}

func syncVideo(cmd *cobra.Command, tool *ffmpeg.Tool, opts options) (string, error) {
	for _, input := range []string{opts.face, opts.audio} {
		if err := session.CheckArtifact(input); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(filepath.Dir(opts.outfile), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	temp := tempPath(opts.outfile)
	defer os.Remove(temp)
	if _, err := tool.ReplaceAudio(cmd.Context(), opts.face, opts.audio, temp); err != nil {
		return "", err
	}
	if err := os.Rename(temp, opts.outfile); err != nil {
		return "", fmt.Errorf("finalize output: %w", err)
	}
	if err := session.CheckArtifact(opts.outfile); err != nil {
		return "", errors.New("no output file was produced")
	}
	return opts.outfile, nil
}
