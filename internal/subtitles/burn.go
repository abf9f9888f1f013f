package subtitles

import (
	"context"
	"errors"

	"dubber/internal/media/ffmpeg"
	"dubber/internal/services"
)

// FinalFileName is the burned output written into the session directory.
const FinalFileName = "final_video.mp4"

// Burner composites a subtitle track into a video.
type Burner struct {
	tool *ffmpeg.Tool
}

// NewBurner wraps an ffmpeg tool.
func NewBurner(tool *ffmpeg.Tool) *Burner {
	return &Burner{tool: tool}
}

// Burn re-encodes videoPath with trackPath composited and audio copied. On
// failure the path is empty.
func (b *Burner) Burn(ctx context.Context, videoPath, trackPath, outputPath string) (string, error) {
	path, err := b.tool.BurnSubtitles(ctx, videoPath, trackPath, outputPath)
	if err != nil {
		marker := services.ErrExternalTool
		switch {
		case ffmpeg.IsUnavailable(err):
			marker = services.ErrNotFound
		case errors.Is(err, context.DeadlineExceeded):
			marker = services.ErrTimeout
		}
		return "", services.Wrap(marker, "subtitles", "burn", "", err)
	}
	return path, nil
}
