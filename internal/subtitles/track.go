package subtitles

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubber/internal/services"
	"dubber/internal/textdetect"
)

// TrackFileName is the subtitle file written into the session directory.
const TrackFileName = "subtitles.srt"

// Item is a timed piece of subtitle text in seconds.
type Item struct {
	Start float64
	End   float64
	Text  string
}

// Valid reports whether the item can become a cue. Timestamps are written in
// whole seconds, so an item that does not cross a second boundary would render
// as a zero-length cue and is rejected.
func (i Item) Valid() bool {
	return math.Floor(i.End) > math.Floor(i.Start) && strings.TrimSpace(i.Text) != ""
}

// ItemsFromFrames times each detected frame over the interval it was sampled
// from: [idx*I, (idx+1)*I).
func ItemsFromFrames(frames []textdetect.Frame, interval time.Duration) []Item {
	step := interval.Seconds()
	items := make([]Item, 0, len(frames))
	for _, frame := range frames {
		items = append(items, Item{
			Start: float64(frame.Index) * step,
			End:   float64(frame.Index+1) * step,
			Text:  frame.Text,
		})
	}
	return items
}

// GenerateTrack writes items as an SRT file at path, skipping invalid items
// and numbering the rest from 1. On error the returned path is empty and no
// partial file is left behind.
func GenerateTrack(items []Item, path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "subtitles", "generate", "create directory", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "subtitles", "generate", "create track", err)
	}

	w := bufio.NewWriter(file)
	writeErr := writeCues(w, items)
	if writeErr == nil {
		writeErr = w.Flush()
	}
	closeErr := file.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(path)
		return "", services.Wrap(services.ErrExternalTool, "subtitles", "generate", "write track", writeErr)
	}
	return path, nil
}

// FormatCue renders one SRT block including its trailing blank line.
func FormatCue(index int, item Item) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n\n", index, FormatTimestamp(item.Start), FormatTimestamp(item.End), cueText(item.Text))
}

// cueText drops blank lines, which would otherwise terminate the cue early.
func cueText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeCues(w *bufio.Writer, items []Item) error {
	index := 0
	for _, item := range items {
		if !item.Valid() {
			continue
		}
		index++
		if _, err := w.WriteString(FormatCue(index, item)); err != nil {
			return err
		}
	}
	return nil
}
