package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"dubber/internal/logging"
)

// DefaultPollInterval is how often Follow checks the log for new lines.
const DefaultPollInterval = 250 * time.Millisecond

const maxLineBytes = 1024 * 1024

// Filter narrows log lines to one session. The zero value matches everything.
type Filter struct {
	SessionID string
}

// Match reports whether line belongs to the filtered session. JSON lines carry
// the full ID; console lines carry its first block in the bracketed prefix.
func (f Filter) Match(line string) bool {
	id := strings.TrimSpace(f.SessionID)
	if id == "" || strings.Contains(line, id) {
		return true
	}
	return strings.Contains(line, "["+logging.ShortSessionID(id))
}

// Last returns up to limit matching lines from the end of path and the offset
// of the end of the file. A missing file yields no lines and offset zero.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, offset, nil
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	offset, err := scan(file, func(line string) {
		if !filter.Match(line) {
			return
		}
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow emits matching lines appended after offset until ctx is done. A log
// that shrinks (rotated or truncated) is reread from the start.
func Follow(ctx context.Context, path string, offset int64, filter Filter, poll time.Duration, emit func(string)) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, emit func(string)) (int64, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	return scan(file, func(line string) {
		if filter.Match(line) {
			emit(line)
		}
	})
}

func openLog(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

// scan feeds complete lines to fn and returns the offset after the last one.
// A trailing partial line is left for the next read.
func scan(file *os.File, fn func(string)) (int64, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	offset := start
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return offset, nil
			}
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		if len(line) > maxLineBytes {
			continue
		}
		fn(strings.TrimRight(line, "\r\n"))
	}
}
