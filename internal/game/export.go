package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ResultRecorder receives every finished game.
type ResultRecorder interface {
	RecordGame(ctx context.Context, res GameResult) error
}

// FileRecorder appends a plain-text report per finished game to Path.
type FileRecorder struct {
	Path string
	mu   sync.Mutex
}

func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{Path: path}
}

func (f *FileRecorder) RecordGame(_ context.Context, res GameResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ExportResult(res, f.Path)
}

// ExportResult appends a game report to filename, creating it if needed.
func ExportResult(res GameResult, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fileExists := false
	if _, err := os.Stat(filename); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if fileExists {
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Wordturn Game %s - Room %s\n", res.GameID, res.RoomCode))
	sb.WriteString(fmt.Sprintf("Finished: %s after %d round(s)\n", res.FinishedAt.Format("2006-01-02 15:04:05"), res.Rounds))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	for i, s := range res.FinalScores {
		sb.WriteString(fmt.Sprintf("%d. %s: %d points\n", i+1, s.Name, s.Score))
	}
	switch w := res.Winner(); {
	case w != nil:
		sb.WriteString(fmt.Sprintf("Winner: %s\n", w.Name))
	case res.Draw:
		sb.WriteString("Result: draw\n")
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
