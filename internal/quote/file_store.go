package quote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/observability"
)

const backendFile = "file"

// FileStore is an append-only JSONL quote log.
// Appends are serialized; reads scan the whole file and skip blank or
// malformed lines.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates the file and its parent directory when missing.
func NewFileStore(path string, log *slog.Logger) (*FileStore, error) {
	log = logger.OrDefault(log)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to initialize quotes directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize quotes file: %w", err)
	}
	_ = f.Close()

	return &FileStore{path: path, logger: log}, nil
}

// Append writes q as one line and syncs it to disk.
func (s *FileStore) Append(_ context.Context, q *Quote) error {
	defer observeStore(backendFile, "append", time.Now())

	line, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// Get scans the log for id.
func (s *FileStore) Get(_ context.Context, id string) (*Quote, error) {
	defer observeStore(backendFile, "get", time.Now())

	var found *Quote
	err := s.scan(func(q Quote) bool {
		if q.ID == id {
			found = &q
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrQuoteNotFound
	}
	return found, nil
}

// List returns every readable quote in append order.
func (s *FileStore) List(_ context.Context) ([]Quote, error) {
	defer observeStore(backendFile, "list", time.Now())

	quotes := []Quote{}
	err := s.scan(func(q Quote) bool {
		quotes = append(quotes, q)
		return true
	})
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// scan calls fn for every decodable quote until fn returns false.
// A missing file reads as empty.
func (s *FileStore) scan(fn func(Quote) bool) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read quotes: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var q Quote
		if err := json.Unmarshal(raw, &q); err != nil || q.ID == "" {
			s.logger.Warn("skipping unreadable quote record",
				slog.String("path", s.path),
				slog.Int("line", line),
			)
			continue
		}
		if !fn(q) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read quotes: %w", err)
	}
	return nil
}

func observeStore(backend, operation string, start time.Time) {
	observability.QuoteStoreDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
