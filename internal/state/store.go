/*
PURPOSE:
  Persists the progress of a question batch so an interrupted run can be
  resumed without resubmitting questions that already succeeded.

REQUIREMENTS:
  User-specified:
  - Success log: one {"question": ...} per line, append-only.
  - Error log: one {"timestamp", "question", "error"} per line, append-only.
  - Run metadata: single JSON document, whole-file overwrite.
  - Reset removes all three.

  Implementation-discovered:
  - JSON Lines is append-friendly and survives a crash mid-batch.
  - A corrupt line must not make the whole log unreadable.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go (through the RunState interface),
    internal/cli/state.go
  - Consumes: internal/model log entry types

ERROR HANDLING:
  - Missing files are not errors (empty state).
  - Malformed log lines are skipped with a warning.
  - Malformed metadata is reported as ErrCorruptMetadata.

IMPLEMENTATION RULES:
  - No locking. One writer per set of files is assumed; running two batches
    against the same files concurrently is undefined.
  - Metadata is written to a temp file and renamed into place.

USAGE:
  st := state.NewFileStore(state.PathsFromConfig(cfg))
  done, err := st.LoadSuccessSet()

SELF-HEALING INSTRUCTIONS:
  - If the log format changes, keep reading the old one or reset on mismatch.

RELATED FILES:
  - internal/model/types.go
  - internal/state/memory.go

MAINTENANCE:
  - Update when adding new persisted artifacts.
*/

package state

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/daryltucker/ai-tester/internal/config"
	"github.com/daryltucker/ai-tester/internal/model"
	"github.com/daryltucker/ai-tester/internal/output"
)

// TimestampFormat is the UTC layout used in error log entries.
const TimestampFormat = "2006-01-02T15:04:05Z"

// ErrCorruptMetadata is returned when the metadata file cannot be decoded.
var ErrCorruptMetadata = errors.New("run metadata file is corrupt")

// Paths locates the three persisted artifacts.
type Paths struct {
	SuccessLog string
	ErrorLog   string
	Meta       string
}

// PathsFromConfig reads the state file locations from cfg.
func PathsFromConfig(cfg config.Config) Paths {
	return Paths{
		SuccessLog: cfg.SuccessLogFile,
		ErrorLog:   cfg.ErrorLogFile,
		Meta:       cfg.SuccessLogMetaFile,
	}
}

// FileStore keeps run state in JSON files on disk.
type FileStore struct {
	paths Paths
}

// NewFileStore creates a FileStore. Nothing is touched on disk until the
// first write.
func NewFileStore(p Paths) *FileStore {
	return &FileStore{paths: p}
}

// Paths returns the file locations used by the store.
func (s *FileStore) Paths() Paths {
	return s.paths
}

// LoadMetadata returns the persisted metadata, or nil if none exists.
func (s *FileStore) LoadMetadata() (*model.RunMetadata, error) {
	data, err := os.ReadFile(s.paths.Meta)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run metadata %s: %w", s.paths.Meta, err)
	}

	var meta model.RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, s.paths.Meta, err)
	}
	return &meta, nil
}

// SaveMetadata replaces the metadata file.
func (s *FileStore) SaveMetadata(meta model.RunMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode run metadata: %w", err)
	}
	if err := ensureDir(s.paths.Meta); err != nil {
		return err
	}

	tmp := s.paths.Meta + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write run metadata %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.paths.Meta); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace run metadata %s: %w", s.paths.Meta, err)
	}
	return nil
}

// LoadSuccessSet returns the questions recorded in the success log.
func (s *FileStore) LoadSuccessSet() (map[string]struct{}, error) {
	done := make(map[string]struct{})
	err := readLines(s.paths.SuccessLog, func(line []byte) error {
		var entry model.SuccessLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return err
		}
		done[entry.Question] = struct{}{}
		return nil
	})
	return done, err
}

// LoadErrors returns the entries of the error log in file order.
func (s *FileStore) LoadErrors() ([]model.ErrorLogEntry, error) {
	var entries []model.ErrorLogEntry
	err := readLines(s.paths.ErrorLog, func(line []byte) error {
		var entry model.ErrorLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	return entries, err
}

// AppendSuccess records a successfully answered question.
func (s *FileStore) AppendSuccess(question string) error {
	return appendJSONLine(s.paths.SuccessLog, model.SuccessLogEntry{Question: question})
}

// AppendError records a question that exhausted its retries.
func (s *FileStore) AppendError(question, errMsg string, ts time.Time) error {
	return appendJSONLine(s.paths.ErrorLog, model.ErrorLogEntry{
		Timestamp: ts.UTC().Format(TimestampFormat),
		Question:  question,
		Error:     errMsg,
	})
}

// Reset deletes both logs and the metadata file. Missing files are ignored.
func (s *FileStore) Reset() error {
	var errs []error
	for _, path := range []string{s.paths.SuccessLog, s.paths.ErrorLog, s.paths.Meta} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func appendJSONLine(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return f.Close()
}

// readLines calls fn for every non-blank line of path. A line fn rejects is
// skipped with a warning. A missing file yields no lines.
func readLines(path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				if perr := fn(trimmed); perr != nil {
					output.Logger.Warn("Skipping malformed state line", "path", path, "line", lineNo, "error", perr)
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
