/*
PURPOSE:
  Input checks that run before any request: base URL and questions file.

REQUIREMENTS:
  User-specified:
  - Only absolute http/https URLs are accepted.
  - The questions file is a non-empty YAML list of non-blank strings.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (processor, runner), internal/cli (ask)

ERROR HANDLING:
  - Every rejection is a *ValidationError; callers test with
    IsValidationError and never retry it.

RELATED FILES:
  - internal/engine/runner.go
*/

package engine

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError marks bad input that must be reported to the caller
// before any network call. It is never retried and never written to the
// error log.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateURL checks that raw is an absolute http(s) URL and returns it
// without trailing slashes.
func ValidateURL(raw string) (string, error) {
	if raw == "" {
		return "", validationf("URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", validationf("invalid URL format: %s", raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", validationf("URL must use http or https scheme: %s", raw)
	}

	return strings.TrimRight(raw, "/"), nil
}

// ParseQuestions decodes a YAML document holding a list of questions.
// Questions are returned as written; only emptiness is checked after
// trimming.
func ParseQuestions(data []byte) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, validationf("invalid YAML format: %v", err)
	}
	return ValidateQuestions(doc)
}

// ValidateQuestions checks an already decoded question list.
func ValidateQuestions(doc any) ([]string, error) {
	items, ok := doc.([]any)
	if !ok {
		return nil, validationf("questions must be a list")
	}
	if len(items) == 0 {
		return nil, validationf("questions list cannot be empty")
	}

	questions := make([]string, 0, len(items))
	for i, item := range items {
		q, ok := item.(string)
		if !ok {
			return nil, validationf("question %d must be a string", i+1)
		}
		if strings.TrimSpace(q) == "" {
			return nil, validationf("question %d cannot be empty", i+1)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// LoadQuestions reads and validates a YAML questions file.
func LoadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, validationf("questions file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read questions file %s: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, validationf("invalid YAML in %s: %v", path, err)
	}
	return ValidateQuestions(doc)
}
