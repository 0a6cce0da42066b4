/*
PURPOSE:
  Turns the backend's newline-delimited JSON stream into an answer and its
  citations.

REQUIREMENTS:
  User-specified:
  - The first choice message carries the citations; later ones form the answer.
  - Junk lines must not fail a question on their own.

  Implementation-discovered:
  - Keys are matched exactly, so every level is read as a raw JSON object
    rather than through struct tags.
  - Content may be any JSON value; non-strings keep their JSON text.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/processor.go

ERROR HANDLING:
  - Malformed lines: WARN log and skip.
  - ErrInvalidUTF8, ErrNoJSONContent, ErrNoChoiceMessages fail the attempt;
    the processor retries them.

RELATED FILES:
  - internal/engine/processor.go
*/

package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/daryltucker/ai-tester/internal/model"
	"github.com/daryltucker/ai-tester/internal/output"
)

// Question-level parse failures. They are subject to the retry policy.
var (
	ErrInvalidUTF8      = errors.New("response contains invalid UTF-8 encoding")
	ErrNoJSONContent    = errors.New("no valid JSON content found in response")
	ErrNoChoiceMessages = errors.New("no valid choice messages found in response")
)

// Keys of the streaming protocol. They are matched exactly; encoding/json
// struct decoding folds case, so every level is decoded as a raw object.
const (
	keyChoices   = "choices"
	keyMessages  = "messages"
	keyContent   = "content"
	keyCitations = "citations"
	keyURL       = "url"
)

// ParseResponse turns a raw newline-delimited JSON body into a result.
//
// The first choice message is reserved for the citation payload; the answer
// is the concatenation of every following choice message. A body with a
// single usable line therefore yields an empty answer.
func ParseResponse(body []byte, question string, debug bool) (model.QuestionResult, error) {
	if !utf8.Valid(body) {
		return model.QuestionResult{}, ErrInvalidUTF8
	}

	lines := decodeLines(string(body))
	if len(lines) == 0 {
		return model.QuestionResult{}, ErrNoJSONContent
	}

	var messages []string
	for _, line := range lines {
		if msg, ok := choiceMessage(line); ok {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		return model.QuestionResult{}, ErrNoChoiceMessages
	}

	citations, contents := extractCitations(messages[0], debug)

	result := model.QuestionResult{
		Question:  question,
		Answer:    strings.Join(messages[1:], ""),
		Citations: citations,
	}
	if debug && len(contents) > 0 {
		result.CitationsContents = contents
	}
	return result, nil
}

// decodeLines keeps every non-blank, non-"{}" line that is valid JSON.
func decodeLines(text string) []json.RawMessage {
	var lines []json.RawMessage
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "{}" {
			continue
		}
		if !json.Valid([]byte(line)) {
			output.Logger.Warn("Skipping invalid JSON line", "line", output.Truncate(line, 100))
			continue
		}
		lines = append(lines, json.RawMessage(line))
	}
	return lines
}

// choiceMessage joins the content of choices[0].messages[] for one line.
// ok is false when the line does not have that shape or carries no content.
func choiceMessage(line json.RawMessage) (string, bool) {
	obj, ok := object(line)
	if !ok {
		return "", false
	}
	choices, ok := array(obj[keyChoices])
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := object(choices[0])
	if !ok {
		return "", false
	}
	messages, ok := array(choice[keyMessages])
	if !ok {
		return "", false
	}

	var sb strings.Builder
	parts := 0
	for _, raw := range messages {
		msg, ok := object(raw)
		if !ok {
			continue
		}
		if text, ok := coerceString(msg[keyContent]); ok {
			sb.WriteString(text)
			parts++
		}
	}
	if parts == 0 {
		return "", false
	}
	return sb.String(), true
}

// extractCitations reads the citations array embedded in the first choice
// message. Any failure leaves both lists empty.
func extractCitations(first string, debug bool) (urls, contents []string) {
	payload, ok := object(json.RawMessage(first))
	if !ok {
		output.Logger.Warn("Failed to parse citations", "error", "first message is not a JSON object")
		return nil, nil
	}

	list, ok := array(payload[keyCitations])
	if !ok {
		return nil, nil
	}
	for _, raw := range list {
		c, ok := object(raw)
		if !ok {
			continue
		}
		if u, ok := coerceString(c[keyURL]); ok {
			urls = append(urls, u)
		}
		if debug {
			if text, ok := coerceString(c[keyContent]); ok {
				contents = append(contents, text)
			}
		}
	}
	return urls, contents
}

// object decodes raw as a JSON object. null and non-objects are rejected.
func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// array decodes raw as a JSON array. null and non-arrays are rejected.
func array(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

// coerceString renders a JSON value as text. Strings are unquoted, other
// scalars and containers keep their compact JSON form, so booleans read
// true/false. Absent and null values are not usable and are skipped rather
// than rendered as a placeholder like "None".
func coerceString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false
	}
	return buf.String(), true
}
