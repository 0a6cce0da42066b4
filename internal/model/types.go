/*
PURPOSE:
  Defines the core data structures used throughout AI Tester.
  These models represent outbound payloads, parsed answers and the
  persisted run state records.

REQUIREMENTS:
  User-specified:
  - Record question, answer and citation URLs per question.
  - Track the run parameters so an interrupted batch can be resumed.

  Implementation-discovered:
  - Need JSON tags matching the on-disk log formats exactly.
  - A result carries either an answer or an error, never both.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/state, internal/output, internal/cli
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - RunMetadata must stay comparable with == (no slices or maps).

USAGE:
  res := model.QuestionResult{Question: q, Answer: a}

SELF-HEALING INSTRUCTIONS:
  - If a new run parameter affects resumability, add it to RunMetadata.

RELATED FILES:
  - internal/engine/parser.go
  - internal/state/store.go

MAINTENANCE:
  - Update when the backend payload or log formats change.
*/

package model

import "encoding/json"

// RoleUser is the only role the tester ever sends.
const RoleUser = "user"

// Message is a single chat message in the outbound payload.
type Message struct {
	ID      string `json:"id"`
	Date    string `json:"date"` // ISO-8601, UTC
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the request body posted to the conversation endpoint.
type Payload struct {
	Messages []Message `json:"messages"`
}

// QuestionResult is the outcome of processing one question.
// Exactly one of Answer (success) or Error (failure) is meaningful.
type QuestionResult struct {
	Question          string   `json:"question"`
	Answer            string   `json:"answer,omitempty"`
	Citations         []string `json:"citations,omitempty"`
	CitationsContents []string `json:"citationsContents,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r QuestionResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON emits the failure shape {question, error} or the success shape
// {question, answer, citations[, citationsContents]}. A successful result
// always carries answer and citations, even when empty.
func (r QuestionResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Question string `json:"question"`
			Error    string `json:"error"`
		}{r.Question, r.Error})
	}

	citations := r.Citations
	if citations == nil {
		citations = []string{}
	}
	return json.Marshal(struct {
		Question          string   `json:"question"`
		Answer            string   `json:"answer"`
		Citations         []string `json:"citations"`
		CitationsContents []string `json:"citationsContents,omitempty"`
	}{r.Question, r.Answer, citations, r.CitationsContents})
}

// RunMetadata is the snapshot of run parameters used to decide whether
// persisted progress belongs to the current invocation.
type RunMetadata struct {
	BaseURL       string `json:"base_url"`
	QuestionsFile string `json:"questions_file"` // absolute path
	OutputFormat  string `json:"output_format"`
	Filename      string `json:"filename"`
	Debug         bool   `json:"debug"`
	Endpoint      string `json:"endpoint"`
}

// SuccessLogEntry is one line of the success log.
type SuccessLogEntry struct {
	Question string `json:"question"`
}

// ErrorLogEntry is one line of the error log.
type ErrorLogEntry struct {
	Timestamp string `json:"timestamp"`
	Question  string `json:"question"`
	Error     string `json:"error"`
}
