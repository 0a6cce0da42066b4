package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/ai-tester/internal/config"
	"github.com/daryltucker/ai-tester/internal/model"
)

func tempStore(t *testing.T) (*FileStore, Paths) {
	t.Helper()
	dir := t.TempDir()
	p := Paths{
		SuccessLog: filepath.Join(dir, ".success_log.jsonl"),
		ErrorLog:   filepath.Join(dir, ".error_log.jsonl"),
		Meta:       filepath.Join(dir, ".success_log.meta.json"),
	}
	return NewFileStore(p), p
}

func sampleMeta() model.RunMetadata {
	return model.RunMetadata{
		BaseURL:       "https://chat.example.com",
		QuestionsFile: "/tmp/questions.yml",
		OutputFormat:  "json",
		Filename:      "",
		Debug:         false,
		Endpoint:      "/conversation",
	}
}

func TestPathsFromConfig(t *testing.T) {
	p := PathsFromConfig(config.DefaultConfig())
	assert.Equal(t, Paths{
		SuccessLog: ".success_log.jsonl",
		ErrorLog:   ".error_log.jsonl",
		Meta:       ".success_log.meta.json",
	}, p)
}

func TestFileStore_EmptyState(t *testing.T) {
	s, _ := tempStore(t)

	meta, err := s.LoadMetadata()
	require.NoError(t, err)
	assert.Nil(t, meta)

	done, err := s.LoadSuccessSet()
	require.NoError(t, err)
	assert.Empty(t, done)

	errs, err := s.LoadErrors()
	require.NoError(t, err)
	assert.Empty(t, errs)

	assert.NoError(t, s.Reset(), "resetting missing files is not an error")
}

func TestFileStore_Metadata(t *testing.T) {
	s, p := tempStore(t)
	meta := sampleMeta()

	require.NoError(t, s.SaveMetadata(meta))
	got, err := s.LoadMetadata()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, meta, *got)

	raw, err := os.ReadFile(p.Meta)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"base_url": "https://chat.example.com",
		"questions_file": "/tmp/questions.yml",
		"output_format": "json",
		"filename": "",
		"debug": false,
		"endpoint": "/conversation"
	}`, string(raw))

	_, err = os.Stat(p.Meta + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	meta.Debug = true
	require.NoError(t, s.SaveMetadata(meta))
	got, err = s.LoadMetadata()
	require.NoError(t, err)
	assert.True(t, got.Debug, "save replaces the previous snapshot")
}

func TestFileStore_CorruptMetadata(t *testing.T) {
	s, p := tempStore(t)
	require.NoError(t, os.WriteFile(p.Meta, []byte("{not json"), 0644))

	meta, err := s.LoadMetadata()
	assert.Nil(t, meta)
	assert.ErrorIs(t, err, ErrCorruptMetadata)
}

func TestFileStore_SuccessLog(t *testing.T) {
	s, p := tempStore(t)

	require.NoError(t, s.AppendSuccess("What is X?"))
	require.NoError(t, s.AppendSuccess("Is <b> & \"quoted\" ok?"))
	require.NoError(t, s.AppendSuccess("What is X?"))

	done, err := s.LoadSuccessSet()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"What is X?":             {},
		"Is <b> & \"quoted\" ok?": {},
	}, done)

	raw, err := os.ReadFile(p.SuccessLog)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"question":"Is <b> & \"quoted\" ok?"}`+"\n", "HTML characters are written as-is")
}

func TestFileStore_SkipsMalformedLines(t *testing.T) {
	s, p := tempStore(t)
	content := `{"question":"A"}

not json at all
{"question": 42}
{"question":"B"}
`
	require.NoError(t, os.WriteFile(p.SuccessLog, []byte(content), 0644))

	done, err := s.LoadSuccessSet()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"A": {}, "B": {}}, done)
}

func TestFileStore_ReadsLastLineWithoutNewline(t *testing.T) {
	s, p := tempStore(t)
	require.NoError(t, os.WriteFile(p.SuccessLog, []byte("{\"question\":\"A\"}\r\n{\"question\":\"B\"}"), 0644))

	done, err := s.LoadSuccessSet()
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.Contains(t, done, "B")
}

func TestFileStore_ErrorLog(t *testing.T) {
	s, _ := tempStore(t)
	est := time.FixedZone("EST", -5*60*60)

	require.NoError(t, s.AppendError("A", "HTTP error 500: boom", time.Date(2025, 1, 2, 3, 4, 5, 999, time.UTC)))
	require.NoError(t, s.AppendError("B", "request timed out after 30s", time.Date(2025, 1, 2, 3, 4, 5, 0, est)))

	errs, err := s.LoadErrors()
	require.NoError(t, err)
	assert.Equal(t, []model.ErrorLogEntry{
		{Timestamp: "2025-01-02T03:04:05Z", Question: "A", Error: "HTTP error 500: boom"},
		{Timestamp: "2025-01-02T08:04:05Z", Question: "B", Error: "request timed out after 30s"},
	}, errs)
}

func TestFileStore_Reset(t *testing.T) {
	s, p := tempStore(t)
	require.NoError(t, s.SaveMetadata(sampleMeta()))
	require.NoError(t, s.AppendSuccess("A"))
	require.NoError(t, s.AppendError("B", "boom", time.Now()))

	require.NoError(t, s.Reset())

	for _, path := range []string{p.SuccessLog, p.ErrorLog, p.Meta} {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "%s should be removed", path)
	}
}

func TestFileStore_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(Paths{
		SuccessLog: filepath.Join(dir, "nested", "state", "ok.jsonl"),
		ErrorLog:   filepath.Join(dir, "nested", "state", "err.jsonl"),
		Meta:       filepath.Join(dir, "nested", "meta", "meta.json"),
	})

	require.NoError(t, s.AppendSuccess("A"))
	require.NoError(t, s.SaveMetadata(sampleMeta()))
	assert.Equal(t, filepath.Join(dir, "nested", "meta", "meta.json"), s.Paths().Meta)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	assert.True(t, m.Empty())

	meta, err := m.LoadMetadata()
	require.NoError(t, err)
	assert.Nil(t, meta)

	require.NoError(t, m.SaveMetadata(sampleMeta()))
	got, err := m.LoadMetadata()
	require.NoError(t, err)
	got.Debug = true
	assert.False(t, m.Meta.Debug, "loaded metadata is a copy")

	require.NoError(t, m.AppendSuccess("A"))
	require.NoError(t, m.AppendError("B", "boom", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	done, err := m.LoadSuccessSet()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"A": {}}, done)
	assert.Equal(t, "2025-06-01T00:00:00Z", m.Errors[0].Timestamp)
	assert.False(t, m.Empty())

	require.NoError(t, m.Reset())
	assert.True(t, m.Empty())
	assert.Equal(t, 1, m.Resets)
}
