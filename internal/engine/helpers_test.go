package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	return testutil.ToFloat64(c)
}

// answerBody is a well-formed backend response for question q.
func answerBody(q string) string {
	return `{"choices":[{"messages":[{"content":"{\"citations\":[{\"url\":\"http://cite/` + q + `\"}]}"}]}]}` + "\n" +
		`{"choices":[{"messages":[{"content":"answer to ` + q + `"}]}]}` + "\n"
}

// fakeBackend answers every question with answerBody unless the question
// is listed in failing, in which case it returns 500.
type fakeBackend struct {
	mu      sync.Mutex
	failing map[string]bool
	asked   []string
	paths   []string
	ids     []string
}

func newFakeBackend(t *testing.T, failing ...string) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{failing: map[string]bool{}}
	for _, q := range failing {
		fb.failing[q] = true
	}
	server := httptest.NewServer(fb)
	t.Cleanup(server.Close)
	return fb, server
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Messages) != 1 {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	q := payload.Messages[0].Content

	fb.mu.Lock()
	fb.asked = append(fb.asked, q)
	fb.paths = append(fb.paths, r.URL.Path)
	fb.ids = append(fb.ids, payload.Messages[0].ID)
	failing := fb.failing[q]
	fb.mu.Unlock()

	if failing {
		http.Error(w, "cannot answer "+q, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Write([]byte(answerBody(strings.TrimSpace(q))))
}

func (fb *fakeBackend) questions() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.asked...)
}

func (fb *fakeBackend) requestPaths() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.paths...)
}

func (fb *fakeBackend) setFailing(q string, failing bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failing[q] = failing
}

func (fb *fakeBackend) reset() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.asked = nil
	fb.paths = nil
	fb.ids = nil
}

// distinct returns the asked questions without repeats, in first-seen order.
func (fb *fakeBackend) distinct() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, q := range fb.asked {
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

func (fb *fakeBackend) count(q string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, a := range fb.asked {
		if a == q {
			n++
		}
	}
	return n
}
