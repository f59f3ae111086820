package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEngine records the last synthesis request.
type fakeEngine struct {
	lastText     string
	lastVoice    string
	lastLanguage string
	err          error
	closed       bool
}

func (e *fakeEngine) Synthesize(_ context.Context, text, voiceRef, language string) ([]byte, error) {
	e.lastText = text
	e.lastVoice = voiceRef
	e.lastLanguage = language

	if e.err != nil {
		return nil, e.err
	}

	return []byte("RIFF fake wav"), nil
}

func (e *fakeEngine) Close() error {
	e.closed = true

	return nil
}

func newTestServer(t *testing.T, engine Engine, voicesDir string) *Server {
	t.Helper()

	return NewServer(testLogger(), &Config{
		Addr:      "127.0.0.1:0",
		VoicesDir: voicesDir,
	}, engine)
}

func TestSynthesizeOK(t *testing.T) {
	engine := &fakeEngine{}
	server := newTestServer(t, engine, t.TempDir())

	body := `{"text":"hello","reference_id":"narrator","language":"de"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/tts", strings.NewReader(body))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF fake wav", rec.Body.String())
	assert.Equal(t, "hello", engine.lastText)
	assert.Equal(t, "narrator", engine.lastVoice)
	assert.Equal(t, "de", engine.lastLanguage)
}

func TestSynthesizeDefaults(t *testing.T) {
	engine := &fakeEngine{}
	server := newTestServer(t, engine, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/v1/tts", strings.NewReader(`{"text":"hi"}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultVoice, engine.lastVoice)
	assert.Equal(t, "en", engine.lastLanguage)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/v1/tts", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "no text")
}

func TestSynthesizeRejectsBadJSON(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/v1/tts", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSynthesizeEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("model exploded")}
	server := newTestServer(t, engine, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/v1/tts", strings.NewReader(`{"text":"hi"}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "model exploded")
}

func TestListReferences(t *testing.T) {
	voicesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(voicesDir, "narrator.wav"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(voicesDir, "alice.wav"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(voicesDir, "notes.txt"), []byte("x"), 0o644))

	server := newTestServer(t, &fakeEngine{}, voicesDir)

	req := httptest.NewRequest(http.MethodGet, "/v1/references/list", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp referencesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"alice", "narrator"}, resp.ReferenceIDs)
}

func TestListReferencesEmptyDirFallsBack(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/v1/references/list", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	var resp referencesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{DefaultVoice}, resp.ReferenceIDs)
}

func TestListVoicesMissingDir(t *testing.T) {
	assert.Equal(t, []string{DefaultVoice}, ListVoices(filepath.Join(t.TempDir(), "absent")))
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["engine"])
}

func TestShutdownClosesEngine(t *testing.T) {
	engine := &fakeEngine{}
	server := newTestServer(t, engine, t.TempDir())

	require.NoError(t, server.Shutdown(context.Background()))
	assert.True(t, engine.closed)
}
