package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	env11 "github.com/caarlos0/env/v11"
)

// Config is the speech server's environment configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"AGENTPIPE_SPEECH_ADDR" envDefault:"127.0.0.1:8880"`
	// VoicesDir holds voice reference .wav files for cloning.
	VoicesDir string `env:"AGENTPIPE_SPEECH_VOICES_DIR" envDefault:"voices"`
	// EngineCommand is the synthesis binary the command engine invokes.
	EngineCommand string `env:"AGENTPIPE_SPEECH_ENGINE" envDefault:"tts"`
}

// LoadConfig reads server configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := new(Config)
	if err := env11.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse speech env: %w", err)
	}

	return cfg, nil
}

// ttsRequest is the POST /v1/tts body.
//
//nolint:tagliatelle // wire format uses snake_case
type ttsRequest struct {
	Text        string `json:"text"`
	ReferenceID string `json:"reference_id"`
	Language    string `json:"language"`
}

// referencesResponse is the GET /v1/references/list body.
//
//nolint:tagliatelle // wire format uses snake_case
type referencesResponse struct {
	Success      bool     `json:"success"`
	ReferenceIDs []string `json:"reference_ids"`
}

// Server serves synthesis requests over HTTP. The engine is a field,
// not a package variable: construct, serve, close.
type Server struct {
	log       *slog.Logger
	engine    Engine
	voicesDir string
	httpSrv   *http.Server
}

// NewServer creates a Server around a loaded engine.
func NewServer(log *slog.Logger, cfg *Config, engine Engine) *Server {
	s := &Server{
		log:       log.With("component", "speech_server"),
		engine:    engine,
		voicesDir: cfg.VoicesDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/tts", s.handleSynthesize)
	mux.HandleFunc("GET /v1/references/list", s.handleListReferences)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe blocks serving requests until Shutdown or a listener
// error.
func (s *Server) ListenAndServe() error {
	s.log.Info("Speech server listening", "addr", s.httpSrv.Addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("speech server: %w", err)
	}

	return nil
}

// Shutdown stops the HTTP server and closes the engine.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)

	if closeErr := s.engine.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")

		return
	}

	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "no text provided")

		return
	}

	if req.ReferenceID == "" {
		req.ReferenceID = DefaultVoice
	}

	if req.Language == "" {
		req.Language = "en"
	}

	s.log.Info("Synthesizing",
		"text_len", len(req.Text),
		"voice", req.ReferenceID,
		"language", req.Language,
	)

	audio, err := s.engine.Synthesize(r.Context(), req.Text, req.ReferenceID, req.Language)
	if err != nil {
		s.log.Error("Synthesis failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(audio); err != nil {
		s.log.Error("Failed to write audio response", "error", err)
	}
}

func (s *Server) handleListReferences(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, referencesResponse{
		Success:      true,
		ReferenceIDs: ListVoices(s.voicesDir),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"engine": fmt.Sprintf("%T", s.engine),
	})
}
