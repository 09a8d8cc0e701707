// Package api provides the HTTP shell around the prediction service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"carprice/decision/prediction"
	"carprice/pkg/api"
	perrors "carprice/pkg/errors"
	"carprice/pkg/platform"
)

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	service    *prediction.Service
	config     platform.ServerConfig
	logger     zerolog.Logger
	version    string
	started    time.Time
}

// NewServer creates a server. service may be nil, in which case the
// readiness probe fails and /predict answers 503.
func NewServer(service *prediction.Service, config platform.ServerConfig, logger zerolog.Logger, version string) *Server {
	return &Server{
		service: service,
		config:  config,
		logger:  logger,
		version: version,
		started: time.Now(),
	}
}

// Handler builds the router with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)
	if d := s.config.RequestTimeout(); d > 0 {
		r.Use(middleware.Timeout(d))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/version", s.handleVersion)
	r.Get("/model", s.handleModel)
	r.Post("/predict", s.handlePredict)

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout(),
		WriteTimeout: s.config.WriteTimeout(),
	}

	ev := s.logger.Info().Int("port", s.config.Port).Str("version", s.version)
	if s.service != nil && s.service.Bundle() != nil {
		ev = ev.Str("model_id", s.service.Bundle().ID)
	}
	ev.Msg("starting car price API server")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts server with graceful shutdown handling
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.config.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		s.jsonResponse(w, http.StatusOK, api.HealthResponse{
			Status:  "ok",
			Message: "Model not loaded",
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:      "ok",
		ModelLoaded: true,
		Message:     "Car price prediction API is running",
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	resp := api.VersionResponse{Version: s.version}
	if s.service != nil {
		resp.SchemaVersion = s.service.Schema().Version
		if b := s.service.Bundle(); b != nil {
			resp.ModelID = b.ID
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// =============================================================================
// MODEL ENDPOINTS
// =============================================================================

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if s.service == nil || s.service.Bundle() == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	s.jsonResponse(w, http.StatusOK, prediction.Describe(s.service.Bundle()))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, api.PredictResponse{Error: "Model not loaded"})
		return
	}

	if s.config.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBytes)
	}

	req, err := prediction.DecodeRequest(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.jsonResponse(w, http.StatusRequestEntityTooLarge, api.PredictResponse{Error: "request body too large"})
			return
		}
		s.writePredictError(w, err)
		return
	}

	resp, err := s.service.Predict(r.Context(), req)
	if err != nil {
		s.writePredictError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// writePredictError maps request problems to 422. Encoding and model
// failures keep the 200 status with the error in the body.
func (s *Server) writePredictError(w http.ResponseWriter, err error) {
	status := http.StatusOK
	switch perrors.Code(err) {
	case perrors.ErrCodeInvalidRequest, perrors.ErrCodeMissingField:
		status = http.StatusUnprocessableEntity
	}

	msg := err.Error()
	var pe *perrors.PredictionError
	if errors.As(err, &pe) {
		msg = pe.Message
	}
	s.jsonResponse(w, status, api.PredictResponse{Error: msg})
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
