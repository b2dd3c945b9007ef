// Package api provides the HTTP surface over the calculation engine. The
// handlers translate requests into façade calls; all numeric policy lives in
// the calculators.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"claimcalc/internal/audit"
	"claimcalc/internal/engine"
	apipkg "claimcalc/pkg/api"
	"claimcalc/pkg/platform"
)

const version = "1.0.0"

// Config holds server configuration.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxRequestSize int64
}

// DefaultConfig reads configuration from the environment.
func DefaultConfig() *Config {
	return &Config{
		Port:           platform.GetEnvInt("PORT", 8080),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxRequestSize: 1 * 1024 * 1024, // 1MB; inputs are small numeric payloads
	}
}

// Server serves the calculation API.
type Server struct {
	httpServer *http.Server
	eng        *engine.Engine
	recorder   audit.Recorder
	cfg        *Config
	log        zerolog.Logger
}

// NewServer wires the engine, recorder, and configuration together.
func NewServer(eng *engine.Engine, recorder audit.Recorder, cfg *Config, log zerolog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if recorder == nil {
		recorder = audit.Noop{}
	}
	return &Server{eng: eng, recorder: recorder, cfg: cfg, log: log}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)

		r.Post("/coinsurance/validate", s.fixedOperation(apipkg.OpCoinsuranceValidate))
		r.Post("/coinsurance/payment", s.fixedOperation(apipkg.OpCoinsurancePayment))
		r.Post("/coinsurance/waiver", s.fixedOperation(apipkg.OpCoinsuranceWaiver))
		r.Post("/coinsurance/blanket", s.fixedOperation(apipkg.OpCoinsuranceBlanket))
		r.Post("/rom/estimate", s.fixedOperation(apipkg.OpRomEstimate))
		r.Post("/interruption/loss", s.fixedOperation(apipkg.OpInterruptionLoss))
		r.Post("/settlement/gap", s.fixedOperation(apipkg.OpSettlementGap))

		r.Get("/calculations", s.handleListCalculations)
	})

	return r
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Str("version", version).Msg("claim calculation API starting")
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// =============================================================================
// HEALTH
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "claimcalc",
		"version": version,
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.recorder.Ping(ctx); err != nil {
		s.respond(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "audit store unreachable",
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	ops := engine.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	s.respond(w, http.StatusOK, map[string]any{
		"service":    "claimcalc",
		"version":    version,
		"operations": names,
	})
}

// =============================================================================
// CALCULATION
// =============================================================================

// CalculateRequest is the generic dispatch body.
type CalculateRequest struct {
	Operation apipkg.Operation `json:"operation"`
	Input     json.RawMessage  `json:"input"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondEnvelopeError(w, apipkg.CodeBadInput, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Operation == "" {
		s.respondEnvelopeError(w, apipkg.CodeBadInput, "operation is required")
		return
	}

	env := s.eng.Calculate(r.Context(), req.Operation, req.Input)
	s.respond(w, statusFor(env), env)
}

// fixedOperation binds an endpoint to a single operation; the body is the
// bare calculator input.
func (s *Server) fixedOperation(op apipkg.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)

		var payload json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.respondEnvelopeError(w, apipkg.CodeBadInput, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		env := s.eng.Calculate(r.Context(), op, payload)
		s.respond(w, statusFor(env), env)
	}
}

func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.recorder.(audit.Noop); ok {
		s.respond(w, http.StatusNotImplemented, map[string]string{
			"error": "no audit store configured",
		})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	records, err := s.recorder.ListRecent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list calculations")
		s.respond(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list calculations",
		})
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}
	s.respond(w, http.StatusOK, map[string]any{
		"calculations": records,
		"count":        len(records),
	})
}

// statusFor maps envelope error codes onto HTTP statuses. Calculator errors
// are client errors; the envelope itself always carries the detail.
func statusFor(env *apipkg.Envelope) int {
	if env.Success {
		return http.StatusOK
	}
	switch env.Error.Code {
	case apipkg.CodeUnknownOperation:
		return http.StatusNotFound
	case apipkg.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) respondEnvelopeError(w http.ResponseWriter, code apipkg.ErrorCode, msg string) {
	s.respond(w, http.StatusBadRequest, &apipkg.Envelope{
		Success: false,
		Error:   &apipkg.Error{Code: code, Message: msg},
	})
}
