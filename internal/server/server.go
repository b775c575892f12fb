// Package server exposes the conversion broker over HTTP.
//
// Routes:
//
//	POST /api/v1/convert  JSON {content, format, version} -> image bytes or
//	                      a classified error body
//	GET  /api/v1/health   liveness probe
//
// Success and SyntaxError respond 200 with image bytes; the classified
// outcome always travels in the X-Plantview-Outcome header so clients can
// tell a rendered error image from a real diagram without sniffing bytes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/plantview/pkg/apiclient"
	"github.com/matzehuels/plantview/pkg/convert"
	"github.com/matzehuels/plantview/pkg/engine"
)

// maxRequestBytes bounds the request body well above the content validator
// ceiling so oversized documents get a classified ValidationError instead of
// a connection error.
const maxRequestBytes = 1 << 20

// Server routes API requests to the conversion broker.
type Server struct {
	broker *convert.Broker
	logger *log.Logger
	router chi.Router
}

// New creates the API server around a broker.
func New(broker *convert.Broker, logger *log.Logger) *Server {
	s := &Server{broker: broker, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxRequestBytes))
	r.Use(s.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/health", s.handleHealth)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// errorResponse is the failure body for the convert endpoint. The error key
// carries the user-facing message; outcome is the machine-readable class.
type errorResponse struct {
	Error   string          `json:"error"`
	Outcome convert.Outcome `json:"outcome"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convert.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, convert.ValidationError,
			"request body must be JSON with content and format fields")
		return
	}
	if req.Format != "" {
		f, err := engine.ParseFormat(string(req.Format))
		if err != nil {
			writeError(w, http.StatusBadRequest, convert.ValidationError, err.Error())
			return
		}
		req.Format = f
	} else {
		req.Format = engine.PNG
	}

	res := s.broker.Convert(r.Context(), req)

	w.Header().Set(apiclient.OutcomeHeader, string(res.Outcome))
	if res.HasPayload() {
		w.Header().Set("Content-Type", res.MIME)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Payload)
		return
	}
	writeError(w, statusFor(res.Outcome), res.Outcome, res.Message)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps failure outcomes to HTTP status codes. Success and
// SyntaxError never reach here; they respond 200 with image bytes.
func statusFor(o convert.Outcome) int {
	switch o {
	case convert.ValidationError:
		return http.StatusUnprocessableEntity
	case convert.Timeout:
		return http.StatusGatewayTimeout
	case convert.NetworkError, convert.SystemError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, outcome convert.Outcome, message string) {
	w.Header().Set(apiclient.OutcomeHeader, string(outcome))
	writeJSON(w, status, errorResponse{Error: message, Outcome: outcome})
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully with a short drain window.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
