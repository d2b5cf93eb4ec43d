package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/discordauth/internal/httperr"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
)

type ctxKey string

const ctxRequestIDKey ctxKey = "request_id"

// GetRequestID devuelve el request id del contexto, "" si no hay.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// withRequestID propaga X-Request-ID o genera uno nuevo.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestIDKey, rid)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.status = http.StatusOK
		s.wroteHeader = true
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// withLogging inyecta un logger scoped (request_id, method, path) y loguea
// el final de cada request con nivel según el status.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := logger.L().With(
			logger.RequestID(GetRequestID(r.Context())),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.ClientIP(clientIP(r)),
		)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.ToContext(r.Context(), reqLog)))

		fields := []zap.Field{
			logger.Status(rec.status),
			zap.Int("bytes", rec.bytes),
			logger.DurationMs(time.Since(start).Milliseconds()),
		}
		switch {
		case rec.status >= 500:
			reqLog.Error("request failed", fields...)
		case rec.status >= 400:
			reqLog.Warn("request completed with client error", fields...)
		default:
			reqLog.Info("request completed", fields...)
		}
	})
}

// withRecover captura panics y responde 500.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.From(r.Context()).Error("panic recovered", logger.Op("recover"), zap.Any("panic", rec))
				httperr.WriteError(w, r, httperr.ErrInternalServerError.WithDetail("panic recovered"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withSecurityHeaders: cabeceras por defecto para una API sin HTML.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if isHTTPS(r) {
			h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
