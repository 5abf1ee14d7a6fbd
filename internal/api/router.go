package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-screener/internal/api/handlers"
	"github.com/wonny/aegis-screener/pkg/database"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// NewRouter creates and configures the HTTP router; db may be nil
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(screenHandler *handlers.ScreenHandler, db *database.DB, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	// Screening endpoints
	// 루트 라우터에 등록해야 메서드 불일치가 405로 응답됨
	r.HandleFunc("/api/screen", screenHandler.Screen).Methods("GET")
	r.HandleFunc("/api/chart/{ticker}", screenHandler.Chart).Methods("GET")

	// Streaming progress
	r.HandleFunc("/ws/screen", screenHandler.Stream).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status, including the bar store when configured
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "aegis-screener-api",
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			health, err := db.HealthCheck(ctx)
			body["database"] = health
			if err != nil {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"query":    r.URL.RawQuery,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
