package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/demandcast/backend/internal/api/handlers"
	"github.com/demandcast/backend/pkg/logger"
)

// RouterDeps are the handlers the router wires up.
type RouterDeps struct {
	Validation  *handlers.ValidationHandler
	Predictions *handlers.PredictionHandler
	Model       *handlers.ModelHandler
	Hyperparams *handlers.HyperparamsHandler
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps RouterDeps, limiter *rate.Limiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Dataset validation
	api.HandleFunc("/data/validate", deps.Validation.ValidateDataset).Methods("POST")

	// Model lifecycle
	api.HandleFunc("/model/train", deps.Model.Train).Methods("POST")
	api.HandleFunc("/model/status", deps.Model.Status).Methods("GET")

	// Predictions
	api.HandleFunc("/predictions/run", deps.Predictions.RunPrediction).Methods("POST")
	api.HandleFunc("/predictions/recent", deps.Predictions.RecentRuns).Methods("GET")
	api.HandleFunc("/predictions/runs/{id}/items", deps.Predictions.RunItems).Methods("GET")

	// Hyperparameter configurations
	api.HandleFunc("/hyperparams", deps.Hyperparams.GetActive).Methods("GET")
	api.HandleFunc("/hyperparams", deps.Hyperparams.Update).Methods("PUT")
	api.HandleFunc("/hyperparams/reset", deps.Hyperparams.Reset).Methods("POST")
	api.HandleFunc("/hyperparams/presets", deps.Hyperparams.ListPresets).Methods("GET")
	api.HandleFunc("/hyperparams/history", deps.Hyperparams.History).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware(limiter))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "demandcast-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
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

// rateLimitMiddleware applies a server-wide request rate limit. Training
// and prediction runs are CPU heavy, so bursts are bounded rather than
// queued.
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
