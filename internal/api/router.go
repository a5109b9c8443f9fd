// Package api provides HTTP routing for the prediction service.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d - %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Apply middleware
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	// Catalog and stateless prediction
	r.HandleFunc("/symptoms", handler.HandleSymptoms).Methods("GET")
	r.HandleFunc("/predict", handler.HandlePredict).Methods("POST", "OPTIONS")

	// Sessions keep a running selection between interactions
	r.HandleFunc("/sessions", handler.HandleCreateSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{id}", handler.HandleGetSession).Methods("GET")
	r.HandleFunc("/sessions/{id}", handler.HandleDeleteSession).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/sessions/{id}/symptoms", handler.HandleAddSymptom).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{id}/symptoms", handler.HandleResetSymptoms).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/symptoms/{name}", handler.HandleRemoveSymptom).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/sessions/{id}/predict", handler.HandleSessionPredict).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", handler.HandleHealth).Methods("GET")
	r.HandleFunc("/stats", handler.HandleStats).Methods("GET")

	return r
}
