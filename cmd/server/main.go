// Symptom Predictor Service
// An HTTP service that maps a set of reported symptoms to a predicted
// condition using a pre-trained classifier.
//
// This service provides:
// - A fixed symptom catalog that defines the model's feature columns
// - Binary or severity-weighted feature encoding
// - Session-scoped symptom selections with TTL expiry
// - HTTP API for stateless and session-based prediction
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/symptomcheck/predictor-service/internal/api"
	"github.com/symptomcheck/predictor-service/internal/catalog"
	"github.com/symptomcheck/predictor-service/internal/config"
	"github.com/symptomcheck/predictor-service/internal/encoder"
	"github.com/symptomcheck/predictor-service/internal/predictor"
	"github.com/symptomcheck/predictor-service/internal/session"
)

func main() {
	// Command-line flags
	configPath := flag.String("config", "", "Path to YAML config file (overrides CONFIG_PATH)")
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Port = *port
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load symptom catalog: %v", err)
	}

	model, err := predictor.Load(cfg.Predictor())
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	fatal := func(format string, args ...interface{}) {
		closeModel(model)
		log.Fatalf(format, args...)
	}

	if err := predictor.VerifyWithFallback(model, cat.Names(), string(cfg.Encoding()), cfg.AllowDimensionFallback); err != nil {
		fatal("Model configuration error: %v", err)
	}

	enc, err := encoder.New(cat, encoder.Options{
		Encoding:               cfg.Encoding(),
		Unknown:                cfg.UnknownPolicy(),
		Dimensions:             model.Dimensions(),
		AllowDimensionFallback: cfg.AllowDimensionFallback,
		Suggestions:            cfg.SuggestionCount,
	})
	if err != nil {
		fatal("Failed to create encoder: %v", err)
	}

	sessions := session.NewStore(cfg.SessionTTL())
	sweeper, err := session.StartSweeper(sessions, cfg.SessionSweepSchedule)
	if err != nil {
		fatal("Failed to start session sweeper: %v", err)
	}

	// Set up a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(cat, enc, model, sessions, cfg.ModelBackend)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Symptom Predictor Service starting on %s", addr)
		log.Printf("📊 Catalog: %d symptoms, model: %d features (%s), encoding: %s, unknown symptoms: %s",
			cat.Len(), model.Dimensions(), cfg.ModelBackend, enc.Encoding(), enc.Policy())
		log.Printf("📡 Endpoints:")
		log.Printf("   GET    /symptoms                     - Symptom catalog")
		log.Printf("   POST   /predict                      - Predict from a symptom list")
		log.Printf("   POST   /sessions                     - Start a session")
		log.Printf("   GET    /sessions/{id}                - Session state")
		log.Printf("   POST   /sessions/{id}/symptoms       - Add a symptom")
		log.Printf("   DELETE /sessions/{id}/symptoms/{name} - Remove a symptom")
		log.Printf("   DELETE /sessions/{id}/symptoms       - Reset the selection")
		log.Printf("   POST   /sessions/{id}/predict        - Predict from the session")
		log.Printf("   GET    /health                       - Health check")
		log.Printf("   GET    /stats                        - Service statistics")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	} else {
		log.Println("Server gracefully stopped")
	}
	closeModel(model)
}

// closeModel releases backends that hold native resources.
func closeModel(p predictor.Predictor) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Printf("Failed to close model: %v", err)
	}
}
