package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/db"
	"github.com/danielhkuo/quickly-pulse/handlers"
	"github.com/danielhkuo/quickly-pulse/metrics"
	"github.com/danielhkuo/quickly-pulse/middleware"
	"github.com/danielhkuo/quickly-pulse/router"
	"github.com/danielhkuo/quickly-pulse/synthesis"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Synthesis is optional; without a key the endpoint answers 503
	var synth synthesis.Synthesizer
	if cfg.SynthesisEnabled() {
		s, err := synthesis.NewOpenAISynthesizer(synthesis.Config{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			TokenBudget: cfg.SynthesisTokenBudget,
		})
		if err != nil {
			slog.Error("synthesis setup failed", "error", err)
			os.Exit(1)
		}
		synth = s
		slog.Info("Synthesis enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Warn("OPENAI_API_KEY not set, synthesis disabled")
	}

	live := handlers.NewLive(synth, metrics.NewCollector("quickly_pulse"))

	// Create router
	mux := router.NewRouter(dbConn, cfg, live)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
