// Package main provides the tidegrid HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.ngs.io/tidegrid/internal/adapter/store"
	"go.ngs.io/tidegrid/internal/adapter/store/fes"
	"go.ngs.io/tidegrid/internal/config"
	httpHandler "go.ngs.io/tidegrid/internal/http"
	"go.ngs.io/tidegrid/internal/telemetry"
	"go.ngs.io/tidegrid/internal/usecase"
)

const version = "0.2.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("tidegrid version %s\n", version)
		return
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Exporter:       cfg.TraceExporter,
		Writer:         os.Stdout,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	logger.Info("starting tidegrid server",
		"version", version,
		"port", cfg.Port,
		"manifest", cfg.ModelManifest,
		"inference", cfg.Inference,
		"trace_exporter", cfg.TraceExporter)

	// Initialize the model store.
	var loader store.ModelLoader = fes.NewStore(logger)
	model, err := loader.Load(ctx, cfg.ModelManifest)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	opts := []usecase.Option{usecase.WithLogger(logger)}

	// Datum offsets are optional.
	if cfg.DatumOffsetsPath != "" {
		datums, err := usecase.LoadDatumOffsets(cfg.DatumOffsetsPath)
		if err != nil {
			return fmt.Errorf("load datum offsets: %w", err)
		}
		logger.Info("datum offsets loaded", "path", cfg.DatumOffsetsPath, "count", datums.Len())
		opts = append(opts, usecase.WithDatumOffsets(datums))
	} else {
		logger.Info("datum offsets disabled (DATUM_OFFSETS_PATH not set)")
	}

	predictionUC, err := usecase.NewPredictionUseCase(model, settings, opts...)
	if err != nil {
		return err
	}

	router := httpHandler.SetupRouter(predictionUC, httpHandler.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", srv.Addr,
			"health", fmt.Sprintf("http://localhost:%s/health", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("tidegrid server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  MODEL_MANIFEST          Path to the model manifest (default: ./data/model.yaml)")
	fmt.Println("  DATUM_OFFSETS_PATH      JSON file of local datum offsets (optional)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  TIME_TOLERANCE          Astronomical argument reuse window in seconds (default: 0)")
	fmt.Println("  THREAD_COUNT            Worker count, 0 for all CPUs (default: 0)")
	fmt.Println("  INFERENCE               none, linear, or fourier (default: linear)")
	fmt.Println("  GROUP_MODULATIONS       Use group nodal corrections (default: false)")
	fmt.Println("  LOG_LEVEL               debug, info, warn, or error (default: info)")
	fmt.Println("  TRACE_EXPORTER          none, stdout, or otlp (default: none)")
	fmt.Println("  SERVICE_NAME            Service name in traces (default: tidegrid)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Generate a synthetic model and serve it")
	fmt.Println("  model-generator -out ./data/model")
	fmt.Println("  MODEL_MANIFEST=./data/model/model.yaml server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                   Health check")
	fmt.Println("  GET  /metrics                  Prometheus metrics")
	fmt.Println("  GET  /v1/model                 Loaded model description")
	fmt.Println("  GET  /v1/constituents          List tidal constituents")
	fmt.Println("  GET  /v1/tides/predictions     Tide series at a location")
	fmt.Println("  POST /v1/tides/evaluate        Batch evaluation of points")
	fmt.Println()
}
