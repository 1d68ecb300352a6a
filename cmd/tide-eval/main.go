// Command tide-eval evaluates a tidal atlas from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go.ngs.io/tidegrid/internal/adapter/store/fes"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/inference"
	"go.ngs.io/tidegrid/internal/usecase"
)

var version = "0.2.0"

var (
	rootCmd = &cobra.Command{
		Use:           "tide-eval",
		Short:         "Evaluate ocean tides from a gridded harmonic atlas",
		Long:          `tide-eval loads a model manifest and predicts tide heights for points read from CSV, for a time series at one location, or lists the constituents of the model.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	manifestPath     string
	timeTolerance    float64
	inferenceName    string
	threadCount      int
	groupModulations bool
	verbose          bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&manifestPath, "manifest", "m", "./data/model.yaml", "Model manifest")
	flags.Float64Var(&timeTolerance, "tolerance", 0, "Astronomical argument reuse window in seconds")
	flags.StringVar(&inferenceName, "inference", "linear", "Minor wave inference: none, linear, or fourier")
	flags.IntVarP(&threadCount, "threads", "j", 0, "Worker count, 0 for all CPUs")
	flags.BoolVar(&groupModulations, "group", false, "Use group nodal corrections")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(evalCmd, seriesCmd, constituentsCmd, manifestCmd)
	manifestCmd.AddCommand(manifestCheckCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func settings() (engine.Settings, error) {
	kind, err := inference.ParseInterpolationType(inferenceName)
	if err != nil {
		return engine.Settings{}, err
	}
	s := engine.Settings{
		TimeTolerance:    timeTolerance,
		Interpolation:    kind,
		ThreadCount:      threadCount,
		GroupModulations: groupModulations,
	}
	return s, s.Validate()
}

// openUseCase loads the manifest and builds the evaluation pipeline.
func openUseCase(cmd *cobra.Command, opts ...usecase.Option) (*usecase.PredictionUseCase, error) {
	s, err := settings()
	if err != nil {
		return nil, err
	}
	logger := newLogger()
	m, err := fes.NewStore(logger).Load(cmd.Context(), manifestPath)
	if err != nil {
		return nil, err
	}
	return usecase.NewPredictionUseCase(m, s, append([]usecase.Option{usecase.WithLogger(logger)}, opts...)...)
}
