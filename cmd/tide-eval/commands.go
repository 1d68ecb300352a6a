package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go.ngs.io/tidegrid/internal/adapter/store/csv"
	"go.ngs.io/tidegrid/internal/adapter/store/fes"
	"go.ngs.io/tidegrid/internal/usecase"
)

var (
	evalCmd = &cobra.Command{
		Use:   "eval [points.csv]",
		Short: "Evaluate tides for CSV rows of lon,lat,time",
		Long:  `Reads points from the file (or stdin when omitted or "-") and writes one result row per point.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEval,
	}
	outputPath string

	seriesCmd = &cobra.Command{
		Use:   "series",
		Short: "Predict a tide series with highs and lows at one location",
		RunE:  runSeries,
	}
	seriesLat      float64
	seriesLon      float64
	seriesStart    string
	seriesEnd      string
	seriesInterval time.Duration
	seriesDatum    string
	datumOffsets   string

	constituentsCmd = &cobra.Command{
		Use:   "constituents",
		Short: "List the constituent catalog and what the model provides",
		RunE:  runConstituents,
	}
	onlyUsed bool

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Inspect model manifests",
	}
	manifestCheckCmd = &cobra.Command{
		Use:   "check [model.yaml]",
		Short: "Validate a manifest and, with --load, every grid it references",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runManifestCheck,
	}
	loadGrids bool
)

func init() {
	evalCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "Output CSV file")

	f := seriesCmd.Flags()
	f.Float64Var(&seriesLat, "lat", 0, "Latitude in degrees")
	f.Float64Var(&seriesLon, "lon", 0, "Longitude in degrees")
	f.StringVar(&seriesStart, "start", "", "Start time (RFC3339)")
	f.StringVar(&seriesEnd, "end", "", "End time (RFC3339, default start + 24h)")
	f.DurationVar(&seriesInterval, "interval", 10*time.Minute, "Sampling interval")
	f.StringVar(&seriesDatum, "datum", "MSL", "MSL or LOCAL")
	f.StringVar(&datumOffsets, "datum-offsets", "", "JSON file of local datum offsets")
	_ = seriesCmd.MarkFlagRequired("lat")
	_ = seriesCmd.MarkFlagRequired("lon")
	_ = seriesCmd.MarkFlagRequired("start")

	constituentsCmd.Flags().BoolVar(&onlyUsed, "used", false, "Only modeled and inferred constituents")
	manifestCheckCmd.Flags().BoolVar(&loadGrids, "load", false, "Open and cross-check every NetCDF file")
}

func runEval(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		in = file
	}
	points, err := csv.ReadPoints(in)
	if err != nil {
		return err
	}

	uc, err := openUseCase(cmd)
	if err != nil {
		return err
	}
	result, err := uc.EvaluatePoints(cmd.Context(), points)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outputPath != "-" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		out = file
	}
	return csv.WriteResults(out, points, result)
}

func runSeries(cmd *cobra.Command, _ []string) error {
	start, err := time.Parse(time.RFC3339, seriesStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end := start.Add(24 * time.Hour)
	if seriesEnd != "" {
		if end, err = time.Parse(time.RFC3339, seriesEnd); err != nil {
			return fmt.Errorf("--end: %w", err)
		}
	}
	req := usecase.PredictionRequest{
		Lat:      seriesLat,
		Lon:      seriesLon,
		Start:    start,
		End:      end,
		Interval: seriesInterval,
		Datum:    strings.ToUpper(seriesDatum),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var opts []usecase.Option
	if datumOffsets != "" {
		datums, err := usecase.LoadDatumOffsets(datumOffsets)
		if err != nil {
			return err
		}
		opts = append(opts, usecase.WithDatumOffsets(datums))
	}
	uc, err := openUseCase(cmd, opts...)
	if err != nil {
		return err
	}
	resp, err := uc.Execute(cmd.Context(), req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func runConstituents(cmd *cobra.Command, _ []string) error {
	uc, err := openUseCase(cmd)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSPECIES\tSPEED (deg/h)\tSOURCE")
	for _, c := range uc.Constituents() {
		source := "-"
		switch {
		case c.Modeled:
			source = "model"
		case c.Inferred:
			source = "inferred"
		case onlyUsed:
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.7f\t%s\n", c.Name, c.Species, c.SpeedDegPerHr, source)
	}
	return w.Flush()
}

func runManifestCheck(cmd *cobra.Command, args []string) error {
	path := manifestPath
	if len(args) == 1 {
		path = args[0]
	}
	manifest, err := fes.ReadManifest(path)
	if err != nil {
		return err
	}
	files, err := manifest.Files()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "model %q: %d constituents\n", manifest.Name, len(files))
	for _, f := range files {
		fmt.Fprintf(out, "  %-8s %s\n", f.Constituent, f.Path)
	}
	if !loadGrids {
		return nil
	}
	m, err := fes.LoadManifest(cmd.Context(), manifest)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "grid: %d cells, precision %s, row-major %t\n",
		m.Grid.Size(), m.Grid.Precision(), m.Grid.RowMajor())
	return nil
}
