package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrewmoore73/calibrimbore/calib"
	"github.com/andrewmoore73/calibrimbore/catalog"
	"github.com/andrewmoore73/calibrimbore/render"
)

func newEstimateCommand() *cobra.Command {
	var (
		modelPath   string
		catalogURL  string
		cachePath   string
		fieldRadius float64
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "estimate <positions.csv>",
		Short: "Estimate calibrated magnitudes at sky positions",
		Long: "Estimate reads ra,dec pairs (degrees, one per line) and prints\n" +
			"the calibrated magnitude, uncertainty and field reddening per row.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, args[0], modelPath, catalogURL, cachePath, fieldRadius, concurrency)
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "coefficient file written by compose (required)")
	cmd.Flags().StringVarP(&catalogURL, "catalog", "c", "", "base URL of the cone-search service (required)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "sqlite file caching cone-search results")
	cmd.Flags().Float64Var(&fieldRadius, "field-radius", 0.2, "field grouping radius in degrees")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "fields processed in parallel")
	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("catalog")
	return cmd
}

func runEstimate(cmd *cobra.Command, positionsPath, modelPath, catalogURL, cachePath string, fieldRadius float64, concurrency int) error {
	load := render.LoadModel
	if strings.EqualFold(filepath.Ext(modelPath), ".csv") {
		load = render.LoadModelCSV
	}
	model, err := load(modelPath)
	if err != nil {
		return err
	}
	targets, err := loadTargets(positionsPath)
	if err != nil {
		return err
	}

	var querier catalog.Querier = catalog.NewClient(catalogURL, catalog.WithLogger(logger))
	if cachePath != "" {
		cache, err := catalog.NewCache(cachePath, querier)
		if err != nil {
			return err
		}
		defer cache.Close()
		querier = cache
	}

	est, err := calib.NewEstimator(model, querier,
		calib.WithFieldRadius(fieldRadius),
		calib.WithConcurrency(concurrency),
		calib.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("estimating",
		zap.Int("targets", len(targets)),
		zap.String("model", model.Target))

	results := est.Estimate(cmd.Context(), targets)

	fmt.Println("# ra dec mag sigma ebv ebv_sigma flags")
	failed := 0
	for i, r := range results {
		t := targets[i]
		if r.Err != nil {
			failed++
			fmt.Printf("%.6f %.6f - - - - error: %v\n", t.RA, t.Dec, r.Err)
			continue
		}
		flags := "-"
		if r.OutOfDomain {
			flags = "out-of-domain"
		}
		fmt.Printf("%.6f %.6f %.4f %.4f %.4f %.4f %s\n",
			t.RA, t.Dec, r.Magnitude, r.Sigma, r.Reddening, r.ReddeningSigma, flags)
	}
	if failed > 0 {
		logger.Warn("some targets failed", zap.Int("failed", failed), zap.Int("total", len(targets)))
	}
	return nil
}

// loadTargets reads ra,dec rows. Comma or whitespace separated, '#'
// comments and blank lines ignored.
func loadTargets(path string) ([]calib.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var targets []calib.Target
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s: line %d: want ra and dec", path, line)
		}
		ra, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %v", path, line, err)
		}
		dec, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %v", path, line, err)
		}
		targets = append(targets, calib.Target{RA: ra, Dec: dec})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%s: no positions", path)
	}
	return targets, nil
}
