package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrewmoore73/calibrimbore/calib"
	"github.com/andrewmoore73/calibrimbore/fit/composite"
	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
	"github.com/andrewmoore73/calibrimbore/phot/library"
	"github.com/andrewmoore73/calibrimbore/phot/synth"
	"github.com/andrewmoore73/calibrimbore/render"
)

func newComposeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose <run-file.yaml>",
		Short: "Fit a composite filter from a run file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(args[0])
		},
	}
	return cmd
}

func runCompose(runFile string) error {
	cfg, err := loadRunConfig(runFile)
	if err != nil {
		return err
	}

	target, err := bandpass.Load(cfg.Target.File, cfg.Target.Name, bandpass.ParseSystem(cfg.Target.System))
	if err != nil {
		return err
	}
	refs := make([]*bandpass.Bandpass, len(cfg.Reference))
	for i, ref := range cfg.Reference {
		refs[i], err = bandpass.Load(ref.File, ref.Name, bandpass.ParseSystem(ref.System))
		if err != nil {
			return err
		}
	}

	var vega *synth.Spectrum
	if cfg.Vega != "" {
		if vega, err = synth.LoadSpectrum(cfg.Vega, "vega"); err != nil {
			return err
		}
	}

	opts := []calib.BuildOption{calib.WithVega(vega), calib.WithBuildLogger(logger)}
	blue, red := "g", "r"
	if len(cfg.Fit.ColorBands) == 2 {
		blue, red = cfg.Fit.ColorBands[0], cfg.Fit.ColorBands[1]
		opts = append(opts, calib.WithColorBands(blue, red))
	}
	if cfg.Fit.ColorCoeff != 0 {
		opts = append(opts, calib.WithColorCoeff(cfg.Fit.ColorCoeff))
	}
	if len(cfg.Fit.Window) == 2 {
		opts = append(opts, calib.WithWindow(cfg.Fit.Window[0], cfg.Fit.Window[1]))
	}
	if cfg.Fit.NonNegative {
		opts = append(opts, calib.WithFitOptions(composite.WithPolicy(composite.PolicyNonNegative)))
	}

	lib, err := buildLibrary(cfg, refs, blue, red, vega)
	if err != nil {
		return err
	}

	model, err := calib.Build(target, refs, lib, opts...)
	if err != nil {
		return err
	}

	fmt.Println(render.CompositeEquation(model))
	fmt.Println(render.CubicEquation(model))
	fmt.Println(render.REquation(model))
	if model.Fit != nil {
		fmt.Printf("residual rms %.5f over %d templates (%d clipped)\n",
			model.Fit.RMS, len(model.Fit.Used), model.Fit.Clipped)
	}

	if cfg.Output != "" {
		save := render.SaveModel
		if strings.EqualFold(filepath.Ext(cfg.Output), ".csv") {
			save = render.SaveModelCSV
		}
		if err := save(cfg.Output, model); err != nil {
			return err
		}
		logger.Info("model written", zap.String("path", cfg.Output))
	}
	return nil
}

// buildLibrary assembles the blackbody template library on the run
// file's grid, with colours measured through the named reference bands.
func buildLibrary(cfg *runConfig, refs []*bandpass.Bandpass, blue, red string, vega *synth.Spectrum) (*library.Library, error) {
	grid := library.Grid(cfg.Library.GridLo, cfg.Library.GridHi, cfg.Library.GridStep)
	specs, err := library.Blackbody(cfg.Library.Count, cfg.Library.TempMin, cfg.Library.TempMax, grid)
	if err != nil {
		return nil, err
	}

	var blueBand, redBand *bandpass.Bandpass
	for _, b := range refs {
		switch b.Name {
		case blue:
			blueBand = b
		case red:
			redBand = b
		}
	}
	if blueBand == nil || redBand == nil {
		return nil, fmt.Errorf("colour bands %s, %s not among the reference bands", blue, red)
	}
	bluePhot, err := synth.NewPhotometer(blueBand, vega)
	if err != nil {
		return nil, err
	}
	redPhot, err := synth.NewPhotometer(redBand, vega)
	if err != nil {
		return nil, err
	}
	return library.New(blue+"-"+red, specs, bluePhot, redPhot)
}
