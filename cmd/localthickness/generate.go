package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/localthickness/internal/config"
	"github.com/MeKo-Tech/localthickness/internal/pipeline"
	"github.com/MeKo-Tech/localthickness/internal/preview"
	"github.com/MeKo-Tech/localthickness/internal/store"
	"github.com/MeKo-Tech/localthickness/internal/synth"
	"github.com/MeKo-Tech/localthickness/internal/volume"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic volume and run the local thickness pipeline against it",
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("shape", "sphere", "synthetic volume shape: sphere, slab, or noise")
	generateCmd.Flags().Int("width", 64, "volume width")
	generateCmd.Flags().Int("height", 64, "volume height")
	generateCmd.Flags().Int("depth", 64, "volume depth")
	generateCmd.Flags().Int64("seed", 1337, "deterministic seed for the noise shape")
	generateCmd.Flags().Uint8("threshold", 128, "foreground threshold")
	generateCmd.Flags().Bool("inverse", false, "invert foreground classification")
	generateCmd.Flags().Bool("mask-trim", false, "zero voxels outside the original foreground mask")
	generateCmd.Flags().String("db", "", "path to a SQLite run log; empty disables logging a run")
	generateCmd.Flags().String("preview", "", "path to write a false-color mid-depth slice PNG; empty disables")

	bindFlags := []string{"shape", "width", "height", "depth", "seed", "threshold", "inverse", "mask-trim", "db", "preview"}
	for _, f := range bindFlags {
		if err := viper.BindPFlag("generate."+f, generateCmd.Flags().Lookup(f)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", f, err))
		}
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	w := viper.GetInt("generate.width")
	h := viper.GetInt("generate.height")
	d := viper.GetInt("generate.depth")
	shape := viper.GetString("generate.shape")
	seed := viper.GetInt64("generate.seed")

	cfg := volume.Config{
		Threshold: uint8(viper.GetInt("generate.threshold")),
		Inverse:   viper.GetBool("generate.inverse"),
		MaskTrim:  viper.GetBool("generate.mask-trim"),
	}
	workers := config.Workers()

	input, err := buildShape(shape, w, h, d, seed)
	if err != nil {
		return fmt.Errorf("build synthetic volume: %w", err)
	}

	logger.Info("running pipeline", "shape", shape, "width", w, "height", h, "depth", d, "workers", workers)

	drv := pipeline.New(workers, logger)
	result, err := drv.Run(context.Background(), input, cfg)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	var maxDiameter float32
	for _, v := range result.Thickness.Values {
		if v > maxDiameter {
			maxDiameter = v
		}
	}
	logger.Info("pipeline complete", "max_diameter", maxDiameter, "total_elapsed", result.TotalElapsed)

	if dbPath := viper.GetString("generate.db"); dbPath != "" {
		if err := recordRun(dbPath, input, cfg, workers, maxDiameter, result.TotalElapsed); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	if previewPath := viper.GetString("generate.preview"); previewPath != "" {
		if err := writePreview(result.Thickness, previewPath); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		logger.Info("wrote preview", "path", previewPath)
	}

	return nil
}

func buildShape(shape string, w, h, d int, seed int64) (*volume.BinaryVolume, error) {
	switch shape {
	case "sphere":
		r := float64(min(w, min(h, d))) / 3
		return synth.Sphere(w, h, d, float64(w)/2, float64(h)/2, float64(d)/2, r)
	case "slab":
		return synth.Slab(w, h, d, w/4, 3*w/4, h/4, 3*h/4, d/4, 3*d/4)
	case "noise":
		return synth.NoiseField(w, h, d, float64(min(w, min(h, d)))/4, 0, 2.0, 2.0, 3, seed)
	default:
		return nil, fmt.Errorf("unknown shape %q: must be sphere, slab, or noise", shape)
	}
}

func recordRun(dbPath string, input *volume.BinaryVolume, cfg volume.Config, workers int, maxDiameter float32, elapsed time.Duration) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.RecordRun(store.Run{
		Width: input.W, Height: input.H, Depth: input.D,
		Threshold: cfg.Threshold, Inverse: cfg.Inverse, MaskTrim: cfg.MaskTrim,
		Workers: workers, MaxDiameter: maxDiameter, TotalElapsed: elapsed,
	})
	return err
}

func writePreview(thicknessOut *volume.FloatVolume, path string) error {
	img, err := preview.RenderSlice(thicknessOut, preview.Options{Z: thicknessOut.D / 2, Border: true})
	if err != nil {
		return err
	}
	data, err := preview.EncodePNG(img)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
