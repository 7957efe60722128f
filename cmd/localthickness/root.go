package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/localthickness/internal/config"
)

var cfgFile string
var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "localthickness",
	Short: "Compute Hildebrand-Ruegsegger local thickness maps for binary volumes",
	Long: `localthickness runs the squared-EDT -> DistanceRidge -> LocalThickness -> CleanUp
pipeline against a binary 3D volume and emits a per-voxel diameter map.

This command operates on synthetic test volumes (spheres, slabs, Perlin
noise fields) rather than reading an external image format, since volumetric
image I/O sits outside the pipeline's own scope.`,
}

func Execute() {
	config.BindPersistentFlags(rootCmd, &cfgFile)
	cobra.OnInitialize(func() {
		config.ReadConfigFile(cfgFile)
		logger = config.NewLogger()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
