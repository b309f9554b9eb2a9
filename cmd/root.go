package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/darthryking/projectvis/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "projectvis",
	Short: "projectvis - tooling for the 2-D BSP visibility engine",
	Long: `projectvis builds and inspects BSP-partitioned worlds, generates
their portal graph, and floods a portal-based visibility query from a
viewpoint to produce per-visleaf shroud masks.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a projectvis config file (JSON or YAML); defaults to searching for projectvis.yaml in parent directories")
}

// loadConfig resolves --config if given, otherwise searches parent
// directories for a projectvis.yaml marker before falling back to the
// built-in defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	root, err := config.FindRoot()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(filepath.Join(root, "projectvis.yaml"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
