package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/kvtext"
	"github.com/darthryking/projectvis/internal/portal"
	"github.com/darthryking/projectvis/internal/serialize"
	"github.com/darthryking/projectvis/internal/shroud"
	"github.com/darthryking/projectvis/internal/visibility"
	"github.com/spf13/cobra"
)

var (
	floodFromX, floodFromY int
	floodAtX, floodAtY     int
	floodOutDir            string
)

var floodCmd = &cobra.Command{
	Use:   "flood",
	Short: "Flood visibility from a viewpoint and write one raster per visleaf",
	Long: `Loads the persisted tree and portal set, runs the portal-flood
visibility query from --from-x/--from-y facing --at-x/--at-y, and
writes one QOI raster
per visleaf reached, named by its visleaf id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		treeKV, err := kvtext.Load(cfg.Paths.TreePath)
		if err != nil {
			return fmt.Errorf("loading tree: %w", err)
		}
		tree, err := serialize.FromKV(treeKV)
		if err != nil {
			return fmt.Errorf("decoding tree: %w", err)
		}

		portalKV, err := kvtext.Load(cfg.Paths.PortalPath)
		if err != nil {
			return fmt.Errorf("loading portals: %w", err)
		}
		portals, err := serialize.PortalsFromKV(tree, portalKV)
		if err != nil {
			return fmt.Errorf("decoding portals: %w", err)
		}

		registry := portal.NewRegistry(tree)
		registry.Load(portals)

		viewPos := geometry.Point{X: floodFromX, Y: floodFromY}
		viewTarget := geometry.Point{X: floodAtX, Y: floodAtY}

		opts := visibility.Options{
			FOV:       cfg.Viewer.FOVRadians(),
			BlockSize: cfg.Rasterize.BlockSize,
		}

		masks, err := visibility.Flood(tree, registry, viewPos, viewTarget, opts)
		if err != nil {
			return fmt.Errorf("flooding: %w", err)
		}

		if floodOutDir != "" {
			if err := os.MkdirAll(floodOutDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}

		for leaf, mask := range masks {
			name := fmt.Sprintf("visleaf-%d.qoi", tree.LeafID(leaf))
			path := name
			if floodOutDir != "" {
				path = filepath.Join(floodOutDir, name)
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			err = shroud.ExportQOI(f, mask)
			closeErr := f.Close()
			if err != nil {
				return fmt.Errorf("encoding %s: %w", path, err)
			}
			if closeErr != nil {
				return fmt.Errorf("closing %s: %w", path, closeErr)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d visleaf rasters\n", len(masks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(floodCmd)
	floodCmd.Flags().IntVar(&floodFromX, "from-x", 0, "viewpoint X coordinate")
	floodCmd.Flags().IntVar(&floodFromY, "from-y", 0, "viewpoint Y coordinate")
	floodCmd.Flags().IntVar(&floodAtX, "at-x", 0, "facing target X coordinate")
	floodCmd.Flags().IntVar(&floodAtY, "at-y", 0, "facing target Y coordinate")
	floodCmd.Flags().StringVarP(&floodOutDir, "out", "o", "", "directory to write visleaf rasters into")
}
