package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/darthryking/projectvis/internal/bsptree"
	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/kvtext"
	"github.com/darthryking/projectvis/internal/portal"
	"github.com/darthryking/projectvis/internal/serialize"
	"github.com/spf13/cobra"
)

var (
	buildScenePath string
	buildOutDir    string
)

var buildCmd = &cobra.Command{
	Use:   "build {scene.json}",
	Short: "Build a BSP world from a scene description and persist it",
	Long: `Reads a small JSON scene description (a sequence of leaf divisions),
constructs the BSP tree, generates its portal graph, and writes both
the tree and the portal set to the configured persistence paths.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buildScenePath = args[0]

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		scene, err := loadScene(buildScenePath)
		if err != nil {
			return fmt.Errorf("loading scene %s: %w", buildScenePath, err)
		}

		width, height := cfg.World.Width, cfg.World.Height
		if scene.WorldWidth != 0 {
			width = scene.WorldWidth
		}
		if scene.WorldHeight != 0 {
			height = scene.WorldHeight
		}

		tree, err := bsptree.New(width, height)
		if err != nil {
			return fmt.Errorf("constructing tree: %w", err)
		}

		for i, div := range scene.Divides {
			orientation, err := div.parseOrientation()
			if err != nil {
				return fmt.Errorf("divide %d: %w", i, err)
			}

			leaf, err := tree.LeafFromCoords(div.At.X, div.At.Y)
			if err != nil {
				return fmt.Errorf("divide %d: locating leaf at %v: %w", i, div.At, err)
			}

			left, right, err := tree.DivideLeaf(leaf, orientation, div.Partition)
			if err != nil {
				return fmt.Errorf("divide %d: %w", i, err)
			}

			if div.LeftSolid != nil {
				tree.SetLeafSolid(left, *div.LeftSolid)
			}
			if div.RightSolid != nil {
				tree.SetLeafSolid(right, *div.RightSolid)
			}
		}

		logger := log.New(os.Stderr, "build: ", log.LstdFlags)

		registry := portal.NewRegistry(tree)
		registry.Logger = logger
		if err := registry.Generate(); err != nil {
			return fmt.Errorf("generating portals: %w", err)
		}

		treePath := cfg.Paths.TreePath
		portalPath := cfg.Paths.PortalPath
		if buildOutDir != "" {
			treePath = joinOutDir(buildOutDir, treePath)
			portalPath = joinOutDir(buildOutDir, portalPath)
		}

		if err := kvtext.Save(treePath, serialize.ToKV(tree)); err != nil {
			return fmt.Errorf("saving tree: %w", err)
		}
		if err := kvtext.Save(portalPath, serialize.PortalsToKV(tree, registry.Portals())); err != nil {
			return fmt.Errorf("saving portals: %w", err)
		}

		logger.Printf("wrote %s (%d elements) and %s (%d portals)",
			treePath, countElements(tree), portalPath, len(registry.Portals()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "directory to write the tree/portal files into, overriding config paths")
}

// sceneDescription is the small JSON authoring format for a world: an
// optional size override plus an ordered list of leaf divisions,
// each addressed by a point inside the leaf being split.
type sceneDescription struct {
	WorldWidth  int        `json:"worldWidth,omitempty"`
	WorldHeight int        `json:"worldHeight,omitempty"`
	Divides     []divideOp `json:"divides"`
}

type divideOp struct {
	At          geometry.Point `json:"at"`
	Orientation string         `json:"orientation"`
	Partition   int            `json:"partition"`
	LeftSolid   *bool          `json:"leftSolid,omitempty"`
	RightSolid  *bool          `json:"rightSolid,omitempty"`
}

func (d divideOp) parseOrientation() (bsptree.Orientation, error) {
	switch d.Orientation {
	case "H", "Horizontal":
		return bsptree.Horizontal, nil
	case "V", "Vertical":
		return bsptree.Vertical, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q", d.Orientation)
	}
}

func loadScene(path string) (*sceneDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scene sceneDescription
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func countElements(tree *bsptree.Tree) int {
	n := 0
	for range tree.IterElements() {
		n++
	}
	return n
}

// joinOutDir redirects a configured persistence path into outDir,
// discarding whatever directory the configured path carried.
func joinOutDir(outDir, path string) string {
	return filepath.Join(outDir, filepath.Base(path))
}
