package cmd

import (
	"fmt"
	"sort"

	"github.com/darthryking/projectvis/internal/kvtext"
	"github.com/darthryking/projectvis/internal/kvtree"
	"github.com/darthryking/projectvis/internal/serialize"
	"github.com/spf13/cobra"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Verify that the persisted tree survives a decode/re-encode cycle",
	Long: `Loads the configured tree file, decodes it into a Tree, re-encodes
that Tree, and diffs the two kv representations. Exercises the
round-trip property that a freshly decoded tree encodes back to the
same shape it was loaded from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		before, err := kvtext.Load(cfg.Paths.TreePath)
		if err != nil {
			return fmt.Errorf("loading tree: %w", err)
		}

		tree, err := serialize.FromKV(before)
		if err != nil {
			return fmt.Errorf("decoding tree: %w", err)
		}

		after := serialize.ToKV(tree)

		diffs := diffMaps("", before, after)
		if len(diffs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "round trip OK: re-encoded tree matches the file on disk")
			return nil
		}

		for _, d := range diffs {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		return fmt.Errorf("round trip failed: %d differences", len(diffs))
	},
}

func init() {
	rootCmd.AddCommand(roundtripCmd)
}

// diffMaps walks two kv maps in lockstep and reports every key whose
// presence, kind, or scalar value differs, prefixing each report with
// its dotted path for readability.
func diffMaps(path string, a, b *kvtree.Map) []string {
	var diffs []string

	seen := make(map[string]bool)
	keys := append(append([]string{}, a.Keys()...), b.Keys()...)
	sort.Strings(keys)
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		childPath := key
		if path != "" {
			childPath = path + "." + key
		}

		av, aok := a.Get(key)
		bv, bok := b.Get(key)
		switch {
		case aok && !bok:
			diffs = append(diffs, fmt.Sprintf("%s: present before, missing after", childPath))
		case !aok && bok:
			diffs = append(diffs, fmt.Sprintf("%s: missing before, present after", childPath))
		case av.IsMap() != bv.IsMap():
			diffs = append(diffs, fmt.Sprintf("%s: value kind differs", childPath))
		case av.IsMap():
			am, _ := av.AsMap()
			bm, _ := bv.AsMap()
			diffs = append(diffs, diffMaps(childPath, am, bm)...)
		default:
			as, _ := av.AsString()
			bs, _ := bv.AsString()
			if as != bs {
				diffs = append(diffs, fmt.Sprintf("%s: %q != %q", childPath, as, bs))
			}
		}
	}

	return diffs
}
