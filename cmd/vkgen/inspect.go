package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/generate"
)

var (
	snapshotPath string
	fromPath     string
)

var inspectKinds = []defs.Kind{
	defs.KindEnum, defs.KindConst, defs.KindStruct, defs.KindUnion,
	defs.KindFnPointer, defs.KindTypeAlias, defs.KindHandle,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the classified definitions and dispatch tables",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&configDir, "config", "c", "", "directory containing vkgen.toml")
	inspectCmd.Flags().StringVar(&snapshotPath, "cbor", "", "write a CBOR snapshot of the model to this file")
	inspectCmd.Flags().StringVar(&fromPath, "from", "", "summarize a CBOR snapshot written by --cbor instead of running the pipeline")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if fromPath != "" {
		return inspectSnapshot(fromPath, verbosity > 0)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := generate.LoadInputs(cfg)
	if err != nil {
		return err
	}
	res, err := generate.Run(cfg, in)
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	fmt.Printf("digest %s\n", res.Digest)
	printCounts(res.Model.Counts())
	for _, p := range res.Plans {
		fmt.Printf("table %-24s %-8s %-7s %3d commands\n", p.Name, p.Level, p.Policy, len(p.Commands))
	}

	if snapshotPath != "" {
		data, err := defs.MarshalSnapshot(res.Model)
		if err != nil {
			return err
		}
		if err := os.WriteFile(snapshotPath, data, 0o644); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		okColor.Print("ok")
		fmt.Printf("  %s\n", snapshotPath)
	}
	return nil
}

func printCounts(counts map[defs.Kind]int) {
	for _, k := range inspectKinds {
		fmt.Printf("%-12s %d\n", k, counts[k])
	}
}

// inspectSnapshot prints the counts of a stored snapshot, and its entries
// when listing is set.
func inspectSnapshot(path string, listing bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	snap, err := defs.UnmarshalSnapshot(data)
	if err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}
	fmt.Printf("snapshot version %d\n", snap.Version)
	counts := map[defs.Kind]int{}
	for _, e := range snap.Entries {
		counts[e.Kind]++
	}
	printCounts(counts)
	if listing {
		for _, e := range snap.Entries {
			fmt.Printf("%-12s %s\n", e.Kind, e.Name)
		}
	}
	return nil
}
