package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/vkbind/generate"
)

var outputDir string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write bindings and loader for the configured declarations",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&configDir, "config", "c", "", "directory containing vkgen.toml")
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides output.dir)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
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

	paths, err := generate.Write(cfg, res)
	if err != nil {
		return err
	}
	for _, p := range paths {
		okColor.Print("ok")
		fmt.Printf("  %s\n", p)
	}
	commands := 0
	for _, p := range res.Plans {
		commands += len(p.Commands)
	}
	fmt.Printf("%d dispatch tables, %d commands, %d warnings\n", len(res.Plans), commands, len(res.Warnings))
	return nil
}
