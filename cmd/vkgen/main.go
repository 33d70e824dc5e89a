// Command vkgen generates Go bindings and a dispatch-table loader from
// Vulkan-style declarations.
//
// Usage:
//
//	vkgen generate [-c dir] [-o dir]   # write bindings.go and loader.go
//	vkgen inspect [-c dir] [--cbor f]  # summarize the classified model
//	vkgen verify [dir]                 # type-check a generated package
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/vkbind/config"
)

var (
	verbosity int
	logPath   string
	configDir string

	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:           "vkgen",
	Short:         "Generate Go bindings and loaders for Vulkan-style APIs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var path *string
		if logPath != "" {
			path = &logPath
		}
		commonlog.Configure(verbosity, path)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig finds vkgen.toml in the -c directory or above the working
// directory. Without one the defaults apply.
func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.Load(configDir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no %s found; pass -c or create one", config.FileName)
	}
	return cfg, nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		warnColor.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
