package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/vkbind/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Type-check a generated package and report problems by function",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	problems, err := verify.Dir(dir)
	if err != nil {
		return err
	}
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, p)
	}
	if err := verify.Error(problems); err != nil {
		return err
	}
	okColor.Print("ok")
	fmt.Printf("  %s\n", dir)
	return nil
}
