package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/kaiord"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a file converts to a well-formed KRD document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kaiord.ReadFile(args[0], kaiord.Options{Logger: logger})
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.RedString("invalid"), args[0])
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s)\n", color.GreenString("valid"), args[0], k.Type, k.Metadata.Sport)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
