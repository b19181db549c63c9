package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/kaiord/pipeline"
)

var (
	exportOut       string
	exportFormat    string
	exportOverwrite bool
	exportFTP       float64
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write krd.json, a records or steps table and summary.json for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.Run(pipeline.Options{
			InputPath: args[0],
			OutDir:    exportOut,
			Format:    exportFormat,
			Overwrite: exportOverwrite,
			FTPWatts:  exportFTP,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printMetric(out, "KRD", res.KRDPath)
		printMetric(out, "Table", res.TablePath)
		printMetric(out, "Summary", res.SummaryPath)
		for _, w := range res.Warnings {
			fmt.Fprintln(out, color.YellowString("  warning: %s", w))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory")
	exportCmd.Flags().StringVar(&exportFormat, "format", "parquet", "Table format: parquet or csv")
	exportCmd.Flags().BoolVar(&exportOverwrite, "overwrite", false, "Allow writing into a non-empty directory")
	exportCmd.Flags().Float64Var(&exportFTP, "ftp", 0, "FTP in watts (estimated from the best 20 minutes when omitted)")
	_ = exportCmd.MarkFlagRequired("out")
}
