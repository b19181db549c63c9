package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/kaiord"
)

var (
	convertInput   string
	convertOutput  string
	convertBatch   string
	convertTo      string
	convertOutDir  string
	convertWorkers int
	convertZwift   zwiftFlags
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one file, or every file in a directory with --batch",
	Example: `  kaiord convert -i ride.fit -o ride.zwo
  kaiord convert --batch plans --to fit --out plans_fit --workers 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := convertZwift.converterOptions(cmd)
		if err != nil {
			return err
		}
		if convertBatch != "" {
			return runBatch(cmd, opts)
		}
		if convertInput == "" || convertOutput == "" {
			return errors.New("convert needs --input and --output, or --batch")
		}
		if err := kaiord.ConvertFile(convertInput, convertOutput, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", color.GreenString("converted"), convertInput, convertOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Input file")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file, format taken from the extension")
	convertCmd.Flags().StringVar(&convertBatch, "batch", "", "Convert every supported file in this directory")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Batch output format: fit, tcx, zwo or krd")
	convertCmd.Flags().StringVar(&convertOutDir, "out", "", "Batch output directory")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 0, "Concurrent batch conversions (default from config)")
	convertZwift.register(convertCmd)
}

func runBatch(cmd *cobra.Command, opts kaiord.Options) error {
	if convertTo == "" || convertOutDir == "" {
		return errors.New("--batch needs --to and --out")
	}
	to, err := kaiord.ParseFormat(convertTo)
	if err != nil {
		return err
	}
	jobs, err := kaiord.PlanBatch(convertBatch, convertOutDir, to)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("no convertible files in %s", convertBatch))
		return nil
	}

	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers = convertWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := kaiord.ConvertBatch(ctx, jobs, kaiord.BatchOptions{Options: opts, Workers: workers})
	out := cmd.OutOrStdout()
	for _, r := range res.Results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("failed"), r.Job.Input, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s\n", color.GreenString("converted"), r.Job.Input, r.Job.Output)
	}
	if err != nil {
		return fmt.Errorf("%d of %d conversions failed (run %s)", res.Failed, len(jobs), res.RunID)
	}
	return nil
}
