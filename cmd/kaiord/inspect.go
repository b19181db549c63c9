package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/kaiord"
	"github.com/lucasjlepore/kaiord/krd"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the workout steps or activity totals of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kaiord.ReadFile(args[0], kaiord.Options{Logger: logger})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if w := k.Workout(); w != nil {
			printWorkout(out, w)
			return nil
		}
		printActivity(out, k)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func printBoxedHeader(out io.Writer, title string) {
	width := 40
	cyanBold := color.New(color.FgCyan, color.Bold).SprintFunc()
	border := strings.Repeat("═", width)
	fmt.Fprintln(out, cyanBold("╔"+border+"╗"))
	fmt.Fprintln(out, cyanBold("║"+centerText(title, width)+"║"))
	fmt.Fprintln(out, cyanBold("╚"+border+"╝"))
}

func centerText(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + s + strings.Repeat(" ", width-n-padding)
}

func printMetric(out io.Writer, label string, value any) {
	yellowBold := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "  %s: %v\n", yellowBold(label), value)
}

func printWorkout(out io.Writer, w *krd.Workout) {
	name := w.Name
	if name == "" {
		name = "(unnamed workout)"
	}
	printBoxedHeader(out, name)
	printMetric(out, "Sport", w.Sport)
	printMetric(out, "Steps", len(w.FlatSteps()))
	fmt.Fprintln(out)

	for _, item := range w.Steps {
		switch {
		case item.Step != nil:
			fmt.Fprintln(out, stepLine("", *item.Step))
		case item.Block != nil:
			fmt.Fprintln(out, color.New(color.FgMagenta, color.Bold).Sprintf("  repeat x%d", item.Block.RepeatCount))
			for _, s := range item.Block.Steps {
				fmt.Fprintln(out, stepLine("  ", s))
			}
		}
	}
}

func stepLine(indent string, s krd.WorkoutStep) string {
	line := fmt.Sprintf("  %s%3d  %-9s %-24s %s", indent, s.StepIndex, s.Intensity, describeDuration(s.Duration), describeTarget(s.Target))
	if s.Name != "" {
		line += "  " + color.HiBlackString(s.Name)
	}
	return line
}

func describeDuration(d krd.Duration) string {
	if d.Type == krd.DurationOpen {
		return "open"
	}
	v, ok := d.Value()
	if !ok {
		return string(d.Type)
	}
	var s string
	switch d.Type {
	case krd.DurationTime:
		return formatSeconds(v)
	case krd.DurationDistance:
		return fmt.Sprintf("%gm", v)
	case krd.DurationRepeatUntilTime:
		s = "repeat until " + formatSeconds(v)
	default:
		s = fmt.Sprintf("%s %g", strings.ReplaceAll(string(d.Type), "_", " "), v)
	}
	if d.RepeatFrom != nil {
		s += fmt.Sprintf(" from %d", *d.RepeatFrom)
	}
	return s
}

func describeTarget(t krd.Target) string {
	v := t.Value
	if t.Type == krd.TargetOpen || v == nil {
		return "open"
	}
	kind := strings.ReplaceAll(string(t.Type), "_", " ")
	if v.Unit == krd.UnitRange && v.IsRange() {
		return fmt.Sprintf("%s %g-%g", kind, *v.Min, *v.Max)
	}
	if v.Value == nil {
		return kind
	}
	switch v.Unit {
	case krd.UnitPercentFTP:
		return fmt.Sprintf("%s %g%% FTP", kind, *v.Value)
	case krd.UnitPercentMax:
		return fmt.Sprintf("%s %g%% max", kind, *v.Value)
	case krd.UnitZone:
		return fmt.Sprintf("%s zone %g", kind, *v.Value)
	default:
		return fmt.Sprintf("%s %g %s", kind, *v.Value, v.Unit)
	}
}

func formatSeconds(seconds float64) string {
	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func printActivity(out io.Writer, k *krd.KRD) {
	printBoxedHeader(out, strings.ToUpper(string(k.Type)))
	printMetric(out, "Sport", k.Metadata.Sport)
	printMetric(out, "Created", k.Metadata.Created.Format("2006-01-02 15:04"))
	printMetric(out, "Sessions", len(k.Sessions))
	printMetric(out, "Laps", len(k.Laps))
	printMetric(out, "Records", len(k.Records))
	for i, s := range k.Sessions {
		line := fmt.Sprintf("session %d: %s", i+1, formatSeconds(s.TotalElapsedTime))
		if s.TotalDistance != nil {
			line += fmt.Sprintf(", %.2f km", *s.TotalDistance/1000)
		}
		fmt.Fprintln(out, "  "+line)
	}
}
