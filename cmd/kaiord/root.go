package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/kaiord"
	"github.com/lucasjlepore/kaiord/internal/config"
	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/zwo"
)

var (
	configPath string
	logLevel   string
	logJSON    bool

	cfg    = config.Default()
	logger = log.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:           "kaiord",
	Short:         "Convert structured workouts between FIT, TCX, ZWO and KRD",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			cfg.LogJSON = logJSON
		}
		logger = logging.Setup(logging.LoggerSetupParams{
			LogLevel:      cfg.LogLevel,
			LogFormatJSON: cfg.LogJSON,
			Output:        cmd.ErrOrStderr(),
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/kaiord/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
}

func Execute() error {
	return rootCmd.Execute()
}

// zwiftFlags are shared by every command that may write ZWO.
type zwiftFlags struct {
	policy        string
	author        string
	thresholdPace float64
}

func (z *zwiftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&z.policy, "repetition-policy", "", "ZWO repetition blocks other than on/off pairs: drop, error or flatten")
	cmd.Flags().StringVar(&z.author, "author", "", "ZWO author")
	cmd.Flags().Float64Var(&z.thresholdPace, "threshold-pace", 0, "Running threshold pace in seconds per km, maps ZWO power to pace")
}

// converterOptions merges the config file with the flags set on cmd.
func (z *zwiftFlags) converterOptions(cmd *cobra.Command) (kaiord.Options, error) {
	policy := cfg.Zwift.RepetitionPolicy
	if cmd.Flags().Changed("repetition-policy") {
		policy = z.policy
	}
	parsed, err := zwo.ParseRepetitionPolicy(policy)
	if err != nil {
		return kaiord.Options{}, fmt.Errorf("--repetition-policy: %w", err)
	}

	opts := kaiord.Options{
		Logger:                    logger,
		RepetitionPolicy:          parsed,
		ZwiftAuthor:               cfg.Zwift.Author,
		ThresholdPaceSecondsPerKm: cfg.Zwift.ThresholdPaceSecondsPerKm,
	}
	if cmd.Flags().Changed("author") {
		opts.ZwiftAuthor = z.author
	}
	if cmd.Flags().Changed("threshold-pace") {
		opts.ThresholdPaceSecondsPerKm = z.thresholdPace
	}
	return opts, nil
}
