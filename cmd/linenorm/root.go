package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	// logger is rebuilt for every invocation from --verbose/--quiet.
	logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
)

var rootCmd = &cobra.Command{
	Use:   "linenorm",
	Short: "linenorm - log line normalizer",
	Long: `linenorm splits logs into lines and tags the noisy parts of every line
(timestamps, IP addresses, encoded blobs, version strings, numbers and
punctuation) so that lines differing only in those parts share a shape.

Examples:
  linenorm normalize /var/log/app.log
  tail -f app.log | linenorm normalize --format json -
  linenorm normalize --output shapes.db /var/log/ && linenorm report --datastore shapes.db
  linenorm patterns list`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.linenorm.yaml or $HOME/.linenorm.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Add subcommands
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads the optional config file and LINENORM_* environment
// variables. Keys mirror the flags: "normalize.block-size" is set by
// LINENORM_NORMALIZE_BLOCK_SIZE.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".linenorm")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LINENORM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			logger.Warn("cannot read config file", "path", cfgFile, "err", err)
		}
		return
	}
	logger.Debug("using config file", "path", viper.ConfigFileUsed())
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := log.WarnLevel
	switch {
	case viper.GetBool("quiet"):
		level = log.ErrorLevel
	case viper.GetBool("verbose"):
		level = log.DebugLevel
	}

	logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:           level,
		ReportTimestamp: level == log.DebugLevel,
		Prefix:          "linenorm",
	})
	return nil
}
