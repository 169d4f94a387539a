// Package cmd provides the command-line interface for formstate.
//
// Configuration System:
//
//	The CLI reads its configuration from several sources with clear precedence:
//	1. Command-line flags (--config, --log-level, ...) - highest priority
//	2. FORMSTATE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (FORMSTATE_LOG_LEVEL, ...)
//	4. Configuration files (.formstate.yml) - lowest priority
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/formstate/internal/config"
	"github.com/conneroisu/formstate/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "formstate",
	Short: "Check form data against field definitions",
	Long: `formstate binds a field definition to a form, seeds it with a data
document and reports what a submit would say: field errors, the form error
and the final value tree with defaults and initial values applied.

Quick Start:
  formstate check -d signup.yml data.yml     Check one document
  formstate watch -d signup.yml data.yml     Re-check on every save
  formstate version                          Print build information

Command Aliases:
  check (c), watch (w)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .formstate.yml, can also use FORMSTATE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
}

// initConfig points viper at the configuration file and binds the
// environment and the persistent flags.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".formstate")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger writing to w.
func newLogger(cfg *config.Config, w io.Writer) logging.Logger {
	lc := cfg.LoggerConfig()
	lc.Output = w
	return logging.NewLogger(lc).WithComponent("cli")
}
