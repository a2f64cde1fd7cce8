// Package cmd contains all CLI commands for subkana.
package cmd

import (
	"fmt"
	"os"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "subkana",
	Short: "Grammar and vocabulary breakdowns for Japanese captions",
	Long: `subkana annotates Japanese captions with their grammar patterns and
vocabulary, graded by JLPT level (N5 to N1).

It watches a captioned page for caption changes, analyzes a caption when
you hover it, and shows a breakdown panel next to the pointer. The same
breakdown is available for any sentence from the command line.

Running 'subkana' without arguments launches the interactive analyzer.`,
	SilenceUsage: true,
	RunE:         runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.config/subkana/settings.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().String("api-url", "", "analysis service base URL (overrides settings)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig resolves the settings file path and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.Set("settings_file", cfgFile)
	} else {
		path, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		viper.Set("settings_file", path)
	}

	viper.SetEnvPrefix("SUBKANA")
	viper.AutomaticEnv()
}

// getSettingsPath returns the settings file path.
func getSettingsPath() string {
	return viper.GetString("settings_file")
}

// loadSettings reads the settings file and applies the flag overrides set
// on cmd.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.Load(getSettingsPath())
	if err != nil {
		return config.Settings{}, err
	}
	if f := cmd.Flags().Lookup("api-url"); f != nil && f.Changed {
		s.APIBaseURL = f.Value.String()
	}
	return s, nil
}

// newLogger builds the logger for a command. quiet keeps stderr clean for
// full-screen output.
func newLogger(quiet bool) *zap.Logger {
	return logging.New(logging.Options{
		Verbose: viper.GetBool("verbose"),
		File:    viper.GetString("log_file"),
		Quiet:   quiet,
	})
}
