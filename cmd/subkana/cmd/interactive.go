package cmd

import (
	"fmt"

	"github.com/f3rmion/subkana/internal/analysis"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/tui"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i", "ui"},
	Short:   "Analyze sentences interactively",
	Long: `Launch the interactive analyzer.

Type a Japanese sentence and press Enter to see its breakdown. With the
result focused, keys 1-5 toggle the N5..N1 level filters, t switches the
theme and y copies the breakdown to the clipboard. Filter and theme
changes last for the session only.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(true)
	defer logger.Sync()

	store := config.NewStore(s)
	gateway := analysis.NewGateway(analysis.NewClient(store, logger), logger)

	if err := tui.Run(gateway, store); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
