package cmd

import (
	"fmt"

	"github.com/f3rmion/subkana/internal/analysis"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// probeSentence is analyzed to prove the service answers end to end.
const probeSentence = "こんにちは"

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test the connection to the analysis service",
	Long: `Ask the analysis service for its health report, then analyze a short
sentence. The check passes when the analysis succeeds.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(false)
	defer logger.Sync()

	client := analysis.NewClient(config.NewStore(s), logger)
	color.Cyan("Checking %s", s.APIBaseURL)

	if h, err := client.Health(cmd.Context()); err != nil {
		color.Yellow("  health: unavailable (%v)", err)
	} else {
		status := color.GreenString(h.Status)
		if h.Status != "ok" {
			status = color.YellowString(h.Status)
		}
		fmt.Printf("  health: %s\n", status)
		fmt.Printf("    tokenizer:         %s\n", mark(h.Components.Tokenizer))
		fmt.Printf("    grammar engine:    %s\n", mark(h.Components.GrammarEngine))
		fmt.Printf("    vocabulary mapper: %s\n", mark(h.Components.VocabularyMapper))
	}

	result, err := client.Analyze(cmd.Context(), probeSentence)
	if err != nil {
		color.Red("  analyze: failed: %v", err)
		return fmt.Errorf("analysis service check failed")
	}
	color.Green("  analyze: ok (%d tokens, %d grammar patterns)", len(result.Tokens), len(result.GrammarPatterns))
	return nil
}

func mark(ok bool) string {
	if ok {
		return color.GreenString("ok")
	}
	return color.RedString("down")
}
