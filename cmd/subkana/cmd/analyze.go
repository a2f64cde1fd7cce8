package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/f3rmion/subkana/internal/analysis"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/f3rmion/subkana/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <sentence>",
	Short: "Print the breakdown of a Japanese sentence",
	Long: `Send a sentence to the analysis service and print its breakdown:
the sentence with grammar patterns marked, then the grammar patterns and
the vocabulary, filtered by the enabled levels.

Example:
  subkana analyze 私は学生です
  subkana analyze --levels N5,N4 食べてもいいですか
  subkana analyze --json 雨が降っている`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Bool("json", false, "print the raw analysis as JSON")
	analyzeCmd.Flags().Bool("plain", false, "print without colors")
	analyzeCmd.Flags().StringSlice("levels", nil, "only show these levels (e.g. N5,N4)")
	analyzeCmd.Flags().Int("width", 0, "wrap meanings to this width (0 = no limit)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sentence := strings.TrimSpace(strings.Join(args, " "))
	if !subkana.ContainsJapanese(sentence) {
		return fmt.Errorf("no Japanese text in: %s", sentence)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if levels, _ := cmd.Flags().GetStringSlice("levels"); len(levels) > 0 {
		s.EnabledLevels, err = parseLevels(levels)
		if err != nil {
			return err
		}
	}

	logger := newLogger(false)
	defer logger.Sync()

	client := analysis.NewClient(config.NewStore(s), logger)
	result, err := client.Analyze(cmd.Context(), sentence)
	if err != nil {
		return fmt.Errorf("analyzing sentence: %w", err)
	}
	if err := result.Validate(); err != nil {
		logger.Warn("analysis has invalid spans", zap.Error(err))
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		fmt.Println(tui.PlainBreakdown(result, s))
		return nil
	}

	width, _ := cmd.Flags().GetInt("width")
	fmt.Println(tui.PaletteFor(s.Theme).Box.Render(tui.Breakdown(result, s, width)))
	return nil
}

// parseLevels parses level names such as "N5" or "n3".
func parseLevels(names []string) ([]subkana.Level, error) {
	var out []subkana.Level
	for _, name := range names {
		l, err := subkana.ParseLevel(strings.ToUpper(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
