package cmd

import (
	"fmt"
	"os"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage subkana settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the defaults",
	Long: `Write the default settings to the settings file so they can be edited.

The file holds the analysis service URL, whether captions are analyzed on
hover, the enabled JLPT levels, the panel theme and the caption selectors.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing settings file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := getSettingsPath()

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("settings file already exists: %s\nUse --force to overwrite", path)
	}

	if err := config.Save(path, config.Defaults()); err != nil {
		return err
	}

	fmt.Printf("Created %s\n\n", path)
	fmt.Println("Next steps:")
	fmt.Println("  1. Set api_url to your analysis service")
	fmt.Println("  2. Run 'subkana check' to test the connection")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	fmt.Printf("# %s\n%s", getSettingsPath(), out)
	return nil
}
