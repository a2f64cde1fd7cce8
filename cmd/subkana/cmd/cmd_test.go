package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/dom"
	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevels(t *testing.T) {
	got, err := parseLevels([]string{"n5", " N3 "})
	require.NoError(t, err)
	assert.Equal(t, []subkana.Level{subkana.LevelN5, subkana.LevelN3}, got)

	_, err = parseLevels([]string{"N6"})
	assert.Error(t, err)
}

func TestDefaultCaptionRect(t *testing.T) {
	r := defaultCaptionRect(dom.Size{Width: 1000, Height: 800})
	assert.Equal(t, dom.Rect{X: 200, Y: 700, Width: 600, Height: 40}, r)
	assert.False(t, r.Empty())
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"analyze", "check", "watch", "config", "interactive"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
	c, _, err := rootCmd.Find([]string{"ui"})
	require.NoError(t, err)
	assert.Equal(t, "interactive", c.Name())
}

func TestLoadSettingsAppliesAPIURLFlag(t *testing.T) {
	viper.Set("settings_file", filepath.Join(t.TempDir(), "settings.yaml"))

	c := &cobra.Command{Use: "settings"}
	c.Flags().String("api-url", "", "")

	s, err := loadSettings(c)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().APIBaseURL, s.APIBaseURL, "unset flag keeps the file value")

	require.NoError(t, c.Flags().Set("api-url", "http://analysis.test/api/v1"))
	s, err = loadSettings(c)
	require.NoError(t, err)
	assert.Equal(t, "http://analysis.test/api/v1", s.APIBaseURL)
}

func TestConfigCommandsRunThroughRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subkana", "settings.yaml")

	rootCmd.SetArgs([]string{"config", "init", "--config", path})
	require.NoError(t, rootCmd.Execute())
	_, err := os.Stat(path)
	require.NoError(t, err)

	rootCmd.SetArgs([]string{"config", "init", "--config", path})
	assert.Error(t, rootCmd.Execute(), "existing file needs --force")

	rootCmd.SetArgs([]string{"config", "show", "--config", path, "--api-url", "http://analysis.test/api/v1"})
	require.NoError(t, rootCmd.Execute())
}
