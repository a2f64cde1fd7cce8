package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	assert.True(t, d.AutoAnalyze)
	assert.Equal(t, ThemeDark, d.Theme)
	for _, l := range subkana.AllLevels {
		assert.True(t, d.LevelEnabled(l))
	}
	assert.Equal(t, ".ytp-caption-segment", d.Selectors[0])
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.yaml")

	s := Defaults()
	s.APIBaseURL = "http://example.test/api/v1"
	s.EnabledLevels = []subkana.Level{subkana.LevelN5, subkana.LevelN4}
	s.Theme = ThemeLight
	s.Timeout = 3 * time.Second
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.False(t, got.LevelEnabled(subkana.LevelN1))
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: neon\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SUBKANA_API_URL", "http://env.test")
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env.test", s.APIBaseURL)
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	st := NewStore(Defaults())
	snap := st.Settings()
	snap.EnabledLevels[0] = subkana.LevelN1
	assert.Equal(t, subkana.LevelN5, st.Settings().EnabledLevels[0])
}

func TestStoreUpdateNotifiesInOrder(t *testing.T) {
	st := NewStore(Defaults())

	var order []string
	st.Subscribe(func(s Settings) { order = append(order, "a:"+string(s.Theme)) })
	unsub := st.Subscribe(func(s Settings) { order = append(order, "b:"+string(s.Theme)) })
	st.Subscribe(func(s Settings) { order = append(order, "c:"+string(s.Theme)) })

	next := Defaults()
	next.Theme = ThemeLight
	st.Update(next)
	assert.Equal(t, []string{"a:light", "b:light", "c:light"}, order)
	assert.Equal(t, ThemeLight, st.Settings().Theme)

	order = nil
	unsub()
	st.Update(Defaults())
	assert.Equal(t, []string{"a:dark", "c:dark"}, order)
}
