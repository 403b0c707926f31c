package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, CatalogDeezer, cfg.Catalog)
	assert.Equal(t, 5, cfg.Parallelism)
	assert.True(t, cfg.Tagging.Title)
	assert.True(t, cfg.Tagging.PadTrack)
	assert.False(t, cfg.Tagging.DateAsYear)
	assert.Equal(t, "{track_number} - {artist} - {title}", cfg.NamingMasks.FileMask)
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.OutputDirectory = "/music/out"
	cfg.Tagging.Separator = " / "
	cfg.Tagging.Genre = false

	require.NoError(t, SaveConfig(path, cfg))

	loaded := &Config{}
	require.NoError(t, LoadConfig(path, loaded))
	assert.Equal(t, cfg, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tag_dz_genre": false`)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog: spotify
parallelism: 2
tagging:
  tag_separator: "; "
  tag_dz_title: false
  tag_pad_track: true
`), 0o644))

	cfg := Default()
	require.NoError(t, LoadConfig(path, cfg))
	assert.Equal(t, CatalogSpotify, cfg.Catalog)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, "; ", cfg.Tagging.Separator)
	assert.False(t, cfg.Tagging.Title)
	assert.True(t, cfg.Tagging.PadTrack)
	assert.Equal(t, "https://api.deezer.com", cfg.DeezerAPIURL, "unset keys keep their defaults")
}

func TestLoadConfigErrors(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), &Config{})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	assert.Error(t, LoadConfig(path, &Config{}))
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("tag_dz_genre", "false"))
	assert.False(t, cfg.Tagging.Genre)
	v, err := cfg.Get("TAG_DZ_GENRE")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	require.NoError(t, cfg.Set("tag_separator", " & "))
	assert.Equal(t, " & ", cfg.Tagging.Separator)

	require.NoError(t, cfg.Set("parallelism", "8"))
	assert.Equal(t, 8, cfg.Parallelism)

	assert.Error(t, cfg.Set("parallelism", "many"))
	assert.Error(t, cfg.Set("tag_pad_track", "maybe"))
	assert.Error(t, cfg.Set("nope", "1"))
	_, err = cfg.Get("nope")
	assert.Error(t, err)

	for _, name := range OptionNames() {
		_, err := cfg.Get(name)
		assert.NoError(t, err, name)
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NAVIDROME_URL=http://nd.local\n"), 0o644))
	t.Setenv("SPOTIFY_CLIENT_ID", "id-from-env")
	t.Setenv("RETAGGER_CATALOG", "spotify")
	t.Setenv("NAVIDROME_URL", "")
	require.NoError(t, os.Unsetenv("NAVIDROME_URL"))

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, envFile))
	assert.Equal(t, "id-from-env", cfg.SpotifyClientID)
	assert.Equal(t, CatalogSpotify, cfg.Catalog)
	assert.Equal(t, "http://nd.local", cfg.NavidromeURL)

	require.NoError(t, ApplyEnv(Default(), filepath.Join(dir, "absent.env")))
}
