package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int    `json:"port"`
	BaseURL string `json:"base_url"`
	Nested  struct {
		Delay int `json:"delay"`
	} `json:"nested"`
}

func defaults() testConfig {
	cfg := testConfig{Port: 5000, BaseURL: "https://stackoverflow.com"}
	cfg.Nested.Delay = 60
	return cfg
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("dir", "config.local.json5"), LocalName(filepath.Join("dir", "config.json5")))
	require.Equal(t, "config.local", LocalName("config"))
}

func TestReadConfigMissing(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "config.json5"), defaults())
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, defaults(), cfg)
}

func TestReadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	require.NoError(t, os.WriteFile(name, []byte(`{
		// comments and trailing commas are allowed
		port: 8080,
		nested: { delay: 1, },
	}`), 0644))
	require.NoError(t, os.WriteFile(LocalName(name), []byte(`{ port: 9090 }`), 0644))

	cfg, err := ReadConfig(name, defaults())
	require.NoError(t, err)

	expected := defaults()
	expected.Port = 9090
	expected.Nested.Delay = 1
	require.Equal(t, expected, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(name, []byte(`{ port: `), 0644))

	_, err := ReadConfig(name, defaults())
	require.Error(t, err)
}
