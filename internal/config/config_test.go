package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsZeroThreshold(t *testing.T) {
	cfg := Default()
	cfg.CtxFallbackThreshold = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsDictionaryBelowEnumCardinality(t *testing.T) {
	cfg := Default()
	cfg.MaxDictionaryEntries = 4
	cfg.EnumMaxCardinality = 16
	require.Error(t, cfg.Validate())
}

func TestLoadOverlaysTOMLOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "als.toml")
	require.NoError(t, os.WriteFile(path, []byte("ctx_fallback_threshold = 0.5\npretty = true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.CtxFallbackThreshold)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, Default().HashmapThreshold, cfg.HashmapThreshold)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
