package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "HaSalon", cfg.Restaurant)
	assert.Equal(t, 10, cfg.Sampler.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.CollaboratorTimeout())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `restaurant: Mashya
city: Jaffa
sampler:
  blacklist: [salt]
  batch_size: 5
  min_days: 1
  max_days: 2
  fraction_min: 0.4
  fraction_max: 0.6
collaborator_timeout_seconds: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Mashya", cfg.Restaurant)
	assert.Equal(t, "Jaffa", cfg.City)
	assert.Equal(t, 5, cfg.Sampler.BatchSize)
	assert.Equal(t, []string{"salt"}, cfg.Sampler.Blacklist)
	assert.Equal(t, 5*time.Second, cfg.CollaboratorTimeout())

	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Decision, cfg.Decision)
	assert.Equal(t, Default().Cost, cfg.Cost)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `sampler:
  batch_size: 5
  min_days: 3
  max_days: 1
  fraction_min: 0.3
  fraction_max: 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative batch size", func(c *Config) { c.Sampler.BatchSize = -1 }, false},
		{"min days below one", func(c *Config) { c.Sampler.MinDays = 0 }, false},
		{"inverted day range", func(c *Config) { c.Sampler.MinDays = 4; c.Sampler.MaxDays = 2 }, false},
		{"fraction min at zero", func(c *Config) { c.Sampler.FractionMin = 0 }, false},
		{"fraction max at one", func(c *Config) { c.Sampler.FractionMax = 1 }, false},
		{"inverted fractions", func(c *Config) { c.Sampler.FractionMin = 0.8; c.Sampler.FractionMax = 0.3 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
