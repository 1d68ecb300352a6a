package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/inference"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "none", cfg.TraceExporter)
	assert.Equal(t, "tidegrid", cfg.ServiceName)
	assert.Empty(t, cfg.DatumOffsetsPath)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, inference.LinearAdmittance, s.Interpolation)
	assert.Equal(t, 0, s.ThreadCount)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TIME_TOLERANCE", "3600")
	t.Setenv("INFERENCE", "fourier")
	t.Setenv("GROUP_MODULATIONS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, 3600.0, s.TimeTolerance)
	assert.Equal(t, inference.FourierAdmittance, s.Interpolation)
	assert.True(t, s.GroupModulations)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"INFERENCE", "cubic"},
		{"THREAD_COUNT", "-2"},
		{"THREAD_COUNT", "many"},
		{"LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
