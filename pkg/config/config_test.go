package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, 9, c.SettingsWeeks)
	assert.Equal(t, 18, c.TemplateWeeks)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, "/metrics", c.MetricsPath)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", c.Port)
	assert.Equal(t, 5*time.Minute, c.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())
}

func TestLoad_RejectsBadWeeks(t *testing.T) {
	t.Setenv("SETTINGS_WEEKS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SETTINGS_WEEKS")
}

func TestLogger_FallsBackToInfo(t *testing.T) {
	c := &Configuration{LogLevel: "loud"}
	assert.Equal(t, logrus.InfoLevel, c.Logger().GetLevel())
}

func TestLoad_WrapsParseErrors(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse environment")
}

func TestValidate_MetricsPath(t *testing.T) {
	c := &Configuration{SettingsWeeks: 9, TemplateWeeks: 18, SessionTTL: time.Minute, MetricsPath: "metrics"}
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, "METRICS_PATH must start with '/', got 'metrics'", err.Error())
}
