package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ConfirmationTokenMaxAge)
	assert.Equal(t, time.Minute, cfg.EscalationScanInterval)
	assert.Equal(t, 4*time.Hour, cfg.DeadlinePendingReview)
	assert.Equal(t, 24*time.Hour, cfg.DeadlineUnderReview)
	assert.Equal(t, 8*time.Hour, cfg.DeadlinePendingAuthorization)
	assert.Equal(t, uint64(3), cfg.StoreMaxRetries)
	assert.Equal(t, 5, cfg.MaxEscalationLevel)
	assert.Nil(t, cfg.HighValueThreshold)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"DEADLINE_UNDER_REVIEW": "90m",
		"HIGH_VALUE_THRESHOLD":  "50000",
		"CORS_ALLOWED_ORIGINS":  "https://a.example, https://b.example",
		"STORE_MAX_RETRIES":     0,
	}))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.DeadlineUnderReview)
	require.NotNil(t, cfg.HighValueThreshold)
	assert.Equal(t, "50000", cfg.HighValueThreshold.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, uint64(0), cfg.StoreMaxRetries)
}

func TestFromViper_InvalidValues(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"ESCALATION_SCAN_INTERVAL": "soon"}))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.EscalationScanInterval)

	_, err = fromViper(newViper(map[string]any{"HIGH_VALUE_THRESHOLD": "-1"}))
	assert.Error(t, err)

	_, err = fromViper(newViper(map[string]any{"IS_PRODUCTION": true}))
	assert.Error(t, err, "production refuses default secrets")
}
