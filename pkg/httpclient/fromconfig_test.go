package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connkit/pkg/config"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Client.Name = "mixpanel"
	cfg.Client.UseCache = true
	cfg.Retry = config.RetryConfig{MaxRetries: 2, MaxTime: time.Minute, Factor: 3}
	cfg.Budget = []config.PolicyConfig{
		{PathPrefix: "/api/2.0/export", Calls: 60, Window: time.Hour},
		{Interval: time.Second},
	}

	c, err := NewFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "mixpanel", c.name)
	assert.Equal(t, 2, c.maxRetries)
	assert.Equal(t, time.Minute, c.maxTime)
	assert.Equal(t, 3.0, c.factor)
	assert.NotNil(t, c.callBudget)
	assert.NotNil(t, c.respCache)

	limits := c.resolveLimits()
	assert.Equal(t, 3, limits.maxTries)
}

func TestNewFromConfigRejectsInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Retry.Factor = -1

	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewFromConfigOptionsWin(t *testing.T) {
	cfg := config.DefaultConfig()

	c, err := NewFromConfig(cfg, WithRetryDefaults(9, time.Hour, 2))
	require.NoError(t, err)
	assert.Equal(t, 9, c.maxRetries)
}
