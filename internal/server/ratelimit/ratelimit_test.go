package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/process-job", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
	}
}

func TestAllow_BurstThenLimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/process-job", "POST")
		assert.True(t, allowed, "request %d should pass", i)
	}

	allowed, info := l.Allow("1.2.3.4", "/process-job", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Limit)
	assert.Positive(t, info.RetryAfter)
}

func TestAllow_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", "/process-job", "POST")
	}

	allowed, _ := l.Allow("5.6.7.8", "/process-job", "POST")
	assert.True(t, allowed)
}

func TestAllow_DisabledPassesEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/process-job", "POST")
		require.True(t, allowed)
	}
}

func TestAllow_HealthIsUnlimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 500; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	exact := MatchEndpoint("/process-job", "POST", configs)
	require.NotNil(t, exact)
	assert.Equal(t, 30, exact.Limit)

	prefix := MatchEndpoint("/memory/brand-voice", "POST", configs)
	require.NotNil(t, prefix)
	assert.Equal(t, 120, prefix.Limit)

	assert.Nil(t, MatchEndpoint("/unknown", "GET", configs))

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Zero(t, health.Limit)
}
