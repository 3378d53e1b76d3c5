package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CHATBOT_THRESHOLD", "CHATBOT_INTENTS_FILE", "CHAT_ENDPOINT", "CHAT_SUPERSEDE", "CHAT_TIMEOUT", "LOG_LEVEL", "LOG_FILE", "Model", "ARK_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.InDelta(t, DefaultThreshold, cfg.Chatbot.Threshold, 1e-9)
	assert.Equal(t, DefaultEndpoint, cfg.Client.Endpoint)
	assert.False(t, cfg.Client.Supersede)
	assert.Zero(t, cfg.Client.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("CHAT_ENDPOINT", "http://example.test/api/chatbot/")
	t.Setenv("CHAT_SUPERSEDE", "true")
	t.Setenv("CHAT_TIMEOUT", "3s")

	cfg, err := loadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://example.test/api/chatbot/", cfg.Endpoint)
	assert.True(t, cfg.Supersede)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoadServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":              "80 80",
		"CHATBOT_THRESHOLD": "1.5",
		"CHAT_SUPERSEDE":    "maybe",
		"CHAT_TIMEOUT":      "-1s",
		"LOG_LEVEL":         "loud",
		"ARK_MAX_TOKENS":    "many",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabled(t *testing.T) {
	assert.True(t, AIConfig{Model: "m", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}.Enabled())
	assert.False(t, AIConfig{Model: "m", AccessKey: "a"}.Enabled())
	assert.False(t, AIConfig{APIKey: "k"}.Enabled())
}
