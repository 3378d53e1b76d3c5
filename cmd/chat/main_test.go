package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mathtutor-chat/internal/config"
)

func TestApplyFlagsOverridesEnvironment(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--endpoint", "http://tutor.test/api/chatbot/",
		"--supersede",
		"--timeout", "2s",
		"--log-level", "debug",
	}))

	cfg := &config.Config{
		Client: config.ClientConfig{Endpoint: config.DefaultEndpoint},
		Log:    config.LogConfig{Level: "info", File: "chat.log"},
	}
	require.NoError(t, applyFlags(cmd, cfg))

	assert.Equal(t, "http://tutor.test/api/chatbot/", cfg.Client.Endpoint)
	assert.True(t, cfg.Client.Supersede)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "chat.log", cfg.Log.File)
}

func TestApplyFlagsKeepsUnsetValues(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := &config.Config{Client: config.ClientConfig{Endpoint: "http://env.test/", Supersede: true}}
	require.NoError(t, applyFlags(cmd, cfg))

	assert.Equal(t, "http://env.test/", cfg.Client.Endpoint)
	assert.True(t, cfg.Client.Supersede)
}

func TestApplyFlagsRejectsNegativeTimeout(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--timeout", "-1s"}))

	assert.Error(t, applyFlags(cmd, &config.Config{}))
}
