package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cluster_chat_server/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[mainConfig]
port = 9001

[relayConfig]
mode = "kafka"

[kafkaConfig]
hostPort = "kafka:9092"
timeout = 3
`)
	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, conf.MainConfig.Port)
	assert.Equal(t, "0.0.0.0", conf.MainConfig.Host)
	assert.Equal(t, "dev", conf.MainConfig.Mode)
	assert.Equal(t, "kafka", conf.RelayConfig.Mode)
	assert.Equal(t, "kafka:9092", conf.KafkaConfig.HostPort)
	assert.Equal(t, time.Duration(3), conf.KafkaConfig.Timeout)
	assert.Equal(t, "chat_relay", conf.KafkaConfig.RelayTopic)
	assert.Equal(t, 6379, conf.RedisConfig.Port)
	assert.Equal(t, constants.SEND_BUFFER_SIZE, conf.ServerConfig.SendBufferSize)
	assert.EqualValues(t, constants.READ_LIMIT, conf.ServerConfig.ReadLimit)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := writeConfig(t, "[mainConfig\nport = ")
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfig(t, `
[relayConfig]
mode = "redis"
channelPrefix = "user:"
`)
	t.Setenv(EnvConfigPath, path)
	config = nil
	t.Cleanup(func() { config = nil })

	conf := GetConfig()
	assert.Equal(t, "redis", conf.RelayConfig.Mode)
	assert.Equal(t, "user:", conf.RelayConfig.ChannelPrefix)
}

func TestDefault(t *testing.T) {
	conf := Default()
	assert.Equal(t, "channel", conf.RelayConfig.Mode)
	assert.Equal(t, 8000, conf.MainConfig.Port)
}
