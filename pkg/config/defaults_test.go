package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_Runtime(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 250*time.Millisecond, cfg.Runtime.DefaultTimeout)
	assert.Equal(t, uint64(200*1000), cfg.Runtime.MaxInlineArgsBytes.Uint64())
	assert.Equal(t, uint64(64*1024), cfg.Runtime.ReadChunkBytes.Uint64())
}

func TestApplyDefaults_Client(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Len(t, cfg.Client.Addresses, 1)
	assert.Equal(t, "localhost", cfg.Client.Addresses[0].Host)
	assert.Equal(t, 6379, cfg.Client.Addresses[0].Port)
	assert.Equal(t, "primary", cfg.Client.ReadFrom)
	assert.Equal(t, "RESP3", cfg.Client.ProtocolVersion)
	assert.Equal(t, 5, cfg.Client.ReconnectStrategy.NumOfRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.RequestTimeout)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/glide.log",
		},
		Client: ClientConnectionConfig{
			Addresses:      []NodeAddressConfig{{Host: "redis.internal", Port: 6380}},
			RequestTimeout: 2 * time.Second,
			ProtocolVersion: "RESP2",
		},
	}

	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/glide.log", cfg.Logging.Output)
	assert.Equal(t, "redis.internal", cfg.Client.Addresses[0].Host)
	assert.Equal(t, 2*time.Second, cfg.Client.RequestTimeout)
	assert.Equal(t, "RESP2", cfg.Client.ProtocolVersion)
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.NoError(t, Validate(cfg))
}

func TestValidate_RejectsMutuallyExclusiveAuth(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Client.Credentials = &CredentialsConfig{Username: "default", Password: "secret"}
	cfg.Client.Iam = &IamAuthConfig{Enabled: true}

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestValidate_AllowsIamWithUsernameOnly(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Client.Credentials = &CredentialsConfig{Username: "default"}
	cfg.Client.Iam = &IamAuthConfig{Enabled: true}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_RejectsDatabaseIDInClusterMode(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Client.ClusterModeEnabled = true
	cfg.Client.DatabaseID = 3

	err := Validate(cfg)
	assert.Error(t, err)
}
