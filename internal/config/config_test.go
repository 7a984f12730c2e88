package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRef(t *testing.T) {
	assert.Equal(t, "abcd1234", ProjectRef("https://abcd1234.supabase.co"))
	assert.Equal(t, "abcd1234", ProjectRef("abcd1234.supabase.co"))
	assert.Equal(t, "http://localhost:54321", ProjectRef("http://localhost:54321"))
	assert.Equal(t, "", ProjectRef(""))
}

func validProductionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		LogLevel:             "info",
		SessionAuthKey:       "0123456789abcdef0123456789abcdef",
		SessionEncryptionKey: "0123456789abcdef",
	}
}

func TestValidateForProduction_SkipsOtherEnvironments(t *testing.T) {
	cfg := &Config{Environment: EnvDevelopment, LogLevel: "debug"}
	assert.NoError(t, ValidateForProduction(cfg))
}

func TestValidateForProduction_Valid(t *testing.T) {
	assert.NoError(t, ValidateForProduction(validProductionConfig()))
}

func TestValidateForProduction_Failures(t *testing.T) {
	cfg := validProductionConfig()
	cfg.SessionAuthKey = "short"
	cfg.SessionEncryptionKey = "seventeen-bytes!!"
	cfg.LogLevel = "debug"

	err := ValidateForProduction(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_AUTH_KEY")
	assert.Contains(t, err.Error(), "SESSION_ENCRYPTION_KEY")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
