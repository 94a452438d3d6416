package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "accountd", cfg.ProjectName)
	require.Equal(t, "HS512", cfg.Algorithm)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL())
	require.Equal(t, 5*time.Minute, cfg.RegistrationWindow())
	require.Equal(t, 30*time.Second, cfg.TOTPPeriod())
	require.False(t, cfg.TOTPActive)
	require.Equal(t, 6, cfg.TOTPDigits)
	require.EqualValues(t, 0, cfg.TOTPValidWindow)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("TOTP_ACTIVE", "true")
	t.Setenv("ACCOUNT_REGISTER_EXPIRE_MINUTES", "10")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.TOTPActive)
	require.Equal(t, 10*time.Minute, cfg.RegistrationWindow())
	require.Len(t, cfg.AllowedOrigins, 2)
}
