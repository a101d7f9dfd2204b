package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/domestiq")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_x")
	t.Setenv("PARTNER_API_KEYS", "k1,k2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ZAR", cfg.Currency)
	assert.Equal(t, time.Minute, cfg.TranslateWindow)
	assert.Equal(t, []string{"k1", "k2"}, cfg.PartnerAPIKeys)
	assert.Equal(t, "sk_test_x", cfg.WebhookSecret())
	assert.False(t, cfg.PushConfigured())

	pct, err := cfg.FeePercent()
	require.NoError(t, err)
	assert.Equal(t, "0.1", pct.String())
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "JWT_SECRET"} {
		t.Setenv(k, "placeholder")
		require.NoError(t, os.Unsetenv(k))
	}

	_, err := Load()
	assert.Error(t, err)
}

func TestFeePercent_Rejected(t *testing.T) {
	for _, v := range []string{"abc", "-0.1", "1", "1.5"} {
		cfg := &AppConfig{PlatformFeePercent: v}
		_, err := cfg.FeePercent()
		assert.Error(t, err, v)
	}
}

func TestWebhookSecret_Explicit(t *testing.T) {
	cfg := &AppConfig{PaystackSecretKey: "sk", PaystackWebhookSecret: "whsec"}
	assert.Equal(t, "whsec", cfg.WebhookSecret())
}
