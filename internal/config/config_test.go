package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDecimalFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		fallback string
		want     string
	}{
		{"valid value", "13", "24", "13"},
		{"empty value", "", "24", "24"},
		{"whitespace value", "   ", "24", "24"},
		{"garbage value", "abc", "24", "24"},
		{"fractional value", "8.875", "24", "8.875"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := parseDecimal(tc.value, tc.fallback)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseDurationFallbacks(t *testing.T) {
	t.Parallel()

	require.Equal(t, 30*time.Second, parseDuration("30s", "10s"))
	require.Equal(t, 10*time.Second, parseDuration("", "10s"))
	require.Equal(t, 10*time.Second, parseDuration("not-a-duration", "10s"))
}

func TestParseIntFallbacks(t *testing.T) {
	t.Parallel()

	require.Equal(t, 50, parseInt("50", 20))
	require.Equal(t, 20, parseInt("", 20))
	require.Equal(t, 20, parseInt("zero", 20))
	// non-positive limits fall back rather than disabling pagination
	require.Equal(t, 20, parseInt("-5", 20))
	require.Equal(t, 20, parseInt("0", 20))
}

func TestSplitAndTrim(t *testing.T) {
	t.Parallel()

	require.Nil(t, splitAndTrim(""))
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,, "))
}

func TestHTTPAddr(t *testing.T) {
	t.Parallel()

	require.Equal(t, ":8080", (&Config{Port: "8080"}).HTTPAddr())
	require.Equal(t, ":9090", (&Config{Port: ":9090"}).HTTPAddr())
	require.Equal(t, ":8080", (&Config{}).HTTPAddr())
}

func TestLoadRequiresConnections(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/erp")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "EUR", cfg.CurrencyCode)
	require.Equal(t, "24", cfg.DefaultVATRate.String())
	require.Equal(t, "20", cfg.DefaultWithholdingRate.String())
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}
