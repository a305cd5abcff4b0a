package google

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/oauth2"

	"voicecal/internal/config"
	"voicecal/internal/instrumentation"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	// A minimal installed-app client secret so the OAuth config loads.
	secret := `{"installed":{"client_id":"id","client_secret":"secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
		`"token_uri":"https://oauth2.googleapis.com/token",` +
		`"redirect_uris":["http://localhost"]}}`
	credPath := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(credPath, []byte(secret), 0600))

	return &config.Config{
		TokenPath:       filepath.Join(dir, "calendar_token.json"),
		CredentialsPath: credPath,
		AuthTimeout:     50 * time.Millisecond,
		MaxRetries:      3,
		RetryDelay:      time.Millisecond,
	}
}

func writeToken(t *testing.T, path string, tok *oauth2.Token) {
	t.Helper()
	b, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0600))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestCredentialsUsesValidPersistedToken(t *testing.T) {
	cfg := testConfig(t)
	writeToken(t, cfg.TokenPath, &oauth2.Token{
		AccessToken: "live",
		Expiry:      time.Now().Add(time.Hour),
	})

	a := NewAuthenticator(cfg, quietLogger(), nil)
	a.authorize = func(context.Context, *oauth2.Config, time.Duration) (*oauth2.Token, error) {
		t.Fatal("interactive flow must not run for a valid credential")
		return nil, nil
	}
	a.refresh = func(context.Context, *oauth2.Config, *oauth2.Token) (*oauth2.Token, error) {
		t.Fatal("refresh must not run for a valid credential")
		return nil, nil
	}

	tok, err := a.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", tok.AccessToken)
}

func TestCredentialsRefreshesExpiredToken(t *testing.T) {
	cfg := testConfig(t)
	writeToken(t, cfg.TokenPath, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		Expiry:       time.Now().Add(-time.Hour),
	})

	a := NewAuthenticator(cfg, quietLogger(), nil)
	a.authorize = func(context.Context, *oauth2.Config, time.Duration) (*oauth2.Token, error) {
		t.Fatal("interactive flow must not run when a refresh token exists")
		return nil, nil
	}
	refreshed := false
	a.refresh = func(_ context.Context, _ *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
		refreshed = true
		assert.Equal(t, "refresh-me", tok.RefreshToken)
		return &oauth2.Token{
			AccessToken:  "fresh",
			RefreshToken: tok.RefreshToken,
			Expiry:       time.Now().Add(time.Hour),
		}, nil
	}

	tok, err := a.Credentials(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "fresh", tok.AccessToken)

	// The refreshed credential must be persisted.
	persisted, err := tokenFromFile(cfg.TokenPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh", persisted.AccessToken)
}

func TestCredentialsRunsInteractiveFlowWhenAbsent(t *testing.T) {
	cfg := testConfig(t)

	a := NewAuthenticator(cfg, quietLogger(), nil)
	a.authorize = func(context.Context, *oauth2.Config, time.Duration) (*oauth2.Token, error) {
		return &oauth2.Token{
			AccessToken: "granted",
			Expiry:      time.Now().Add(time.Hour),
		}, nil
	}

	tok, err := a.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "granted", tok.AccessToken)
	assert.True(t, a.HasToken())
}

func TestCredentialsExhaustsRetriesOnTimeout(t *testing.T) {
	cfg := testConfig(t)

	attempts := 0
	a := NewAuthenticator(cfg, quietLogger(), nil)
	a.authorize = func(context.Context, *oauth2.Config, time.Duration) (*oauth2.Token, error) {
		attempts++
		return nil, ErrAuthTimeout
	}

	_, err := a.Credentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthTimeout)
	assert.Equal(t, cfg.MaxRetries, attempts)
}

func TestCredentialsMissingClientSecretIsTerminal(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(cfg.CredentialsPath))

	attempts := 0
	a := NewAuthenticator(cfg, quietLogger(), nil)
	a.authorize = func(context.Context, *oauth2.Config, time.Duration) (*oauth2.Token, error) {
		attempts++
		return nil, ErrAuthTimeout
	}

	_, err := a.Credentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoClientSecret)
	// A missing secret file cannot be fixed by retrying.
	assert.Zero(t, attempts)
}

func TestCredentialsRecordsOAuthMetrics(t *testing.T) {
	cfg := testConfig(t)
	writeToken(t, cfg.TokenPath, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		Expiry:       time.Now().Add(-time.Hour),
	})

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	a := NewAuthenticator(cfg, quietLogger(), metrics)
	a.refresh = func(_ context.Context, _ *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
		return &oauth2.Token{
			AccessToken:  "fresh",
			RefreshToken: tok.RefreshToken,
			Expiry:       time.Now().Add(time.Hour),
		}, nil
	}

	_, err = a.Credentials(context.Background())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Equal(t, int64(1), counterValue(t, rm, "oauth_auth_total"))
	assert.Equal(t, int64(1), counterValue(t, rm, "oauth_token_refresh_total"))
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "expected %s to be an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "token.json")

	in := &oauth2.Token{
		AccessToken:  "a",
		RefreshToken: "r",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, saveToken(path, in))

	out, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.Equal(t, in.RefreshToken, out.RefreshToken)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestTokenFromFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := tokenFromFile(path)
	assert.Error(t, err)
}

func TestHasToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")

	assert.False(t, HasToken(path))
	writeToken(t, path, &oauth2.Token{AccessToken: "x"})
	assert.True(t, HasToken(path))
}
