package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"

	"voicecal/internal/config"
	"voicecal/internal/instrumentation"
	"voicecal/internal/logging"
)

// Authenticator produces a valid OAuth credential for the Calendar API.
//
// Each attempt loads the persisted credential, refreshes it with the stored
// refresh token when expired, or runs the interactive authorization flow when
// no usable credential exists. Attempts are retried with a fixed delay up to
// the configured bound; the resulting credential is persisted on success.
type Authenticator struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	conf *oauth2.Config // lazily loaded from the client secret file

	// Overridable in tests.
	authorize func(ctx context.Context, conf *oauth2.Config, timeout time.Duration) (*oauth2.Token, error)
	refresh   func(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error)
}

// NewAuthenticator creates an Authenticator for the given configuration.
// The client secret file is read lazily, so a missing file only surfaces
// when a refresh or interactive flow is actually needed.
func NewAuthenticator(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Authenticator{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		authorize: authorizeInteractive,
		refresh:   refreshToken,
	}
}

// HasToken reports whether a credential file exists at the configured path.
func (a *Authenticator) HasToken() bool {
	return HasToken(a.cfg.TokenPath)
}

// Credentials returns a valid OAuth token, retrying authentication up to the
// configured bound with a fixed delay between attempts.
func (a *Authenticator) Credentials(ctx context.Context) (*oauth2.Token, error) {
	attempt := 0
	operation := func() (*oauth2.Token, error) {
		attempt++
		a.logger.Info("authentication attempt",
			logging.Operation("authenticate"),
			logging.Attempt(attempt),
			slog.Int("max_retries", a.cfg.MaxRetries))
		return a.attemptOnce(ctx)
	}

	tok, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(a.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(a.cfg.MaxRetries)),
	)
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, "failure")
		a.logger.Error("authentication exhausted retries",
			logging.Operation("authenticate"),
			logging.Err(err))
		return nil, err
	}
	a.metrics.RecordOAuthAuth(ctx, "success")
	return tok, nil
}

// TokenSource returns a token source backed by a freshly validated
// credential, so API clients pick up in-flight refreshes transparently.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}
	return conf.TokenSource(ctx, tok), nil
}

// attemptOnce performs a single authentication attempt.
func (a *Authenticator) attemptOnce(ctx context.Context) (*oauth2.Token, error) {
	tok, err := tokenFromFile(a.cfg.TokenPath)
	if err == nil && tok.Valid() {
		a.logger.Debug("using persisted credential", logging.Operation("authenticate"))
		return tok, nil
	}
	if err != nil {
		// Missing or malformed token file is not fatal; a new
		// credential is obtained below.
		a.logger.Debug("no usable persisted credential",
			logging.Operation("authenticate"),
			logging.Err(err))
		tok = nil
	}

	conf, err := a.oauthConfig()
	if err != nil {
		if errors.Is(err, ErrNoClientSecret) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	if tok != nil && tok.RefreshToken != "" {
		a.logger.Info("refreshing expired credential", logging.Operation("authenticate"))
		refreshed, err := a.refresh(ctx, conf, tok)
		if err != nil {
			a.metrics.RecordOAuthTokenRefresh(ctx, "failure")
			return nil, fmt.Errorf("failed to refresh credential: %w", err)
		}
		a.metrics.RecordOAuthTokenRefresh(ctx, "success")
		if err := saveToken(a.cfg.TokenPath, refreshed); err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	a.logger.Info("starting interactive authorization flow",
		logging.Operation("authenticate"),
		slog.Duration("timeout", a.cfg.AuthTimeout))
	tok, err = a.authorize(ctx, conf, a.cfg.AuthTimeout)
	if err != nil {
		return nil, err
	}
	if err := saveToken(a.cfg.TokenPath, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (a *Authenticator) oauthConfig() (*oauth2.Config, error) {
	if a.conf != nil {
		return a.conf, nil
	}
	conf, err := oauthConfigFromFile(a.cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	a.conf = conf
	return conf, nil
}

// refreshToken exchanges the stored refresh token for a fresh access token.
func refreshToken(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
	return conf.TokenSource(ctx, tok).Token()
}
