package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/services"
	"github.com/charmbracelet/log"
)

const (
	// DefaultRenewalMargin is how long before expiry the refresh fires.
	DefaultRenewalMargin = 2 * time.Minute

	// Capped exponential backoff for non-authorization exchange failures.
	retryBase = 10 * time.Second
	retryCap  = 5 * time.Minute
)

// Authorizer runs the out-of-band user consent flow and blocks until it
// yields an authorization code.
type Authorizer interface {
	Authorize(ctx context.Context) (code string, err error)
}

// Manager owns the current credential and its lifecycle: grant when no
// refresh token exists, scheduled refresh before expiry, and fallback to a
// new grant when a refresh is rejected.
//
// Consumers call [Manager.Token] to read the access token; the call blocks
// while any grant or refresh exchange is in flight, so a half-replaced
// credential is never observable.
type Manager struct {
	log       *log.Logger
	exchange  services.Exchanger
	authorize Authorizer
	store     *Store
	margin    time.Duration

	mu           sync.Mutex
	ready        chan struct{} // closed while a credential is available
	available    bool
	access       string
	expiry       time.Time
	refreshToken string
}

// ManagerOpts contains configuration options for creating a Manager.
type ManagerOpts struct {
	Logger     *log.Logger
	Exchange   services.Exchanger
	Authorizer Authorizer
	Store      *Store

	// RenewalMargin overrides DefaultRenewalMargin when positive.
	RenewalMargin time.Duration
}

// NewManager creates a credential manager in the unauthenticated state.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RenewalMargin <= 0 {
		opts.RenewalMargin = DefaultRenewalMargin
	}

	return &Manager{
		log:       opts.Logger,
		exchange:  opts.Exchange,
		authorize: opts.Authorizer,
		store:     opts.Store,
		margin:    opts.RenewalMargin,
		ready:     make(chan struct{}),
	}
}

// Token blocks until a credential is available and returns its access token.
func (m *Manager) Token(ctx context.Context) (string, error) {
	for {
		m.mu.Lock()
		if m.available {
			token := m.access
			m.mu.Unlock()
			return token, nil
		}
		ready := m.ready
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ready:
		}
	}
}

// Run performs the initial grant or refresh, then keeps renewing the
// credential at an absolute deadline of expiry minus the renewal margin.
// The deadline is fixed at install time, not recomputed from "now" while
// sleeping, so long idle periods cannot erode the safety margin.
//
// Runs until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	stored, err := m.store.Load()
	if err != nil {
		m.log.Warn("failed to load refresh token", "error", err)
	}
	m.mu.Lock()
	m.refreshToken = stored
	m.mu.Unlock()

	for {
		if err := m.renew(ctx); err != nil {
			return err
		}

		m.mu.Lock()
		deadline := m.expiry.Add(-m.margin)
		m.mu.Unlock()

		m.log.Info("scheduled credential renewal", "deadline", deadline)

		timer := time.NewTimer(time.Until(deadline))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// renew closes the availability gate and retries grant/refresh attempts with
// capped exponential backoff until one succeeds. Only context cancellation
// escapes; every failure is surfaced to the operator via the log.
func (m *Manager) renew(ctx context.Context) error {
	m.closeGate()

	backoff := retryBase
	for {
		err := m.attempt(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m.log.Error("credential renewal failed", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > retryCap {
			backoff = retryCap
		}
	}
}

// attempt makes one grant-or-refresh decision: refresh when a refresh token
// exists, falling back to a full grant when the refresh is rejected as
// unauthorized.
func (m *Manager) attempt(ctx context.Context) error {
	m.mu.Lock()
	refreshToken := m.refreshToken
	m.mu.Unlock()

	if refreshToken == "" {
		return m.grant(ctx)
	}

	err := m.refresh(ctx, refreshToken)
	if err == nil {
		return nil
	}
	if services.IsAuthError(err) {
		m.log.Warn("refresh token rejected, starting new authorization", "error", err)
		return m.grant(ctx)
	}

	return err
}

// grant runs the interactive authorization flow and exchanges the resulting code.
func (m *Manager) grant(ctx context.Context) error {
	code, err := m.authorize.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("authorization flow failed: %w", err)
	}

	token, err := m.exchange.Exchange(ctx, code)
	if err != nil {
		return err
	}

	m.install(token)
	m.log.Info("gained authorization", "valid_until", token.Expiry)

	return nil
}

// refresh exchanges the refresh token for a new access token.
func (m *Manager) refresh(ctx context.Context, refreshToken string) error {
	token, err := m.exchange.Refresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	m.install(token)
	m.log.Info("refreshed access", "valid_until", token.Expiry)

	return nil
}

// install atomically replaces the current credential and opens the gate.
// An empty refresh token in the bundle keeps the previous one, which remains
// valid when Spotify does not rotate it.
func (m *Manager) install(token *services.Token) {
	m.mu.Lock()
	m.access = token.AccessToken
	m.expiry = token.Expiry
	if token.RefreshToken != "" {
		m.refreshToken = token.RefreshToken
	}
	rotated := token.RefreshToken != ""
	if !m.available {
		m.available = true
		close(m.ready)
	}
	m.mu.Unlock()

	if rotated {
		if err := m.store.Save(token.RefreshToken); err != nil {
			m.log.Warn("failed to persist refresh token", "error", err)
		}
	}
}

// closeGate marks the credential unavailable for the duration of an exchange.
func (m *Manager) closeGate() {
	m.mu.Lock()
	if m.available {
		m.available = false
		m.ready = make(chan struct{})
	}
	m.mu.Unlock()
}
