package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/shared"
	"github.com/charmbracelet/log"
)

// DefaultAuthTimeout bounds how long the flow waits for the user to consent.
const DefaultAuthTimeout = 2 * time.Minute

// AuthFlow runs the interactive authorization: it starts a temporary local
// callback server, opens the browser to the consent page, and blocks until
// the authorization code arrives.
//
// Implements the credential manager's Authorizer collaborator.
type AuthFlow struct {
	log     *log.Logger
	addr    string
	authURL func(state string) string
	timeout time.Duration
}

// NewAuthFlow creates an AuthFlow serving its callback on addr. authURL must
// render the provider's consent URL for a given state token.
func NewAuthFlow(logger *log.Logger, addr string, authURL func(state string) string) *AuthFlow {
	if logger == nil {
		logger = log.Default()
	}

	return &AuthFlow{
		log:     logger,
		addr:    addr,
		authURL: authURL,
		timeout: DefaultAuthTimeout,
	}
}

// Authorize blocks until the user completes the consent flow and returns the
// authorization code.
func (f *AuthFlow) Authorize(ctx context.Context) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", err
	}

	handler := NewCodeHandler(state)
	router := NewBasicRouter()
	router.Handler(handler)

	httpServer := &http.Server{Addr: f.addr, Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		f.log.Info("starting authorization callback server", "addr", f.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	defer httpServer.Shutdown(context.Background())

	consentURL := f.authURL(state)
	if err := shared.OpenBrowser(consentURL); err != nil {
		f.log.Warn("failed to open browser automatically", "error", err)
		f.log.Info("open this URL to authorize", "url", consentURL)
	}

	f.log.Info("waiting for authorization", "timeout", f.timeout)

	timeout := time.NewTimer(f.timeout)
	defer timeout.Stop()

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return "", err
		}
		f.log.Info("received authorization callback")
		return result.Code, nil
	case err := <-serverErrors:
		return "", fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timeout.C:
		return "", shared.ErrAuthTimeout
	}
}
