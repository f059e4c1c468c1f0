package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// spotifyScopes are the scopes requested during the authorization-code grant.
var spotifyScopes = []string{
	"user-read-currently-playing",
	"user-modify-playback-state",
	"user-read-playback-state",
	"user-read-playback-position",
	"user-library-read",
	"user-read-private",
}

// TokenExchange implements [Exchanger] for the Spotify accounts service.
// Uses [oauth2] for both the authorization-code and refresh-token grants.
type TokenExchange struct {
	config *oauth2.Config
}

// NewTokenExchange creates a token exchange client with the given OAuth2 credentials.
func NewTokenExchange(clientID, clientSecret, redirectURI string) (*TokenExchange, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("missing client_id or client_secret")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &TokenExchange{config: config}, nil
}

// AuthURL returns the OAuth2 authorization URL for user consent.
func (t *TokenExchange) AuthURL(state string) string {
	return t.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token bundle.
func (t *TokenExchange) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := t.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// Refresh trades a refresh token for a new token bundle.
//
// Spotify does not always rotate refresh tokens; the returned bundle's
// RefreshToken is empty when the previous one remains valid.
func (t *TokenExchange) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := t.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	result := &Token{
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
	}
	if tok.RefreshToken != refreshToken {
		result.RefreshToken = tok.RefreshToken
	}

	return result, nil
}

// IsAuthError reports whether err is an authorization-class failure from the
// token endpoint, as opposed to a transient network or service error.
func IsAuthError(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
	}
	return false
}
