// package services defines interfaces for the external Spotify collaborators
//
// Player (playback reads and commands) and token exchange
package services

import (
	"context"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/playback"
)

// Player defines the Spotify player operations the bridge consumes.
type Player interface {
	// GetCurrentPlayback returns the current playback snapshot, or nil when
	// nothing is playing or the playing item is absent.
	GetCurrentPlayback(ctx context.Context) (*playback.Snapshot, error)

	// Pause pauses playback on the active device.
	Pause(ctx context.Context) error

	// Resume resumes playback on the active device.
	Resume(ctx context.Context) error

	// SkipPrevious skips to the previous item.
	SkipPrevious(ctx context.Context) error

	// SkipNext skips to the next item.
	SkipNext(ctx context.Context) error

	// SetRepeat sets the player repeat state.
	SetRepeat(ctx context.Context, state playback.RepeatState) error

	// SetShuffle turns shuffle on or off.
	SetShuffle(ctx context.Context, shuffle bool) error

	// SeekTo seeks to the given position in the current item.
	SeekTo(ctx context.Context, positionMs int) error

	// AddToQueue appends the item identified by uri to the playback queue.
	AddToQueue(ctx context.Context, uri string) error

	// CurrentUser returns the authenticated user's profile.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)
}

// Token is the result of a grant or refresh exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Exchanger defines the OAuth token exchange operations.
type Exchanger interface {
	// AuthURL returns the authorization URL to open for user consent.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token bundle.
	Exchange(ctx context.Context, code string) (*Token, error)

	// Refresh trades a refresh token for a new token bundle. The returned
	// bundle's RefreshToken may be empty when Spotify does not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// TokenProvider supplies a valid access token, blocking until one is available.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
