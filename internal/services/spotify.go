// Spotify API implementation of [Player]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/playback"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/shared"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyShow represents a Spotify podcast show.
type SpotifyShow struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyPlaybackItem represents the item object inside a playback response.
// Tracks carry artists and an album; episodes carry a show and their own images.
type SpotifyPlaybackItem struct {
	Type       string          `json:"type"` // track, episode
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	URI        string          `json:"uri"`
	DurationMS int             `json:"duration_ms"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      *SpotifyAlbum   `json:"album"`
	Show       *SpotifyShow    `json:"show"`
	Images     []SpotifyImage  `json:"images"`
}

// SpotifyPlayback represents the /me/player response.
type SpotifyPlayback struct {
	IsPlaying    bool                 `json:"is_playing"`
	ProgressMS   int                  `json:"progress_ms"`
	RepeatState  string               `json:"repeat_state"`
	ShuffleState bool                 `json:"shuffle_state"`
	Item         *SpotifyPlaybackItem `json:"item"`
}

// SpotifyService implements the [Player] interface against the Spotify Web API.
//
// Access tokens come from a [TokenProvider] per request, so every call blocks
// until the credential manager reports an available credential. A rate limiter
// keeps command bursts from exhausting the API quota.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify player service using the given token provider.
func NewSpotifyService(tokens TokenProvider, httpClient *http.Client) *SpotifyService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: httpClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A 204 response decodes into a nil result; callers treat it as "no content".
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, result interface{}) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to obtain access token: %w", err)
	}

	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// GetCurrentPlayback retrieves the current playback state.
//
// Returns (nil, nil) when no device is active or the playing item is absent.
func (s *SpotifyService) GetCurrentPlayback(ctx context.Context) (*playback.Snapshot, error) {
	var resp SpotifyPlayback
	status, err := s.doRequest(ctx, "GET", "/me/player?additional_types=episode", &resp)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNoContent || resp.Item == nil {
		return nil, nil
	}

	return snapshotFromPlayback(&resp), nil
}

// Pause pauses playback on the active device.
func (s *SpotifyService) Pause(ctx context.Context) error {
	_, err := s.doRequest(ctx, "PUT", "/me/player/pause", nil)
	return err
}

// Resume resumes playback on the active device.
func (s *SpotifyService) Resume(ctx context.Context) error {
	_, err := s.doRequest(ctx, "PUT", "/me/player/play", nil)
	return err
}

// SkipPrevious skips to the previous item.
func (s *SpotifyService) SkipPrevious(ctx context.Context) error {
	_, err := s.doRequest(ctx, "POST", "/me/player/previous", nil)
	return err
}

// SkipNext skips to the next item.
func (s *SpotifyService) SkipNext(ctx context.Context) error {
	_, err := s.doRequest(ctx, "POST", "/me/player/next", nil)
	return err
}

// SetRepeat sets the player repeat state.
func (s *SpotifyService) SetRepeat(ctx context.Context, state playback.RepeatState) error {
	endpoint := "/me/player/repeat?state=" + state.APIValue()
	_, err := s.doRequest(ctx, "PUT", endpoint, nil)
	return err
}

// SetShuffle turns shuffle on or off.
func (s *SpotifyService) SetShuffle(ctx context.Context, shuffle bool) error {
	endpoint := fmt.Sprintf("/me/player/shuffle?state=%t", shuffle)
	_, err := s.doRequest(ctx, "PUT", endpoint, nil)
	return err
}

// SeekTo seeks to the given position in the current item.
func (s *SpotifyService) SeekTo(ctx context.Context, positionMs int) error {
	endpoint := fmt.Sprintf("/me/player/seek?position_ms=%d", positionMs)
	_, err := s.doRequest(ctx, "PUT", endpoint, nil)
	return err
}

// AddToQueue appends the item identified by uri to the playback queue.
func (s *SpotifyService) AddToQueue(ctx context.Context, uri string) error {
	endpoint := "/me/player/queue?uri=" + url.QueryEscape(uri)
	_, err := s.doRequest(ctx, "POST", endpoint, nil)
	return err
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if _, err := s.doRequest(ctx, "GET", "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// snapshotFromPlayback maps an API playback response to the domain snapshot.
// Unknown item types (ads, local files) map to the empty item variant.
func snapshotFromPlayback(resp *SpotifyPlayback) *playback.Snapshot {
	repeat, err := playback.ParseRepeatState(resp.RepeatState)
	if err != nil {
		repeat = playback.RepeatOff
	}

	snap := &playback.Snapshot{
		ProgressMs: resp.ProgressMS,
		IsPlaying:  resp.IsPlaying,
		Repeat:     repeat,
		Shuffled:   resp.ShuffleState,
	}

	item := resp.Item
	switch item.Type {
	case "track":
		track := &playback.Track{
			Name:       item.Name,
			URI:        item.URI,
			DurationMs: item.DurationMS,
		}
		for _, artist := range item.Artists {
			track.Artists = append(track.Artists, playback.Resource{Name: artist.Name, URI: artist.URI})
		}
		if item.Album != nil {
			track.Album = playback.Resource{Name: item.Album.Name, URI: item.Album.URI}
			if len(item.Album.Images) > 0 {
				track.CoverURL = item.Album.Images[0].URL
			}
		}
		snap.Item = playback.Item{Track: track}

	case "episode":
		episode := &playback.Episode{
			Name:       item.Name,
			URI:        item.URI,
			DurationMs: item.DurationMS,
		}
		if item.Show != nil {
			episode.Show = playback.Resource{Name: item.Show.Name, URI: item.Show.URI}
		}
		if len(item.Images) > 0 {
			episode.CoverURL = item.Images[0].URL
		}
		snap.Item = playback.Item{Episode: episode}
	}

	return snap
}
