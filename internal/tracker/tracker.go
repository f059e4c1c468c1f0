package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/playback"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/services"
	"github.com/charmbracelet/log"
)

const (
	// DefaultRefreshInterval is the default playback poll interval.
	DefaultRefreshInterval = 30 * time.Second

	// DefaultIdleBackoff is the wait between polls while no subscriber is connected.
	DefaultIdleBackoff = 5 * time.Second

	// endOfTrackSlack is added to the remaining track time so the re-poll
	// lands just after the track is expected to end.
	endOfTrackSlack = time.Second

	// settleDelay gives Spotify time to apply a command before re-polling.
	defaultSettleDelay = 500 * time.Millisecond
)

// Broadcaster is the subscriber transport consumed by the tracker: a
// best-effort fan-out channel with a session count.
type Broadcaster interface {
	// SessionCount returns the number of connected subscribers.
	SessionCount() int

	// Broadcast pushes one field-change notification to all subscribers.
	Broadcast(n Notification)

	// Clear tells all subscribers to drop their displayed state.
	Clear()
}

// Service owns the current known playback snapshot and drives the poll loop.
// It is constructed once at process start and shared by the transport layer
// for forced refreshes and command handling.
type Service struct {
	log    *log.Logger
	player services.Player
	hub    Broadcaster
	engine *Engine

	refreshInterval time.Duration
	idleBackoff     time.Duration
	settleDelay     time.Duration

	mu       sync.Mutex
	previous *playback.Snapshot

	kick chan struct{}
}

// ServiceOpts contains configuration options for creating a Service.
type ServiceOpts struct {
	Player          services.Player
	Hub             Broadcaster
	Logger          *log.Logger
	RefreshInterval time.Duration
	IdleBackoff     time.Duration
	SettleDelay     time.Duration
}

// NewService creates the tracking service with the provided configuration.
func NewService(opts ServiceOpts) *Service {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.IdleBackoff <= 0 {
		opts.IdleBackoff = DefaultIdleBackoff
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}

	return &Service{
		log:             opts.Logger,
		player:          opts.Player,
		hub:             opts.Hub,
		engine:          NewEngine(),
		refreshInterval: opts.RefreshInterval,
		idleBackoff:     opts.IdleBackoff,
		settleDelay:     opts.SettleDelay,
		kick:            make(chan struct{}, 1),
	}
}

// Run drives the poll loop until ctx is cancelled. Each pass computes the
// next poll delay; a kick cuts the wait short.
func (s *Service) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case <-s.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		_, delay := s.Poll(ctx)

		timer.Reset(delay)
	}
}

// Poll performs one poll pass and returns whether the external service was
// actually queried, plus the delay until the next attempt.
//
// With no subscribers connected the call is skipped entirely to avoid
// spending API quota on an audience of none.
func (s *Service) Poll(ctx context.Context) (bool, time.Duration) {
	if s.hub.SessionCount() == 0 {
		return false, s.idleBackoff
	}

	snap, err := s.player.GetCurrentPlayback(ctx)
	if err != nil {
		s.log.Error("failed to poll playback", "error", err)
		return true, s.refreshInterval
	}

	if snap == nil {
		s.hub.Clear()
		s.setPrevious(nil)
		return true, s.refreshInterval
	}

	old := s.setPrevious(snap)
	s.engine.Diff(old, snap, s.hub.Broadcast)

	return true, s.nextDelay(snap)
}

// Refresh clears the stored previous snapshot and requests a prompt poll, so
// the next pass re-emits every field unconditionally.
func (s *Service) Refresh() {
	s.setPrevious(nil)
	s.Kick()
}

// Kick requests a prompt poll without waiting out the current delay.
func (s *Service) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Previous returns the current known snapshot, or nil.
func (s *Service) Previous() *playback.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previous
}

// setPrevious stores snap as the current known state and returns what it replaced.
func (s *Service) setPrevious(snap *playback.Snapshot) *playback.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.previous
	s.previous = snap
	return old
}

// nextDelay schedules the re-poll promptly as the track is expected to end,
// instead of waiting out the full refresh interval on stale data.
func (s *Service) nextDelay(snap *playback.Snapshot) time.Duration {
	remaining := time.Duration(snap.RemainingMs())*time.Millisecond + endOfTrackSlack
	if remaining < 0 {
		remaining = 0
	}
	if remaining < s.refreshInterval {
		return remaining
	}
	return s.refreshInterval
}
