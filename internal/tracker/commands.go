package tracker

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/playback"
)

// Inbound wire commands: single-character code prefix, command-specific payload.
//
//	0 - toggle pause/resume
//	1 - previous track
//	2 - next track
//	3 - force full refresh
//	4 - set/advance repeat state
//	5 - toggle shuffle
//	6 - seek to position (ms)
//	7 - add item to queue
const (
	cmdTogglePause   = '0'
	cmdSkipPrevious  = '1'
	cmdSkipNext      = '2'
	cmdForceRefresh  = '3'
	cmdSetRepeat     = '4'
	cmdToggleShuffle = '5'
	cmdSeekTo        = '6'
	cmdAddToQueue    = '7'
)

var spotifyURIPattern = regexp.MustCompile(`(?:spotify:|https?://open\.spotify\.com/)(episode|track)[:/]([0-9A-Za-z]+)`)

// HandleCommand parses and executes one inbound wire command. Malformed
// commands are dropped without reply; failures of the external player are
// logged and otherwise swallowed. After every executed command a fresh poll
// is scheduled once the settle delay has passed, so subscribers see the
// command's effect without waiting out the regular interval.
func (s *Service) HandleCommand(ctx context.Context, raw string) {
	if raw == "" {
		return
	}

	code, payload := raw[0], raw[1:]
	s.log.Debug("command received", "code", string(code), "payload", payload)

	var err error
	switch code {
	case cmdTogglePause:
		err = s.togglePause(ctx)
	case cmdSkipPrevious:
		err = s.player.SkipPrevious(ctx)
	case cmdSkipNext:
		err = s.player.SkipNext(ctx)
	case cmdForceRefresh:
		s.setPrevious(nil)
	case cmdSetRepeat:
		err = s.setRepeat(ctx, payload)
	case cmdToggleShuffle:
		err = s.toggleShuffle(ctx)
	case cmdSeekTo:
		err = s.seekTo(ctx, payload)
	case cmdAddToQueue:
		err = s.addToQueue(ctx, payload)
	default:
		s.log.Debug("unknown command dropped", "code", string(code))
		return
	}

	if err != nil {
		s.log.Error("command failed", "code", string(code), "error", err)
	}

	time.AfterFunc(s.settleDelay, s.Kick)
}

func (s *Service) togglePause(ctx context.Context) error {
	snap, err := s.player.GetCurrentPlayback(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		s.log.Info("no playback detected")
		return nil
	}

	if snap.IsPlaying {
		return s.player.Pause(ctx)
	}
	return s.player.Resume(ctx)
}

// setRepeat sets the state named by the payload (Track=0, Context=1, Off=2),
// or with an empty payload advances the current state in cyclic order.
func (s *Service) setRepeat(ctx context.Context, payload string) error {
	var target playback.RepeatState

	if payload == "" {
		current, err := s.currentRepeat(ctx)
		if err != nil {
			return err
		}
		target = current.Next()
	} else {
		num, err := strconv.Atoi(payload)
		if err != nil || !playback.RepeatState(num).Valid() {
			return nil
		}
		target = playback.RepeatState(num)
	}

	return s.player.SetRepeat(ctx, target)
}

// currentRepeat reads the repeat state from the stored snapshot, falling back
// to a fresh poll when none is held.
func (s *Service) currentRepeat(ctx context.Context) (playback.RepeatState, error) {
	if snap := s.Previous(); snap != nil {
		return snap.Repeat, nil
	}

	snap, err := s.player.GetCurrentPlayback(ctx)
	if err != nil {
		return playback.RepeatOff, err
	}
	if snap == nil {
		return playback.RepeatOff, nil
	}
	return snap.Repeat, nil
}

func (s *Service) toggleShuffle(ctx context.Context) error {
	snap, err := s.player.GetCurrentPlayback(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		s.log.Info("no playback detected")
		return nil
	}

	return s.player.SetShuffle(ctx, !snap.Shuffled)
}

func (s *Service) seekTo(ctx context.Context, payload string) error {
	positionMs, err := strconv.Atoi(payload)
	if err != nil || positionMs < 0 {
		return nil
	}
	return s.player.SeekTo(ctx, positionMs)
}

// addToQueue accepts a spotify: URI or an open.spotify.com URL for a track or
// episode and queues the canonical spotify:<kind>:<id> form.
func (s *Service) addToQueue(ctx context.Context, payload string) error {
	match := spotifyURIPattern.FindStringSubmatch(payload)
	if match == nil {
		return nil
	}

	return s.player.AddToQueue(ctx, "spotify:"+match[1]+":"+match[2])
}
