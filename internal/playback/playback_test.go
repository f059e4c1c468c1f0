package playback

import "testing"

func TestResource(t *testing.T) {
	t.Run("Equal Compares Identity Only", func(t *testing.T) {
		a := Resource{Name: "Original Title", URI: "spotify:track:abc"}
		b := Resource{Name: "Re-released Title", URI: "spotify:track:abc"}

		if !a.Equal(b) {
			t.Error("resources with the same URI should be equal regardless of name")
		}

		c := Resource{Name: "Original Title", URI: "spotify:track:xyz"}
		if a.Equal(c) {
			t.Error("resources with different URIs should not be equal")
		}
	})

	t.Run("Zero", func(t *testing.T) {
		if !(Resource{}).Zero() {
			t.Error("empty resource should be zero")
		}
		if (Resource{URI: "spotify:track:abc"}).Zero() {
			t.Error("non-empty resource should not be zero")
		}
	})
}

func TestEqualCreatorSets(t *testing.T) {
	artists := func(uris ...string) []Resource {
		out := make([]Resource, len(uris))
		for i, uri := range uris {
			out[i] = Resource{Name: "artist", URI: uri}
		}
		return out
	}

	t.Run("Permutation Is Equal", func(t *testing.T) {
		a := artists("spotify:artist:1", "spotify:artist:2", "spotify:artist:3")
		b := artists("spotify:artist:3", "spotify:artist:1", "spotify:artist:2")

		if !EqualCreatorSets(a, b) {
			t.Error("reordered creator set should compare as unchanged")
		}
	})

	t.Run("Disjoint Sets Differ", func(t *testing.T) {
		a := artists("spotify:artist:1", "spotify:artist:2")
		b := artists("spotify:artist:3", "spotify:artist:4")

		if EqualCreatorSets(a, b) {
			t.Error("disjoint creator sets should compare as changed")
		}
	})

	t.Run("Different Sizes Differ", func(t *testing.T) {
		a := artists("spotify:artist:1")
		b := artists("spotify:artist:1", "spotify:artist:2")

		if EqualCreatorSets(a, b) {
			t.Error("creator sets of different size should compare as changed")
		}
	})

	t.Run("Both Empty Are Equal", func(t *testing.T) {
		if !EqualCreatorSets(nil, nil) {
			t.Error("two empty creator sets should compare as unchanged")
		}
	})
}

func TestItemProjection(t *testing.T) {
	track := Item{Track: &Track{
		Name: "Song",
		URI:  "spotify:track:abc",
		Artists: []Resource{
			{Name: "Artist A", URI: "spotify:artist:1"},
			{Name: "Artist B", URI: "spotify:artist:2"},
		},
		Album:      Resource{Name: "Album", URI: "spotify:album:1"},
		CoverURL:   "https://i.scdn.co/image/cover",
		DurationMs: 200000,
	}}

	episode := Item{Episode: &Episode{
		Name:       "Episode 12",
		URI:        "spotify:episode:def",
		Show:       Resource{Name: "Show", URI: "spotify:show:1"},
		CoverURL:   "https://i.scdn.co/image/show",
		DurationMs: 3600000,
	}}

	t.Run("Track", func(t *testing.T) {
		if got := track.Playable(); got.Name != "Song" || got.URI != "spotify:track:abc" {
			t.Errorf("unexpected playable resource %+v", got)
		}
		if got := track.Creators(); len(got) != 2 {
			t.Errorf("expected 2 creators, got %d", len(got))
		}
		if got := track.Cover(); got != "https://i.scdn.co/image/cover" {
			t.Errorf("unexpected cover %q", got)
		}
		if got := track.Grouping(); got.URI != "spotify:album:1" {
			t.Errorf("unexpected grouping %+v", got)
		}
		if got := track.Duration(); got != 200000 {
			t.Errorf("unexpected duration %d", got)
		}
		if track.None() {
			t.Error("track item should not be none")
		}
	})

	t.Run("Episode", func(t *testing.T) {
		if got := episode.Playable(); got.URI != "spotify:episode:def" {
			t.Errorf("unexpected playable resource %+v", got)
		}

		creators := episode.Creators()
		if len(creators) != 1 || creators[0].URI != "spotify:show:1" {
			t.Errorf("episode creators should be the show, got %+v", creators)
		}

		if got := episode.Grouping(); got.URI != "spotify:show:1" {
			t.Errorf("unexpected grouping %+v", got)
		}
		if got := episode.Duration(); got != 3600000 {
			t.Errorf("unexpected duration %d", got)
		}
	})

	t.Run("None", func(t *testing.T) {
		var none Item

		if !none.None() {
			t.Error("empty item should be none")
		}
		if got := none.Playable(); !got.Zero() {
			t.Errorf("expected zero playable, got %+v", got)
		}
		if got := none.Creators(); len(got) != 0 {
			t.Errorf("expected no creators, got %+v", got)
		}
		if got := none.Cover(); got != "" {
			t.Errorf("expected empty cover, got %q", got)
		}
		if got := none.Grouping(); !got.Zero() {
			t.Errorf("expected zero grouping, got %+v", got)
		}
		if got := none.Duration(); got != UnknownDurationMs {
			t.Errorf("expected sentinel duration %d, got %d", UnknownDurationMs, got)
		}
	})
}

func TestRepeatState(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		cases := map[string]RepeatState{
			"track":   RepeatTrack,
			"context": RepeatContext,
			"off":     RepeatOff,
		}

		for name, want := range cases {
			got, err := ParseRepeatState(name)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", name, err)
			}
			if got != want {
				t.Errorf("ParseRepeatState(%q) = %d, want %d", name, got, want)
			}
		}

		if _, err := ParseRepeatState("sideways"); err == nil {
			t.Error("expected error for unknown repeat state")
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		if got := RepeatOff.Next(); got != RepeatTrack {
			t.Errorf("Off.Next() = %d, want Track", got)
		}
		if got := RepeatTrack.Next(); got != RepeatContext {
			t.Errorf("Track.Next() = %d, want Context", got)
		}
		if got := RepeatContext.Next(); got != RepeatOff {
			t.Errorf("Context.Next() = %d, want Off", got)
		}
	})

	t.Run("APIValue", func(t *testing.T) {
		if RepeatTrack.APIValue() != "track" || RepeatContext.APIValue() != "context" || RepeatOff.APIValue() != "off" {
			t.Error("APIValue mapping is wrong")
		}
	})
}

func TestSnapshotRemaining(t *testing.T) {
	snap := &Snapshot{
		Item:       Item{Track: &Track{DurationMs: 200000}},
		ProgressMs: 150000,
	}

	if got := snap.RemainingMs(); got != 50000 {
		t.Errorf("RemainingMs() = %d, want 50000", got)
	}
}
