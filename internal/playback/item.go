package playback

// UnknownDurationMs is the placeholder duration reported for items that are
// neither a track nor an episode. Consumers must tolerate a non-zero value.
const UnknownDurationMs = 100

// Track is the track variant of a playable item.
type Track struct {
	Name       string
	URI        string
	Artists    []Resource
	Album      Resource
	CoverURL   string
	DurationMs int
}

// Episode is the podcast-episode variant of a playable item.
type Episode struct {
	Name       string
	URI        string
	Show       Resource
	CoverURL   string
	DurationMs int
}

// Item is the playable-item variant held by a snapshot: a track, an episode,
// or nothing. The projection methods normalize all three shapes into the same
// view; every method is total and side-effect free.
type Item struct {
	Track   *Track
	Episode *Episode
}

// None reports whether the item holds no playable content.
func (i Item) None() bool {
	return i.Track == nil && i.Episode == nil
}

// Playable returns the item's own (name, URI) resource, or the zero Resource
// for an empty item.
func (i Item) Playable() Resource {
	switch {
	case i.Track != nil:
		return Resource{Name: i.Track.Name, URI: i.Track.URI}
	case i.Episode != nil:
		return Resource{Name: i.Episode.Name, URI: i.Episode.URI}
	default:
		return Resource{}
	}
}

// Creators returns the track's artists or the episode's show as a list.
func (i Item) Creators() []Resource {
	switch {
	case i.Track != nil:
		return i.Track.Artists
	case i.Episode != nil:
		return []Resource{i.Episode.Show}
	default:
		return nil
	}
}

// Cover returns the cover image URL, or "" when there is none.
func (i Item) Cover() string {
	switch {
	case i.Track != nil:
		return i.Track.CoverURL
	case i.Episode != nil:
		return i.Episode.CoverURL
	default:
		return ""
	}
}

// Grouping returns the album or show resource the item belongs to.
func (i Item) Grouping() Resource {
	switch {
	case i.Track != nil:
		return i.Track.Album
	case i.Episode != nil:
		return i.Episode.Show
	default:
		return Resource{}
	}
}

// Duration returns the item's duration in milliseconds.
// Empty items report [UnknownDurationMs].
func (i Item) Duration() int {
	switch {
	case i.Track != nil:
		return i.Track.DurationMs
	case i.Episode != nil:
		return i.Episode.DurationMs
	default:
		return UnknownDurationMs
	}
}
