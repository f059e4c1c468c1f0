package playback

// Snapshot is one polled sample of playback state. Snapshots are created once
// per successful poll and never mutated; the poll scheduler supersedes its
// "previous" snapshot with each new one.
type Snapshot struct {
	Item       Item
	ProgressMs int
	IsPlaying  bool
	Repeat     RepeatState
	Shuffled   bool
}

// RemainingMs returns the time left until the current item ends.
func (s *Snapshot) RemainingMs() int {
	return s.Item.Duration() - s.ProgressMs
}
