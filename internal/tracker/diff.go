package tracker

import "github.com/RubberDuckShobe/NeosSpotifyStatus/internal/playback"

// changeTracker pairs a change predicate with the notification it emits.
// Predicates are independent; none may depend on another's result.
type changeTracker struct {
	field   Field
	changed func(old, cur *playback.Snapshot) bool
	emit    func(cur *playback.Snapshot) Notification
}

// Engine evaluates an ordered, fixed set of change trackers between
// successive snapshots. Constructed once at startup; the tracker order is
// the registration order below and never changes.
type Engine struct {
	trackers []changeTracker
}

// NewEngine builds the engine with the nine observable field trackers.
func NewEngine() *Engine {
	return &Engine{
		trackers: []changeTracker{
			{
				field: FieldPlayable,
				changed: func(old, cur *playback.Snapshot) bool {
					return !old.Item.Playable().Equal(cur.Item.Playable())
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldPlayable, cur.Item.Playable().Name}
				},
			},
			{
				field: FieldCreator,
				changed: func(old, cur *playback.Snapshot) bool {
					return !playback.EqualCreatorSets(old.Item.Creators(), cur.Item.Creators())
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldCreator, encodeResources(cur.Item.Creators())}
				},
			},
			{
				field: FieldCover,
				changed: func(old, cur *playback.Snapshot) bool {
					return old.Item.Cover() != cur.Item.Cover()
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldCover, cur.Item.Cover()}
				},
			},
			{
				field: FieldGrouping,
				changed: func(old, cur *playback.Snapshot) bool {
					return !old.Item.Grouping().Equal(cur.Item.Grouping())
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldGrouping, cur.Item.Grouping().Name}
				},
			},
			{
				field: FieldProgress,
				changed: func(old, cur *playback.Snapshot) bool {
					return old.ProgressMs != cur.ProgressMs
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldProgress, encodeInt(cur.ProgressMs)}
				},
			},
			{
				field: FieldDuration,
				changed: func(old, cur *playback.Snapshot) bool {
					return old.Item.Duration() != cur.Item.Duration()
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldDuration, encodeInt(cur.Item.Duration())}
				},
			},
			{
				field: FieldIsPlaying,
				changed: func(old, cur *playback.Snapshot) bool {
					return old.IsPlaying != cur.IsPlaying
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldIsPlaying, encodeBool(cur.IsPlaying)}
				},
			},
			{
				field: FieldRepeatState,
				changed: func(old, cur *playback.Snapshot) bool {
					return old.Repeat != cur.Repeat
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldRepeatState, encodeInt(int(cur.Repeat))}
				},
			},
			{
				field: FieldIsShuffled,
				changed: func(old, cur *playback.Snapshot) bool {
					return old.Shuffled != cur.Shuffled
				},
				emit: func(cur *playback.Snapshot) Notification {
					return Notification{FieldIsShuffled, encodeBool(cur.Shuffled)}
				},
			},
		},
	}
}

// Diff evaluates every tracker against (old, cur) in registration order and
// invokes emit for each changed field. A nil old snapshot (first poll, or
// after a forced full refresh) treats every field as changed.
func (e *Engine) Diff(old, cur *playback.Snapshot, emit func(Notification)) {
	for _, tracker := range e.trackers {
		if old == nil || tracker.changed(old, cur) {
			emit(tracker.emit(cur))
		}
	}
}
