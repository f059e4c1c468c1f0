// package playback defines the domain model for one polled sample of
// Spotify playback state and the normalized projection of its playable item.
package playback

// Resource is a (display name, spotify URI) pair. Identity is defined by the
// URI alone so cosmetic renames of the same resource do not register as changes.
type Resource struct {
	Name string
	URI  string
}

// Equal reports identity equality, comparing URIs only.
func (r Resource) Equal(other Resource) bool {
	return r.URI == other.URI
}

// Zero reports whether the resource is absent.
func (r Resource) Zero() bool {
	return r.URI == "" && r.Name == ""
}

func (r Resource) String() string {
	return r.Name
}

// EqualCreatorSets compares two creator lists as unordered identity sets.
// Permutations of the same set are equal; any difference in either
// direction is not.
func EqualCreatorSets(a, b []Resource) bool {
	if len(a) != len(b) {
		return false
	}

	seen := make(map[string]int, len(a))
	for _, res := range a {
		seen[res.URI]++
	}
	for _, res := range b {
		if seen[res.URI] == 0 {
			return false
		}
		seen[res.URI]--
	}

	return true
}
