package session

import "github.com/wyatt-herkamp/nitro-share/internal/random"

// idLength is the length of generated session ids. 62^7 possible values make
// collisions a theoretical concern only, so the generation loop has no retry
// bound.
const idLength = 7

// newID samples random alphanumeric ids until the exists predicate rejects a
// collision. The caller must invoke this while holding its write lock or
// inside its write transaction, so the probe and the eventual insert form one
// atomic section; probing outside it would reintroduce a check-then-act race.
func newID(exists func(string) bool) string {
	for {
		id := random.Alphanumeric(idLength)
		if !exists(id) {
			return id
		}
	}
}
