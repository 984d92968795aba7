package ops

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// PastedIDPrefix starts every id generated by Paste. Canonical game-asset ids
// never use it, so pasted ids cannot shadow them.
const PastedIDPrefix = "cafe"

// DefaultMaxIDAttempts bounds the retries Paste makes when a generated id is
// already taken.
const DefaultMaxIDAttempts = 16

// newEntityIDFn generates candidate ids. It may be replaced in tests.
var newEntityIDFn = randomEntityID

// randomEntityID returns PastedIDPrefix followed by 12 random lowercase hex
// digits. The first six bytes of a version 4 UUID are fully random.
func randomEntityID() string {
	u := uuid.New()
	return PastedIDPrefix + hex.EncodeToString(u[:6])
}

// freshID returns a generated id not in taken. It gives up after attempts
// tries.
func freshID(taken func(string) bool, attempts int) (string, bool) {
	if attempts <= 0 {
		attempts = DefaultMaxIDAttempts
	}
	for range attempts {
		id := newEntityIDFn()
		if !taken(id) {
			return id, true
		}
	}
	return "", false
}
