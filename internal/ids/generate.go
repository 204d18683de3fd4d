package ids

import "github.com/google/uuid"

// NewGeneratedObjectId mints a fresh ObjectId with prefix (e.g. "p:", "n:",
// "e:", "m:") followed by a random UUID suffix, for callers — the TUI's
// quick-entry forms — that need a collision-free id without asking the
// user to invent one.
func NewGeneratedObjectId(prefix string) ObjectId {
	id, _ := NewObjectId(prefix + uuid.NewString())
	return id
}

// NewGeneratedWalkthroughNodeId mints a fresh WalkthroughNodeId the same way.
func NewGeneratedWalkthroughNodeId() WalkthroughNodeId {
	id, _ := NewWalkthroughNodeId(uuid.NewString())
	return id
}
