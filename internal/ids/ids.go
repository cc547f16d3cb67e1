package ids

import "github.com/google/uuid"

// New returns a random identifier such as "msg-3f0c…" for the given prefix.
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
