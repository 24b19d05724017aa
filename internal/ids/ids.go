package ids

import "github.com/segmentio/ksuid"

// New returns a time-ordered, filesystem-safe identifier.
func New() string {
	return ksuid.New().String()
}
