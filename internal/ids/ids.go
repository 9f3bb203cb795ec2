package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id for transcripts and chat messages.
func New() string {
	return ksuid.New().String()
}
