package pipeline

import "github.com/oklog/ulid/v2"

// NewJobID returns a sortable unique job identifier.
func NewJobID() string {
	return ulid.Make().String()
}
