package projection

import "time"

// Metadata captures persistence timestamps assigned by a store. Callers never
// set these; they stay zero until the aggregate has been persisted.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMetadata stamps both timestamps with the same instant, as a store does on insert.
func NewMetadata(at time.Time) Metadata {
	return Metadata{CreatedAt: at, UpdatedAt: at}
}

// Persisted reports whether a store has assigned the metadata.
func (m Metadata) Persisted() bool {
	return !m.CreatedAt.IsZero()
}
