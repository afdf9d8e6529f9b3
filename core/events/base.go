package events

import "time"

type Kind string

// Event is one timestamped, classified unit of observed call reality.
// Events are append-only ground truth: once emitted they are never
// retracted, even if later reasoning shows the classification was wrong.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
