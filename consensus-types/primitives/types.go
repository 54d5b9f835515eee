// Package primitives defines the consensus-layer scalar types shared across
// the repository.
package primitives

// Slot represents a single slot.
type Slot uint64

// Epoch represents a single epoch.
type Epoch uint64

// CommitteeIndex is the index of a committee within a slot.
type CommitteeIndex uint64

// ValidatorIndex is the globally unique index of a validator in the registry.
type ValidatorIndex uint64

// Add increments the slot by x.
func (s Slot) Add(x uint64) Slot {
	return s + Slot(x)
}

// Sub decrements the slot by x. The caller is responsible for guarding
// against underflow.
func (s Slot) Sub(x uint64) Slot {
	return s - Slot(x)
}

// Add increments the epoch by x.
func (e Epoch) Add(x uint64) Epoch {
	return e + Epoch(x)
}

// Sub decrements the epoch by x. The caller is responsible for guarding
// against underflow.
func (e Epoch) Sub(x uint64) Epoch {
	return e - Epoch(x)
}
