// Package state declares the read-only beacon state access the attestation
// pool and block packer require. The concrete state implementation lives with
// the host process.
package state

import (
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// ReadOnlyBeaconState is the subset of beacon state getters the attestation
// pool consumes while scoring and packing attestations for a proposal.
//
// The pending-attestation getters are only valid for phase0 states and the
// participation getters only for Altair and later; callers switch on
// Version().
type ReadOnlyBeaconState interface {
	Version() int
	Slot() types.Slot
	PreviousEpochAttestations() ([]*eth.PendingAttestation, error)
	CurrentEpochAttestations() ([]*eth.PendingAttestation, error)
	PreviousEpochParticipation() ([]byte, error)
	CurrentEpochParticipation() ([]byte, error)
}
