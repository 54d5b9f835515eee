package attestations

import (
	"context"

	"github.com/suchsoon/nimbus-eth2/beacon-chain/cache"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/state"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// BlockRef is a light reference to a block the chain DAG knows about.
type BlockRef struct {
	Root [32]byte
	Slot types.Slot
}

// UnrealizedCheckpoints carries the unrealized justification and finalization
// a block would realize at the next epoch boundary. Computed by the host's
// state transition and forwarded to fork choice untouched.
type UnrealizedCheckpoints struct {
	Justified *eth.Checkpoint
	Finalized *eth.Checkpoint
}

// BeaconHead is the fork-choice selected head together with the execution
// block hashes the execution layer needs for its fork choice update.
type BeaconHead struct {
	Head                        *BlockRef
	SafeExecutionBlockHash      [32]byte
	FinalizedExecutionBlockHash [32]byte
}

// ChainDAG is the pool's read-only view of the block DAG: block lookups,
// committee shuffling queries and the attestation checks performed against a
// proposal state.
type ChainDAG interface {
	// HasBlock returns true if the DAG has resolved the given block root.
	HasBlock(root [32]byte) bool
	// BlockRef resolves a block root to a reference, nil when unknown.
	BlockRef(root [32]byte) *BlockRef
	// FinalizedBlockRef returns the latest finalized block reference.
	FinalizedBlockRef() *BlockRef
	// ExecutionBlockHash looks up the execution payload block hash of the
	// given beacon block, with ok=false for pre-merge or unknown blocks.
	ExecutionBlockHash(ref *BlockRef) ([32]byte, bool)
	// BeaconCommittee returns the committee assigned to (slot, index) under
	// the shuffling of the given state.
	BeaconCommittee(ctx context.Context, st state.ReadOnlyBeaconState, slot types.Slot, index types.CommitteeIndex) ([]types.ValidatorIndex, error)
	// CommitteeCountPerSlot returns the number of committees in each slot of
	// the given epoch under the shuffling of the given state.
	CommitteeCountPerSlot(st state.ReadOnlyBeaconState, epoch types.Epoch) uint64
	// VerifyAttestationNoVerifySignature checks that an attestation is valid
	// against the given state, skipping the BLS signature check. The committee
	// cache is consulted and filled as a side effect.
	VerifyAttestationNoVerifySignature(ctx context.Context, st state.ReadOnlyBeaconState, att eth.Att, committees *cache.CommitteeCache) error
	// VerifyAttestationCompatible checks that the shuffling the attestation
	// was created under matches the shuffling of the given state, by comparing
	// the attester dependent roots of the attestation target epoch.
	VerifyAttestationCompatible(ctx context.Context, st state.ReadOnlyBeaconState, att eth.Att) error
}

// ForkChoicer is the pool's handle on the fork choice store. The store's
// internal scoring is opaque to the pool.
type ForkChoicer interface {
	ProcessBlock(ctx context.Context, ref *BlockRef, parentRoot [32]byte, unrealized *UnrealizedCheckpoints, currentSlot types.Slot) error
	OnAttestation(ctx context.Context, slot types.Slot, beaconBlockRoot [32]byte, attestingIndices []types.ValidatorIndex, currentSlot types.Slot) error
	Head(ctx context.Context, currentSlot types.Slot) ([32]byte, error)
	SafeBlockRoot() [32]byte
	Prune() error
}

// MissingBlockSink collects block roots the node has heard of but not
// resolved, so the sync machinery can fetch them.
type MissingBlockSink interface {
	AddMissing(root [32]byte)
}
