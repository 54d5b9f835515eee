// Package slots includes ticker and timer-related functions for the
// consensus slot and epoch arithmetic.
package slots

import (
	"github.com/suchsoon/nimbus-eth2/config/params"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// ToEpoch returns the epoch number of the input slot.
//
// Spec pseudocode definition:
//
//	def compute_epoch_at_slot(slot: Slot) -> Epoch:
//	  """
//	  Return the epoch number at ``slot``.
//	  """
//	  return Epoch(slot // SLOTS_PER_EPOCH)
func ToEpoch(slot types.Slot) types.Epoch {
	return types.Epoch(uint64(slot) / uint64(params.BeaconConfig().SlotsPerEpoch))
}

// EpochStart returns the first slot number of the given epoch.
func EpochStart(epoch types.Epoch) types.Slot {
	return types.Slot(uint64(epoch) * uint64(params.BeaconConfig().SlotsPerEpoch))
}

// EpochEnd returns the last slot number of the given epoch.
func EpochEnd(epoch types.Epoch) types.Slot {
	return EpochStart(epoch+1) - 1
}

// PrevEpoch returns the previous epoch, guarding against underflow at genesis.
func PrevEpoch(epoch types.Epoch) types.Epoch {
	if epoch > params.BeaconConfig().GenesisEpoch {
		return epoch - 1
	}
	return params.BeaconConfig().GenesisEpoch
}
