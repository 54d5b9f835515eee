// Package helpers contains protocol helper functions shared by the beacon
// chain services.
package helpers

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// ValidateNilAttestation checks if any composite field of the input
// attestation is nil. Access to these nil fields will result in runtime panic,
// hence this validation prevents panic.
func ValidateNilAttestation(att eth.Att) error {
	if att == nil {
		return errors.New("attestation can't be nil")
	}
	data := att.GetData()
	if data == nil {
		return errors.New("attestation's data can't be nil")
	}
	if data.Source == nil {
		return errors.New("attestation's source can't be nil")
	}
	if data.Target == nil {
		return errors.New("attestation's target can't be nil")
	}
	if att.GetAggregationBits() == nil {
		return errors.New("attestation's bitfield can't be nil")
	}
	return nil
}

// IsAggregated returns true if the attestation is an aggregated attestation,
// false otherwise.
func IsAggregated(att eth.Att) bool {
	return att.GetAggregationBits().Count() > 1
}

// AttestingIndices returns the attesting participants indices from the
// attestation data.
//
// Spec pseudocode definition:
//
//	def get_attesting_indices(state: BeaconState, data: AttestationData, bits: Bitlist[MAX_VALIDATORS_PER_COMMITTEE]) -> Set[ValidatorIndex]:
//	  """
//	  Return the set of attesting indices corresponding to ``data`` and ``bits``.
//	  """
//	  committee = get_beacon_committee(state, data.slot, data.index)
//	  return set(index for i, index in enumerate(committee) if bits[i])
func AttestingIndices(bf bitfield.Bitfield, committee []types.ValidatorIndex) ([]types.ValidatorIndex, error) {
	if bf.Len() != uint64(len(committee)) {
		return nil, errors.Errorf("bitfield length %d is not equal to committee length %d", bf.Len(), len(committee))
	}
	indices := make([]types.ValidatorIndex, 0, bf.Count())
	for _, idx := range bf.BitIndices() {
		if idx < len(committee) {
			indices = append(indices, committee[idx])
		}
	}
	return indices, nil
}
