package attestations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/state"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/runtime/version"
	"github.com/suchsoon/nimbus-eth2/time/slots"
)

type coverageKey struct {
	slot  types.Slot
	index types.CommitteeIndex
}

// attestationCoverage tracks, per (slot, committee index), the committee
// members whose votes the proposing state has already credited. Candidates
// are scored by how many voters they add on top of this coverage.
type attestationCoverage struct {
	covered map[coverageKey]bitfield.Bitlist
}

// newAttestationCoverage builds the coverage map from the proposing state.
//
// Phase0 states list the included attestations of the previous and current
// epoch directly. From Altair on the state keeps per-validator participation
// flag bytes instead; any non-zero byte counts as covered, deliberately
// conflating the source/target/head flags. A voter with a partial flag set
// thus scores as already counted, which keeps packing behavior consistent
// with how inclusion rewards saturate.
func newAttestationCoverage(ctx context.Context, st state.ReadOnlyBeaconState, dag ChainDAG) (*attestationCoverage, error) {
	cov := &attestationCoverage{covered: make(map[coverageKey]bitfield.Bitlist)}

	if st.Version() < version.Altair {
		prevAtts, err := st.PreviousEpochAttestations()
		if err != nil {
			return nil, err
		}
		currAtts, err := st.CurrentEpochAttestations()
		if err != nil {
			return nil, err
		}
		for _, att := range append(prevAtts, currAtts...) {
			if err := cov.add(att.Data, att.AggregationBits); err != nil {
				return nil, err
			}
		}
		return cov, nil
	}

	currentEpoch := slots.ToEpoch(st.Slot())
	previousEpoch := slots.PrevEpoch(currentEpoch)

	prevParticipation, err := st.PreviousEpochParticipation()
	if err != nil {
		return nil, err
	}
	currParticipation, err := st.CurrentEpochParticipation()
	if err != nil {
		return nil, err
	}

	if err := cov.addParticipation(ctx, st, dag, previousEpoch, prevParticipation); err != nil {
		return nil, err
	}
	if currentEpoch != previousEpoch {
		if err := cov.addParticipation(ctx, st, dag, currentEpoch, currParticipation); err != nil {
			return nil, err
		}
	}
	return cov, nil
}

func (c *attestationCoverage) addParticipation(
	ctx context.Context,
	st state.ReadOnlyBeaconState,
	dag ChainDAG,
	epoch types.Epoch,
	participation []byte,
) error {
	committeeCount := dag.CommitteeCountPerSlot(st, epoch)
	for slot := slots.EpochStart(epoch); slot <= slots.EpochEnd(epoch); slot++ {
		for index := types.CommitteeIndex(0); uint64(index) < committeeCount; index++ {
			committee, err := dag.BeaconCommittee(ctx, st, slot, index)
			if err != nil {
				return errors.Wrap(err, "could not get beacon committee")
			}
			bits := bitfield.NewBitlist(uint64(len(committee)))
			for i, validatorIndex := range committee {
				if uint64(validatorIndex) < uint64(len(participation)) && participation[validatorIndex] != 0 {
					bits.SetBitAt(uint64(i), true)
				}
			}
			c.covered[coverageKey{slot: slot, index: index}] = bits
		}
	}
	return nil
}

// add credits the given voters for (data.Slot, data.CommitteeIndex).
func (c *attestationCoverage) add(data *eth.AttestationData, bits bitfield.Bitlist) error {
	key := coverageKey{slot: data.Slot, index: data.CommitteeIndex}
	existing, ok := c.covered[key]
	if !ok {
		c.covered[key] = bitfield.Bitlist(append([]byte{}, bits...))
		return nil
	}
	if existing.Len() != bits.Len() {
		return errors.Errorf("coverage committee length mismatch: %d != %d", existing.Len(), bits.Len())
	}
	for _, i := range bits.BitIndices() {
		existing.SetBitAt(uint64(i), true)
	}
	return nil
}

// score returns the number of voters in bits not yet covered for the vote's
// committee slot.
func (c *attestationCoverage) score(data *eth.AttestationData, bits bitfield.Bitlist) uint64 {
	covered, ok := c.covered[coverageKey{slot: data.Slot, index: data.CommitteeIndex}]
	if !ok {
		return bits.Count()
	}
	score := uint64(0)
	for _, i := range bits.BitIndices() {
		if !covered.BitAt(uint64(i)) {
			score++
		}
	}
	return score
}
