package attestations

import (
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// AggregatedAttestation returns the best aggregate the pool holds for the
// vote identified by its data root, folding pending single votes in first.
// Nil when the pool has nothing for that vote.
func (p *Pool) AggregatedAttestation(slot types.Slot, dataRoot [32]byte) *eth.Attestation {
	idx, ok := p.candidateIndex(slot)
	if !ok {
		log.WithField("slot", slot).Debug("Aggregate request outside pool window")
		return nil
	}
	e, ok := p.phase0Ring[idx][dataRoot]
	if !ok {
		return nil
	}
	e.updateAggregates()
	best := e.bestAggregate()
	if best == nil {
		return nil
	}
	return e.attestation(best)
}

// AggregatedAttestationBySlotIndex returns the aggregate with the most
// participants among all votes of the given committee slot.
func (p *Pool) AggregatedAttestationBySlotIndex(slot types.Slot, committeeIndex types.CommitteeIndex) *eth.Attestation {
	idx, ok := p.candidateIndex(slot)
	if !ok {
		log.WithField("slot", slot).Debug("Aggregate request outside pool window")
		return nil
	}
	var bestEntry *entry
	var best *validation
	for _, e := range p.phase0Ring[idx] {
		if e.data.CommitteeIndex != committeeIndex {
			continue
		}
		e.updateAggregates()
		if v := e.bestAggregate(); v != nil {
			if best == nil || v.aggregationBits.Count() > best.aggregationBits.Count() {
				bestEntry, best = e, v
			}
		}
	}
	if best == nil {
		return nil
	}
	return bestEntry.attestation(best)
}

// AggregatedAttestationElectra returns the best single-committee aggregate
// for the vote identified by data and committee index. Cross-committee
// merging is reserved for block packing: the returned attestation always has
// exactly one committee bit set.
func (p *Pool) AggregatedAttestationElectra(slot types.Slot, data *eth.AttestationData, committeeIndex types.CommitteeIndex) *eth.AttestationElectra {
	idx, ok := p.candidateIndex(slot)
	if !ok {
		log.WithField("slot", slot).Debug("Aggregate request outside pool window")
		return nil
	}
	root, err := eth.ElectraVoteRoot(data, committeeIndex)
	if err != nil {
		log.WithError(err).Error("Could not hash attestation data")
		return nil
	}
	e, ok := p.electraRing[idx][root]
	if !ok {
		return nil
	}
	e.updateAggregates()
	best := e.bestAggregate()
	if best == nil {
		return nil
	}
	return e.electraAttestation(best)
}

// AggregatedAttestationElectraBySlotIndex returns the aggregate with the most
// participants among all electra votes of the given committee slot.
func (p *Pool) AggregatedAttestationElectraBySlotIndex(slot types.Slot, committeeIndex types.CommitteeIndex) *eth.AttestationElectra {
	idx, ok := p.candidateIndex(slot)
	if !ok {
		log.WithField("slot", slot).Debug("Aggregate request outside pool window")
		return nil
	}
	var bestEntry *entry
	var best *validation
	for _, e := range p.electraRing[idx] {
		if e.data.CommitteeIndex != committeeIndex {
			continue
		}
		e.updateAggregates()
		if v := e.bestAggregate(); v != nil {
			if best == nil || v.aggregationBits.Count() > best.aggregationBits.Count() {
				bestEntry, best = e, v
			}
		}
	}
	if best == nil {
		return nil
	}
	return bestEntry.electraAttestation(best)
}
