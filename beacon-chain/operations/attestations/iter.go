package attestations

import (
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// AttestationFilter restricts iteration to a slot and/or committee index.
// Nil fields match everything.
type AttestationFilter struct {
	Slot           *types.Slot
	CommitteeIndex *types.CommitteeIndex
}

func (f *AttestationFilter) matches(data *eth.AttestationData) bool {
	if f == nil {
		return true
	}
	if f.Slot != nil && data.Slot != *f.Slot {
		return false
	}
	if f.CommitteeIndex != nil && data.CommitteeIndex != *f.CommitteeIndex {
		return false
	}
	return true
}

// ForEachAttestation yields every phase0 attestation in the pool window
// matching the filter: one synthetic single-voter attestation per pending
// single, then each aggregate. The synthetic attestations share one scratch
// bitlist per entry; callers must not retain them past the callback. Return
// false from the callback to stop.
func (p *Pool) ForEachAttestation(filter *AttestationFilter, fn func(att *eth.Attestation) bool) {
	p.forEachEntry(p.phase0Ring, filter, func(e *entry) bool {
		scratch := bitfield.NewBitlist(e.committeeLen)
		for index, sig := range e.singles {
			scratch.SetBitAt(index, true)
			cont := fn(&eth.Attestation{
				AggregationBits: scratch,
				Data:            e.data,
				Signature:       sig.Marshal(),
			})
			scratch.SetBitAt(index, false)
			if !cont {
				return false
			}
		}
		for _, v := range e.aggregates {
			if !fn(e.attestation(v)) {
				return false
			}
		}
		return true
	})
}

// ForEachAttestationElectra is the electra counterpart of ForEachAttestation.
func (p *Pool) ForEachAttestationElectra(filter *AttestationFilter, fn func(att *eth.AttestationElectra) bool) {
	p.forEachEntry(p.electraRing, filter, func(e *entry) bool {
		committeeBits := bitfield.NewBitvector64()
		committeeBits.SetBitAt(uint64(e.data.CommitteeIndex), true)
		data := e.data.Copy()
		data.CommitteeIndex = 0

		scratch := bitfield.NewBitlist(e.committeeLen)
		for index, sig := range e.singles {
			scratch.SetBitAt(index, true)
			cont := fn(&eth.AttestationElectra{
				AggregationBits: scratch,
				Data:            data,
				CommitteeBits:   committeeBits,
				Signature:       sig.Marshal(),
			})
			scratch.SetBitAt(index, false)
			if !cont {
				return false
			}
		}
		for _, v := range e.aggregates {
			if !fn(e.electraAttestation(v)) {
				return false
			}
		}
		return true
	})
}

func (p *Pool) forEachEntry(ring []bucket, filter *AttestationFilter, fn func(e *entry) bool) {
	for slot := p.startingSlot; slot < p.startingSlot+types.Slot(p.lookback); slot++ {
		if filter != nil && filter.Slot != nil && slot != *filter.Slot {
			continue
		}
		idx, ok := p.candidateIndex(slot)
		if !ok {
			continue
		}
		for _, e := range ring[idx] {
			if !filter.matches(e.data) {
				continue
			}
			if !fn(e) {
				return
			}
		}
	}
}
