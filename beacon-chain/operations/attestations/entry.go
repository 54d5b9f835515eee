package attestations

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	"github.com/suchsoon/nimbus-eth2/crypto/bls"
)

var errBitsLengthMismatch = errors.New("aggregation bits length does not match committee length")

// validation is one non-overlapping signature aggregate for a vote: the
// aggregate signature equals the BLS sum over exactly the committee members
// whose bit is set.
type validation struct {
	aggregationBits bitfield.Bitlist
	signature       *bls.AggregateSignature
}

// entry holds every signature the pool has seen for one distinct vote.
// Single-voter signatures observed on the subnets are kept separately so that
// aggregates arriving later can still be topped up with them. The aggregates
// list maintains the antichain invariant: no element's bits is a subset of
// another's.
type entry struct {
	data         *eth.AttestationData
	committeeLen uint64
	singles      map[uint64]*bls.Signature
	aggregates   []*validation
}

func newEntry(data *eth.AttestationData, committeeLen uint64) *entry {
	return &entry{
		data:         data.Copy(),
		committeeLen: committeeLen,
	}
}

// insert records a validated attestation for this vote. It returns true iff
// the attestation added information the entry did not already have.
func (e *entry) insert(bits bitfield.Bitlist, sig *bls.Signature) (bool, error) {
	if bits.Len() != e.committeeLen {
		return false, errors.Wrapf(errBitsLengthMismatch, "%d != %d", bits.Len(), e.committeeLen)
	}

	indices := bits.BitIndices()
	if len(indices) == 1 {
		index := uint64(indices[0])
		if _, ok := e.singles[index]; ok {
			return false, nil
		}
		if e.singles == nil {
			e.singles = make(map[uint64]*bls.Signature)
		}
		e.singles[index] = sig.Copy()
		return true, nil
	}

	covered, err := e.covers(bits)
	if err != nil {
		return false, err
	}
	if covered {
		return false, nil
	}

	// The new aggregate is not covered: drop every existing aggregate it
	// subsumes, then append it.
	kept := e.aggregates[:0]
	for _, v := range e.aggregates {
		subsumed, err := bits.Contains(v.aggregationBits)
		if err != nil {
			return false, err
		}
		if !subsumed {
			kept = append(kept, v)
		}
	}
	e.aggregates = append(kept, &validation{
		aggregationBits: bitfield.Bitlist(append([]byte{}, bits...)),
		signature:       bls.NewAggregateSignature(sig),
	})
	return true, nil
}

// covers returns true iff some existing aggregate's bits is a superset of the
// given bits.
func (e *entry) covers(bits bitfield.Bitlist) (bool, error) {
	for _, v := range e.aggregates {
		c, err := v.aggregationBits.Contains(bits)
		if err != nil {
			return false, err
		}
		if c {
			return true, nil
		}
	}
	return false, nil
}

// updateAggregates folds the single-voter signatures into the aggregates. If
// the entry has no aggregate yet, one is created covering all singles;
// otherwise every aggregate is topped up with the singles it is missing. The
// singles table is retained for aggregates that may arrive later.
func (e *entry) updateAggregates() {
	if len(e.singles) == 0 {
		return
	}

	if len(e.aggregates) == 0 {
		bits := bitfield.NewBitlist(e.committeeLen)
		var agg *bls.AggregateSignature
		for index, sig := range e.singles {
			bits.SetBitAt(index, true)
			if agg == nil {
				agg = bls.NewAggregateSignature(sig)
			} else {
				agg.Aggregate(sig)
			}
		}
		e.aggregates = append(e.aggregates, &validation{
			aggregationBits: bits,
			signature:       agg,
		})
		return
	}

	updated := false
	for _, v := range e.aggregates {
		for index, sig := range e.singles {
			if !v.aggregationBits.BitAt(index) {
				v.aggregationBits.SetBitAt(index, true)
				v.signature.Aggregate(sig)
				updated = true
			}
		}
	}
	if updated {
		e.pruneCovered()
	}
}

// pruneCovered re-establishes the antichain invariant after aggregates have
// been topped up. The aggregates count is bounded by the aggregators per
// committee, so the quadratic scan is fine.
func (e *entry) pruneCovered() {
	kept := make([]*validation, 0, len(e.aggregates))
	for i, v := range e.aggregates {
		covered := false
		for j, other := range e.aggregates {
			if i == j {
				continue
			}
			c, err := other.aggregationBits.Contains(v.aggregationBits)
			if err != nil {
				continue
			}
			// On equal bits keep the earlier element only.
			if c && (other.aggregationBits.Count() > v.aggregationBits.Count() || j < i) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, v)
		}
	}
	e.aggregates = kept
}

// attestation materializes one aggregate of this entry as a phase0 on-wire
// attestation.
func (e *entry) attestation(v *validation) *eth.Attestation {
	return &eth.Attestation{
		AggregationBits: bitfield.Bitlist(append([]byte{}, v.aggregationBits...)),
		Data:            e.data.Copy(),
		Signature:       v.signature.Marshal(),
	}
}

// electraAttestation materializes one aggregate of this entry as an electra
// on-wire attestation: the in-data committee index is zeroed and the committee
// bitvector carries the index instead.
func (e *entry) electraAttestation(v *validation) *eth.AttestationElectra {
	data := e.data.Copy()
	committeeBits := bitfield.NewBitvector64()
	committeeBits.SetBitAt(uint64(data.CommitteeIndex), true)
	data.CommitteeIndex = 0
	return &eth.AttestationElectra{
		AggregationBits: bitfield.Bitlist(append([]byte{}, v.aggregationBits...)),
		Data:            data,
		CommitteeBits:   committeeBits,
		Signature:       v.signature.Marshal(),
	}
}

// bestAggregate returns the aggregate with the most participants, nil when the
// entry has none.
func (e *entry) bestAggregate() *validation {
	var best *validation
	for _, v := range e.aggregates {
		if best == nil || v.aggregationBits.Count() > best.aggregationBits.Count() {
			best = v
		}
	}
	return best
}
