package attestations

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/state"
	"github.com/suchsoon/nimbus-eth2/config/params"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/crypto/bls"
	"go.opencensus.io/trace"
)

var errOverlappingCommittees = errors.New("on-chain aggregate committees overlap")

// electraCandidate is one single-committee aggregate considered for block
// inclusion post-electra.
type electraCandidate struct {
	score uint64
	slot  types.Slot
	data  *eth.AttestationData
	bits  bitfield.Bitlist
	att   *eth.AttestationElectra
}

// AttestationsForBlockElectra selects aggregates the way the phase0 packer
// does, then consolidates selected aggregates that carry the same vote for
// disjoint committees into single cross-committee attestations, and caps the
// result at MAX_ATTESTATIONS_ELECTRA.
func (p *Pool) AttestationsForBlockElectra(ctx context.Context, st state.ReadOnlyBeaconState) ([]*eth.AttestationElectra, error) {
	ctx, span := trace.StartSpan(ctx, "attestations.AttestationsForBlockElectra")
	defer span.End()
	start := time.Now()
	defer func() {
		blockAttestationPackingTime.Set(time.Since(start).Seconds())
	}()

	cfg := params.BeaconConfig()
	if st.Slot() < cfg.MinAttestationInclusionDelay {
		return nil, nil
	}
	maxAttestationSlot := st.Slot() - cfg.MinAttestationInclusionDelay
	// Single-committee aggregates selected before consolidation. One block
	// attestation can absorb an aggregate from every committee of its slot.
	intermediateCap := cfg.MaxAttestationsElectra * cfg.MaxCommitteesPerSlot

	coverage, err := newAttestationCoverage(ctx, st, p.cfg.DAG)
	if err != nil {
		return nil, err
	}

	candidates := p.collectElectraCandidates(ctx, st, maxAttestationSlot, coverage, intermediateCap)

	// Keep candidates ordered worst-first so selection pops from the end.
	sortElectraCandidates(candidates)
	selected := make([]*eth.AttestationElectra, 0, min(uint64(len(candidates)), intermediateCap))
	for len(candidates) > 0 && uint64(len(selected)) < intermediateCap {
		best := candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		selected = append(selected, best.att)
		if err := coverage.add(best.data, best.bits); err != nil {
			return nil, err
		}

		rescored := false
		kept := candidates[:0]
		for _, c := range candidates {
			if c.data.Slot == best.data.Slot && c.data.CommitteeIndex == best.data.CommitteeIndex {
				c.score = coverage.score(c.data, c.bits)
				if c.score == 0 {
					continue
				}
				rescored = true
			}
			kept = append(kept, c)
		}
		candidates = kept
		if rescored {
			sortElectraCandidates(candidates)
		}
	}

	res := consolidateElectraAttestations(selected)
	if uint64(len(res)) > cfg.MaxAttestationsElectra {
		res = res[:cfg.MaxAttestationsElectra]
	}

	log.WithFields(logrus.Fields{
		"slot":     st.Slot(),
		"selected": len(selected),
		"packed":   len(res),
		"duration": time.Since(start),
	}).Debug("Packed attestations for block")
	return res, nil
}

func (p *Pool) collectElectraCandidates(
	ctx context.Context,
	st state.ReadOnlyBeaconState,
	maxAttestationSlot types.Slot,
	coverage *attestationCoverage,
	limit uint64,
) []*electraCandidate {
	var candidates []*electraCandidate
	for i := uint64(0); i < p.lookback; i++ {
		if types.Slot(i) > maxAttestationSlot {
			break
		}
		slot := maxAttestationSlot - types.Slot(i)
		idx, ok := p.candidateIndex(slot)
		if !ok {
			continue
		}
		for _, e := range p.electraRing[idx] {
			e.updateAggregates()
			for _, v := range e.aggregates {
				if uint64(len(candidates)) >= limit {
					return candidates
				}
				att := e.electraAttestation(v)
				if err := p.cfg.DAG.VerifyAttestationCompatible(ctx, st, att); err != nil {
					continue
				}
				if err := p.cfg.DAG.VerifyAttestationNoVerifySignature(ctx, st, att, p.committees); err != nil {
					continue
				}
				score := coverage.score(e.data, v.aggregationBits)
				if score == 0 {
					continue
				}
				candidates = append(candidates, &electraCandidate{
					score: score,
					slot:  slot,
					data:  e.data,
					bits:  v.aggregationBits,
					att:   att,
				})
			}
		}
	}
	return candidates
}

func sortElectraCandidates(candidates []*electraCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].slot < candidates[j].slot
		}
		return candidates[i].score < candidates[j].score
	})
}

// consolidateElectraAttestations merges selected single-committee aggregates
// that carry the same vote into cross-committee on-chain aggregates. Groups
// that fail to merge are dropped: the protocol only accepts disjoint
// committee sets.
func consolidateElectraAttestations(selected []*eth.AttestationElectra) []*eth.AttestationElectra {
	keys := make([][32]byte, 0, len(selected))
	groups := make(map[[32]byte][]*eth.AttestationElectra, len(selected))
	for _, att := range selected {
		root, err := att.Data.HashTreeRoot()
		if err != nil {
			log.WithError(err).Error("Could not hash attestation data")
			continue
		}
		if _, ok := groups[root]; !ok {
			keys = append(keys, root)
		}
		groups[root] = append(groups[root], att)
	}

	res := make([]*eth.AttestationElectra, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		if len(group) == 1 {
			res = append(res, group[0])
			continue
		}
		aggregate, err := computeOnChainAggregate(group)
		if err != nil {
			log.WithError(err).Warn("Could not compute on-chain aggregate, dropping group")
			continue
		}
		res = append(res, aggregate)
	}
	return res
}

// computeOnChainAggregate merges attestations with the same vote and disjoint
// committees into a single attestation. The aggregation bits of the result
// are the committee-size-prefix-offset concatenation of the inputs' bits, in
// committee order.
//
// Spec pseudocode definition:
//
//	def compute_on_chain_aggregate(network_aggregates: Sequence[Attestation]) -> Attestation
func computeOnChainAggregate(group []*eth.AttestationElectra) (*eth.AttestationElectra, error) {
	sorted := make([]*eth.AttestationElectra, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool {
		return committeeIndexOf(sorted[i]) < committeeIndexOf(sorted[j])
	})

	committeeBits := bitfield.NewBitvector64()
	totalLen := uint64(0)
	for _, att := range sorted {
		index, err := att.GetCommitteeIndex()
		if err != nil {
			return nil, err
		}
		if committeeBits.BitAt(uint64(index)) {
			return nil, errOverlappingCommittees
		}
		committeeBits.SetBitAt(uint64(index), true)
		totalLen += att.AggregationBits.Len()
	}

	bits := bitfield.NewBitlist(totalLen)
	offset := uint64(0)
	sigs := make([]*bls.Signature, 0, len(sorted))
	for _, att := range sorted {
		for _, i := range att.AggregationBits.BitIndices() {
			bits.SetBitAt(offset+uint64(i), true)
		}
		offset += att.AggregationBits.Len()

		sig, err := bls.SignatureFromBytes(att.Signature)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}

	return &eth.AttestationElectra{
		AggregationBits: bits,
		Data:            sorted[0].Data.Copy(),
		CommitteeBits:   committeeBits,
		Signature:       bls.AggregateSignatures(sigs).Marshal(),
	}, nil
}

func committeeIndexOf(att *eth.AttestationElectra) types.CommitteeIndex {
	index, err := att.GetCommitteeIndex()
	if err != nil {
		return 0
	}
	return index
}
