package attestations

import (
	"context"
	"time"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/state"
	"github.com/suchsoon/nimbus-eth2/config/params"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"go.opencensus.io/trace"
)

// packingCandidate is one aggregate considered for block inclusion, together
// with its current coverage score.
type packingCandidate struct {
	score uint64
	slot  types.Slot
	data  *eth.AttestationData
	bits  bitfield.Bitlist
	att   *eth.Attestation
}

// AttestationsForBlock selects up to MAX_ATTESTATIONS aggregates for a block
// proposed on top of the given state, greedily maximizing the number of new
// voters each selected attestation contributes.
func (p *Pool) AttestationsForBlock(ctx context.Context, st state.ReadOnlyBeaconState) ([]*eth.Attestation, error) {
	ctx, span := trace.StartSpan(ctx, "attestations.AttestationsForBlock")
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

	coverage, err := newAttestationCoverage(ctx, st, p.cfg.DAG)
	if err != nil {
		return nil, err
	}

	candidates := p.collectPhase0Candidates(ctx, st, maxAttestationSlot, coverage)

	res := make([]*eth.Attestation, 0, min(uint64(len(candidates)), cfg.MaxAttestations))
	for len(candidates) > 0 && uint64(len(res)) < cfg.MaxAttestations {
		best := len(candidates) - 1
		if uint64(len(candidates))+uint64(len(res)) > cfg.MaxAttestations {
			// More candidates than remaining block slots: find the best one.
			// Otherwise everything left fits and any order will do.
			for i := range candidates {
				if candidates[i].score > candidates[best].score ||
					(candidates[i].score == candidates[best].score && candidates[i].slot > candidates[best].slot) {
					best = i
				}
			}
		}
		selected := candidates[best]
		candidates[best] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		res = append(res, selected.att)
		if err := coverage.add(selected.data, selected.bits); err != nil {
			return nil, err
		}
		candidates = rescoreCandidates(candidates, coverage, selected.data)
	}

	log.WithFields(logrus.Fields{
		"slot":     st.Slot(),
		"packed":   len(res),
		"duration": time.Since(start),
	}).Debug("Packed attestations for block")
	return res, nil
}

func (p *Pool) collectPhase0Candidates(
	ctx context.Context,
	st state.ReadOnlyBeaconState,
	maxAttestationSlot types.Slot,
	coverage *attestationCoverage,
) []*packingCandidate {
	var candidates []*packingCandidate
	for i := uint64(0); i < p.lookback; i++ {
		if types.Slot(i) > maxAttestationSlot {
			break
		}
		slot := maxAttestationSlot - types.Slot(i)
		idx, ok := p.candidateIndex(slot)
		if !ok {
			continue
		}
		for _, e := range p.phase0Ring[idx] {
			e.updateAggregates()
			for _, v := range e.aggregates {
				att := e.attestation(v)
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
				candidates = append(candidates, &packingCandidate{
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

// rescoreCandidates refreshes the scores of every candidate voting for the
// same committee slot as the just-selected attestation and drops the ones
// with nothing left to contribute.
func rescoreCandidates(candidates []*packingCandidate, coverage *attestationCoverage, selected *eth.AttestationData) []*packingCandidate {
	kept := candidates[:0]
	for _, c := range candidates {
		if c.data.Slot == selected.Slot && c.data.CommitteeIndex == selected.CommitteeIndex {
			c.score = coverage.score(c.data, c.bits)
			if c.score == 0 {
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}
