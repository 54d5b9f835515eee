package attestations

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/cache"
	"github.com/suchsoon/nimbus-eth2/config/params"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/crypto/bls"
	"github.com/suchsoon/nimbus-eth2/encoding/bytesutil"
	"go.opencensus.io/trace"
)

// bucket maps vote fingerprints to the entry collecting signatures for that
// vote within one slot.
type bucket map[[32]byte]*entry

// NextAttestationEpochs tracks, per validator, the next epochs at which the
// duties code should broadcast a subnet attestation resp. an aggregate. The
// pool only stores the table; duties code reads and advances it to avoid
// duplicate broadcasts.
type NextAttestationEpochs struct {
	Subnet    types.Epoch
	Aggregate types.Epoch
}

// Config options for the attestation pool.
type Config struct {
	DAG        ChainDAG
	ForkChoice ForkChoicer
	Quarantine MissingBlockSink

	// Optional callbacks invoked after an attestation added new information
	// to the pool.
	OnPhase0AttestationAdded  func(att *eth.Attestation)
	OnElectraAttestationAdded func(att *eth.AttestationElectra)
}

// Pool collects attestations seen on the subnets, aggregates their signatures
// per distinct vote, forwards the votes to fork choice and serves aggregation
// and block-packing queries.
//
// The pool is owned by a single task: none of its methods are safe for
// concurrent use.
type Pool struct {
	cfg      *Config
	lookback uint64

	// startingSlot is the lowest slot the candidate rings currently hold.
	// A slot s is resident iff startingSlot <= s < startingSlot+lookback.
	startingSlot types.Slot
	phase0Ring   []bucket
	electraRing  []bucket

	committees      *cache.CommitteeCache
	nextAttestation map[types.ValidatorIndex]NextAttestationEpochs
}

// NewPool initializes a new attestation pool.
func NewPool(cfg *Config) *Pool {
	lookback := uint64(params.BeaconConfig().AttestationLookback())
	p := &Pool{
		cfg:             cfg,
		lookback:        lookback,
		phase0Ring:      make([]bucket, lookback),
		electraRing:     make([]bucket, lookback),
		committees:      cache.NewCommitteesCache(),
		nextAttestation: make(map[types.ValidatorIndex]NextAttestationEpochs),
	}
	log.WithField("lookback", lookback).Info("Attestation pool initialized")
	return p
}

// candidateIndex maps a slot to its ring bucket, with ok=false when the slot
// is outside the window the pool retains.
func (p *Pool) candidateIndex(slot types.Slot) (uint64, bool) {
	if slot < p.startingSlot || slot >= p.startingSlot+types.Slot(p.lookback) {
		return 0, false
	}
	return uint64(slot) % p.lookback, true
}

// Advance moves the window forward so that wallSlot is the newest resident
// slot, resetting the buckets that fall out of the window. Attestations older
// than the window can no longer be included in a block, so dropping whole
// buckets is safe.
func (p *Pool) Advance(wallSlot types.Slot) {
	if uint64(wallSlot)+1 < p.lookback {
		// The ring still covers slot zero, nothing to evict.
		if wallSlot < p.startingSlot {
			log.WithFields(logrus.Fields{
				"wallSlot":     wallSlot,
				"startingSlot": p.startingSlot,
			}).Error("Clock appears to have moved backwards, not advancing attestation pool")
		}
		return
	}
	newStart := wallSlot + 1 - types.Slot(p.lookback)
	if newStart < p.startingSlot {
		log.WithFields(logrus.Fields{
			"wallSlot":     wallSlot,
			"startingSlot": p.startingSlot,
		}).Error("Clock appears to have moved backwards, not advancing attestation pool")
		return
	}

	if uint64(newStart-p.startingSlot) >= p.lookback {
		for i := range p.phase0Ring {
			p.phase0Ring[i] = nil
			p.electraRing[i] = nil
		}
	} else {
		for slot := p.startingSlot; slot < newStart; slot++ {
			i := uint64(slot) % p.lookback
			p.phase0Ring[i] = nil
			p.electraRing[i] = nil
		}
	}
	p.startingSlot = newStart
}

// SaveAttestation adds a fully validated phase0 attestation to the pool,
// forwards the vote to fork choice and fires the registered callback. The
// cooked signature must match the attestation signature; committee membership
// and shuffling have been checked by the caller.
func (p *Pool) SaveAttestation(ctx context.Context, att *eth.Attestation, attestingIndices []types.ValidatorIndex, sig *bls.Signature, wallSlot types.Slot) {
	ctx, span := trace.StartSpan(ctx, "attestations.SaveAttestation")
	defer span.End()

	p.Advance(wallSlot)

	idx, ok := p.candidateIndex(att.Data.Slot)
	if !ok {
		log.WithField("slot", att.Data.Slot).Debug("Attestation slot outside pool window, ignoring")
		return
	}
	root, err := eth.VoteRoot(att.Data)
	if err != nil {
		log.WithError(err).Error("Could not hash attestation data")
		return
	}

	e := p.entryFor(p.phase0Ring, idx, root, att.Data, att.AggregationBits.Len())
	added, err := e.insert(att.AggregationBits, sig)
	if err != nil {
		log.WithError(err).Error("Could not insert attestation")
		return
	}
	if !added {
		log.WithField("slot", att.Data.Slot).Trace("Attestation carried no new votes")
		return
	}
	log.WithFields(logrus.Fields{
		"slot":  att.Data.Slot,
		"index": att.Data.CommitteeIndex,
		"count": att.AggregationBits.Count(),
	}).Debug("Attestation resolved")

	p.forwardVotes(ctx, att.Data, attestingIndices, wallSlot)

	if p.cfg.OnPhase0AttestationAdded != nil {
		p.cfg.OnPhase0AttestationAdded(att)
	}
}

// SaveAttestationElectra is the electra counterpart of SaveAttestation. The
// attestation must have exactly one committee bit set; anything else never
// passes gossip validation and is dropped here as a safety net.
func (p *Pool) SaveAttestationElectra(ctx context.Context, att *eth.AttestationElectra, attestingIndices []types.ValidatorIndex, sig *bls.Signature, wallSlot types.Slot) {
	ctx, span := trace.StartSpan(ctx, "attestations.SaveAttestationElectra")
	defer span.End()

	p.Advance(wallSlot)

	committeeIndex, err := att.GetCommitteeIndex()
	if err != nil {
		log.WithError(err).Debug("Rejecting electra attestation without a single committee bit")
		return
	}
	idx, ok := p.candidateIndex(att.Data.Slot)
	if !ok {
		log.WithField("slot", att.Data.Slot).Debug("Attestation slot outside pool window, ignoring")
		return
	}
	root, err := eth.ElectraVoteRoot(att.Data, committeeIndex)
	if err != nil {
		log.WithError(err).Error("Could not hash attestation data")
		return
	}

	// The entry keeps the committee index in-data so that the pool can filter
	// by committee without consulting the bitvector again.
	data := att.Data.Copy()
	data.CommitteeIndex = committeeIndex

	e := p.entryFor(p.electraRing, idx, root, data, att.AggregationBits.Len())
	added, err := e.insert(att.AggregationBits, sig)
	if err != nil {
		log.WithError(err).Error("Could not insert attestation")
		return
	}
	if !added {
		log.WithField("slot", att.Data.Slot).Trace("Attestation carried no new votes")
		return
	}
	log.WithFields(logrus.Fields{
		"slot":  att.Data.Slot,
		"index": committeeIndex,
		"count": att.AggregationBits.Count(),
	}).Debug("Attestation resolved")

	p.forwardVotes(ctx, att.Data, attestingIndices, wallSlot)

	if p.cfg.OnElectraAttestationAdded != nil {
		p.cfg.OnElectraAttestationAdded(att)
	}
}

func (p *Pool) entryFor(ring []bucket, idx uint64, root [32]byte, data *eth.AttestationData, committeeLen uint64) *entry {
	if ring[idx] == nil {
		ring[idx] = make(bucket)
	}
	e, ok := ring[idx][root]
	if !ok {
		e = newEntry(data, committeeLen)
		ring[idx][root] = e
	}
	return e
}

// forwardVotes notifies fork choice of a new vote. Fork choice failures are
// logged and swallowed: the store heals itself once the missing data arrives.
func (p *Pool) forwardVotes(ctx context.Context, data *eth.AttestationData, attestingIndices []types.ValidatorIndex, wallSlot types.Slot) {
	blockRoot := bytesutil.ToBytes32(data.BeaconBlockRoot)
	if err := p.cfg.ForkChoice.OnAttestation(ctx, data.Slot, blockRoot, attestingIndices, wallSlot); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"slot":            data.Slot,
			"beaconBlockRoot": fmt.Sprintf("%#x", blockRoot),
		}).Error("Fork choice rejected attestation")
	}
}

// NextAttestationEpochs returns the broadcast schedule entry for a validator.
// Validators the pool has not seen yet get the zero value.
func (p *Pool) NextAttestationEpochs(index types.ValidatorIndex) NextAttestationEpochs {
	return p.nextAttestation[index]
}

// SetNextSubnetEpoch records the next epoch at which the validator should
// broadcast a subnet attestation.
func (p *Pool) SetNextSubnetEpoch(index types.ValidatorIndex, epoch types.Epoch) {
	next := p.nextAttestation[index]
	next.Subnet = epoch
	p.nextAttestation[index] = next
}

// SetNextAggregateEpoch records the next epoch at which the validator should
// broadcast an aggregate.
func (p *Pool) SetNextAggregateEpoch(index types.ValidatorIndex, epoch types.Epoch) {
	next := p.nextAttestation[index]
	next.Aggregate = epoch
	p.nextAttestation[index] = next
}
