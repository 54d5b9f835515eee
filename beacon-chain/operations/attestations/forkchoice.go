package attestations

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// AddForkChoice forwards a freshly imported block to the fork choice store.
// Fork choice failures are logged and swallowed; the store is expected to
// heal as later blocks and votes arrive.
func (p *Pool) AddForkChoice(ctx context.Context, ref *BlockRef, parentRoot [32]byte, unrealized *UnrealizedCheckpoints, wallSlot types.Slot) {
	if err := p.cfg.ForkChoice.ProcessBlock(ctx, ref, parentRoot, unrealized, wallSlot); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"root": fmt.Sprintf("%#x", ref.Root),
			"slot": ref.Slot,
		}).Error("Fork choice rejected block")
	}
}

// AddForkChoiceVotes forwards votes that did not come through the pool's own
// ingest path (e.g. votes recovered from blocks) to the fork choice store.
func (p *Pool) AddForkChoiceVotes(ctx context.Context, slot types.Slot, attestingIndices []types.ValidatorIndex, blockRoot [32]byte, wallSlot types.Slot) {
	if err := p.cfg.ForkChoice.OnAttestation(ctx, slot, blockRoot, attestingIndices, wallSlot); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"slot":            slot,
			"beaconBlockRoot": fmt.Sprintf("%#x", blockRoot),
		}).Error("Fork choice rejected attestation")
	}
}

// SelectHead asks fork choice for the canonical head and resolves it against
// the DAG. A head the DAG does not know is handed to the quarantine and nil
// is returned; the caller retries once the block has been fetched.
func (p *Pool) SelectHead(ctx context.Context, wallSlot types.Slot) *BeaconHead {
	root, err := p.cfg.ForkChoice.Head(ctx, wallSlot)
	if err != nil {
		log.WithError(err).Error("Could not compute fork choice head")
		return nil
	}
	head := p.cfg.DAG.BlockRef(root)
	if head == nil {
		log.WithField("root", fmt.Sprintf("%#x", root)).Warn("Fork choice head unknown to block DAG")
		p.cfg.Quarantine.AddMissing(root)
		return nil
	}

	finalizedHash, _ := p.cfg.DAG.ExecutionBlockHash(p.cfg.DAG.FinalizedBlockRef())
	safeHash := finalizedHash
	if safeRef := p.cfg.DAG.BlockRef(p.cfg.ForkChoice.SafeBlockRoot()); safeRef != nil {
		if h, ok := p.cfg.DAG.ExecutionBlockHash(safeRef); ok {
			safeHash = h
		}
	}

	log.WithFields(logrus.Fields{
		"root": fmt.Sprintf("%#x", head.Root),
		"slot": head.Slot,
	}).Info("Fork choice selected head")
	return &BeaconHead{
		Head:                        head,
		SafeExecutionBlockHash:      safeHash,
		FinalizedExecutionBlockHash: finalizedHash,
	}
}

// Prune lets fork choice drop data older than the finalized checkpoint.
func (p *Pool) Prune() {
	if err := p.cfg.ForkChoice.Prune(); err != nil {
		log.WithError(err).Error("Could not prune fork choice store")
	}
}
