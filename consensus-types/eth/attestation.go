// Package eth defines the consensus-layer containers the attestation pool
// operates on, together with the version-agnostic Att interface.
package eth

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/encoding/bytesutil"
	"github.com/suchsoon/nimbus-eth2/runtime/version"
)

// Checkpoint is an (epoch, root) pair pointing at the last block of an epoch.
type Checkpoint struct {
	Epoch types.Epoch
	Root  []byte
}

// AttestationData is the canonical vote payload all validators of a committee
// sign.
type AttestationData struct {
	Slot            types.Slot
	CommitteeIndex  types.CommitteeIndex
	BeaconBlockRoot []byte
	Source          *Checkpoint
	Target          *Checkpoint
}

// Attestation is the phase0 on-wire attestation: one bit per committee member
// plus the aggregate signature over the selected members.
type Attestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	Signature       []byte
}

// AttestationElectra carries an additional committee bitvector. On the gossip
// ingress path exactly one committee bit is set and AggregationBits spans that
// single committee; block-level consolidation may merge several committees.
type AttestationElectra struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	CommitteeBits   bitfield.Bitvector64
	Signature       []byte
}

// PendingAttestation is the phase0 in-state record of an included attestation.
type PendingAttestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	InclusionDelay  types.Slot
	ProposerIndex   types.ValidatorIndex
}

// Att defines common functionality for all attestation types.
type Att interface {
	Version() int
	Clone() Att
	GetAggregationBits() bitfield.Bitlist
	GetData() *AttestationData
	CommitteeBitsVal() bitfield.Bitfield
	GetSignature() []byte
	GetCommitteeIndex() (types.CommitteeIndex, error)
}

// Copy --
func (cp *Checkpoint) Copy() *Checkpoint {
	if cp == nil {
		return nil
	}
	return &Checkpoint{
		Epoch: cp.Epoch,
		Root:  bytesutil.SafeCopyBytes(cp.Root),
	}
}

// Copy --
func (attData *AttestationData) Copy() *AttestationData {
	if attData == nil {
		return nil
	}
	return &AttestationData{
		Slot:            attData.Slot,
		CommitteeIndex:  attData.CommitteeIndex,
		BeaconBlockRoot: bytesutil.SafeCopyBytes(attData.BeaconBlockRoot),
		Source:          attData.Source.Copy(),
		Target:          attData.Target.Copy(),
	}
}

// Version --
func (a *Attestation) Version() int {
	return version.Phase0
}

// Clone --
func (a *Attestation) Clone() Att {
	return a.Copy()
}

// Copy --
func (a *Attestation) Copy() *Attestation {
	if a == nil {
		return nil
	}
	return &Attestation{
		AggregationBits: bytesutil.SafeCopyBytes(a.AggregationBits),
		Data:            a.Data.Copy(),
		Signature:       bytesutil.SafeCopyBytes(a.Signature),
	}
}

// GetAggregationBits --
func (a *Attestation) GetAggregationBits() bitfield.Bitlist {
	return a.AggregationBits
}

// GetData --
func (a *Attestation) GetData() *AttestationData {
	return a.Data
}

// CommitteeBitsVal --
func (a *Attestation) CommitteeBitsVal() bitfield.Bitfield {
	cb := bitfield.NewBitvector64()
	cb.SetBitAt(uint64(a.Data.CommitteeIndex), true)
	return cb
}

// GetSignature --
func (a *Attestation) GetSignature() []byte {
	return a.Signature
}

// GetCommitteeIndex --
func (a *Attestation) GetCommitteeIndex() (types.CommitteeIndex, error) {
	if a == nil || a.Data == nil {
		return 0, errors.New("nil attestation data")
	}
	return a.Data.CommitteeIndex, nil
}

// Version --
func (a *AttestationElectra) Version() int {
	return version.Electra
}

// Clone --
func (a *AttestationElectra) Clone() Att {
	return a.Copy()
}

// Copy --
func (a *AttestationElectra) Copy() *AttestationElectra {
	if a == nil {
		return nil
	}
	return &AttestationElectra{
		AggregationBits: bytesutil.SafeCopyBytes(a.AggregationBits),
		CommitteeBits:   bytesutil.SafeCopyBytes(a.CommitteeBits),
		Data:            a.Data.Copy(),
		Signature:       bytesutil.SafeCopyBytes(a.Signature),
	}
}

// GetAggregationBits --
func (a *AttestationElectra) GetAggregationBits() bitfield.Bitlist {
	return a.AggregationBits
}

// GetData --
func (a *AttestationElectra) GetData() *AttestationData {
	return a.Data
}

// CommitteeBitsVal --
func (a *AttestationElectra) CommitteeBitsVal() bitfield.Bitfield {
	return a.CommitteeBits
}

// GetSignature --
func (a *AttestationElectra) GetSignature() []byte {
	return a.Signature
}

// GetCommitteeIndex returns the single committee the attestation is for.
// Consolidated on-chain aggregates span several committees and have no single
// index, in which case an error is returned.
func (a *AttestationElectra) GetCommitteeIndex() (types.CommitteeIndex, error) {
	if a == nil || a.Data == nil {
		return 0, errors.New("nil attestation data")
	}
	indices := a.CommitteeBits.BitIndices()
	if len(indices) != 1 {
		return 0, errors.Errorf("%d committee bits are set instead of 1", len(indices))
	}
	return types.CommitteeIndex(indices[0]), nil
}

// Copy --
func (a *PendingAttestation) Copy() *PendingAttestation {
	if a == nil {
		return nil
	}
	return &PendingAttestation{
		AggregationBits: bytesutil.SafeCopyBytes(a.AggregationBits),
		Data:            a.Data.Copy(),
		InclusionDelay:  a.InclusionDelay,
		ProposerIndex:   a.ProposerIndex,
	}
}
