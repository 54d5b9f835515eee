package eth

import (
	"encoding/binary"

	"github.com/pkg/errors"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/crypto/hash"
)

// VoteRoot returns the phase0 vote fingerprint: the hash tree root of the
// attestation data. Two attestations with equal vote roots carry the same
// vote and their signatures may be aggregated.
func VoteRoot(data *AttestationData) ([32]byte, error) {
	if data == nil {
		return [32]byte{}, errors.New("nil attestation data")
	}
	return data.HashTreeRoot()
}

// ElectraVoteRoot returns the electra vote fingerprint. Post-electra the
// committee index lives in the committee bitvector and the in-data index field
// is zero on the wire, so the fingerprint is the root of the pair
// (hash_tree_root(data with index zeroed), hash_tree_root(committee index)).
func ElectraVoteRoot(data *AttestationData, committeeIndex types.CommitteeIndex) ([32]byte, error) {
	if data == nil {
		return [32]byte{}, errors.New("nil attestation data")
	}
	zeroed := data
	if data.CommitteeIndex != 0 {
		zeroed = data.Copy()
		zeroed.CommitteeIndex = 0
	}
	dataRoot, err := zeroed.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	var indexRoot [32]byte
	binary.LittleEndian.PutUint64(indexRoot[:8], uint64(committeeIndex))

	// Root of the two-element vector [dataRoot, indexRoot].
	return hash.Hash(append(dataRoot[:], indexRoot[:]...)), nil
}
