package attestations

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/cache"
	"github.com/suchsoon/nimbus-eth2/beacon-chain/state"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/crypto/bls"
	"github.com/suchsoon/nimbus-eth2/runtime/version"
)

var errTestForkChoice = errors.New("fork choice says no")

type mockDAG struct {
	blocks         map[[32]byte]*BlockRef
	finalized      *BlockRef
	execHashes     map[[32]byte][32]byte
	committeeSize  uint64
	committeeCount uint64
	verifyErr      func(att eth.Att) error
	compatibleErr  func(att eth.Att) error
}

func newMockDAG() *mockDAG {
	return &mockDAG{
		blocks:         make(map[[32]byte]*BlockRef),
		execHashes:     make(map[[32]byte][32]byte),
		committeeSize:  8,
		committeeCount: 1,
	}
}

func (m *mockDAG) HasBlock(root [32]byte) bool {
	_, ok := m.blocks[root]
	return ok
}

func (m *mockDAG) BlockRef(root [32]byte) *BlockRef {
	return m.blocks[root]
}

func (m *mockDAG) FinalizedBlockRef() *BlockRef {
	return m.finalized
}

func (m *mockDAG) ExecutionBlockHash(ref *BlockRef) ([32]byte, bool) {
	if ref == nil {
		return [32]byte{}, false
	}
	h, ok := m.execHashes[ref.Root]
	return h, ok
}

func (m *mockDAG) BeaconCommittee(_ context.Context, _ state.ReadOnlyBeaconState, slot types.Slot, index types.CommitteeIndex) ([]types.ValidatorIndex, error) {
	committee := make([]types.ValidatorIndex, m.committeeSize)
	base := (uint64(slot)*m.committeeCount + uint64(index)) * m.committeeSize
	for i := range committee {
		committee[i] = types.ValidatorIndex(base + uint64(i))
	}
	return committee, nil
}

func (m *mockDAG) CommitteeCountPerSlot(_ state.ReadOnlyBeaconState, _ types.Epoch) uint64 {
	return m.committeeCount
}

func (m *mockDAG) VerifyAttestationNoVerifySignature(_ context.Context, _ state.ReadOnlyBeaconState, att eth.Att, _ *cache.CommitteeCache) error {
	if m.verifyErr != nil {
		return m.verifyErr(att)
	}
	return nil
}

func (m *mockDAG) VerifyAttestationCompatible(_ context.Context, _ state.ReadOnlyBeaconState, att eth.Att) error {
	if m.compatibleErr != nil {
		return m.compatibleErr(att)
	}
	return nil
}

type forkChoiceVote struct {
	slot             types.Slot
	blockRoot        [32]byte
	attestingIndices []types.ValidatorIndex
}

type mockForkChoice struct {
	votes         []forkChoiceVote
	blocks        []*BlockRef
	headRoot      [32]byte
	headErr       error
	onAttErr      error
	processErr    error
	safeBlockRoot [32]byte
	pruneErr      error
	pruneCalled   int
}

func (m *mockForkChoice) ProcessBlock(_ context.Context, ref *BlockRef, _ [32]byte, _ *UnrealizedCheckpoints, _ types.Slot) error {
	if m.processErr != nil {
		return m.processErr
	}
	m.blocks = append(m.blocks, ref)
	return nil
}

func (m *mockForkChoice) OnAttestation(_ context.Context, slot types.Slot, blockRoot [32]byte, attestingIndices []types.ValidatorIndex, _ types.Slot) error {
	if m.onAttErr != nil {
		return m.onAttErr
	}
	m.votes = append(m.votes, forkChoiceVote{slot: slot, blockRoot: blockRoot, attestingIndices: attestingIndices})
	return nil
}

func (m *mockForkChoice) Head(_ context.Context, _ types.Slot) ([32]byte, error) {
	return m.headRoot, m.headErr
}

func (m *mockForkChoice) SafeBlockRoot() [32]byte {
	return m.safeBlockRoot
}

func (m *mockForkChoice) Prune() error {
	m.pruneCalled++
	return m.pruneErr
}

type mockQuarantine struct {
	missing [][32]byte
}

func (m *mockQuarantine) AddMissing(root [32]byte) {
	m.missing = append(m.missing, root)
}

type mockState struct {
	version  int
	slot     types.Slot
	prevAtts []*eth.PendingAttestation
	currAtts []*eth.PendingAttestation
	prevPart []byte
	currPart []byte
}

func (m *mockState) Version() int     { return m.version }
func (m *mockState) Slot() types.Slot { return m.slot }

func (m *mockState) PreviousEpochAttestations() ([]*eth.PendingAttestation, error) {
	return m.prevAtts, nil
}

func (m *mockState) CurrentEpochAttestations() ([]*eth.PendingAttestation, error) {
	return m.currAtts, nil
}

func (m *mockState) PreviousEpochParticipation() ([]byte, error) {
	return m.prevPart, nil
}

func (m *mockState) CurrentEpochParticipation() ([]byte, error) {
	return m.currPart, nil
}

func testPool(dag *mockDAG, fc *mockForkChoice, q *mockQuarantine) *Pool {
	return NewPool(&Config{DAG: dag, ForkChoice: fc, Quarantine: q})
}

func testRoot(seed byte) []byte {
	root := make([]byte, 32)
	root[0] = seed
	return root
}

func testData(slot types.Slot, index types.CommitteeIndex) *eth.AttestationData {
	return &eth.AttestationData{
		Slot:            slot,
		CommitteeIndex:  index,
		BeaconBlockRoot: testRoot(0xAA),
		Source:          &eth.Checkpoint{Epoch: 0, Root: testRoot(0xBB)},
		Target:          &eth.Checkpoint{Epoch: 1, Root: testRoot(0xCC)},
	}
}

var testKey = bls.RandKey()

// testSig derives a distinct deterministic signature per validator index.
func testSig(index uint64) *bls.Signature {
	msg := make([]byte, 8)
	binary.LittleEndian.PutUint64(msg, index)
	return testKey.Sign(msg)
}

func testBits(committeeLen uint64, indices ...uint64) bitfield.Bitlist {
	bits := bitfield.NewBitlist(committeeLen)
	for _, i := range indices {
		bits.SetBitAt(i, true)
	}
	return bits
}

func testAtt(data *eth.AttestationData, committeeLen uint64, indices ...uint64) (*eth.Attestation, *bls.Signature) {
	sigs := make([]*bls.Signature, 0, len(indices))
	for _, i := range indices {
		sigs = append(sigs, testSig(i))
	}
	sig := bls.AggregateSignatures(sigs)
	return &eth.Attestation{
		AggregationBits: testBits(committeeLen, indices...),
		Data:            data,
		Signature:       sig.Marshal(),
	}, sig
}

func testAttElectra(data *eth.AttestationData, committeeIndex types.CommitteeIndex, committeeLen uint64, indices ...uint64) (*eth.AttestationElectra, *bls.Signature) {
	sigs := make([]*bls.Signature, 0, len(indices))
	for _, i := range indices {
		sigs = append(sigs, testSig(i))
	}
	sig := bls.AggregateSignatures(sigs)
	committeeBits := bitfield.NewBitvector64()
	committeeBits.SetBitAt(uint64(committeeIndex), true)
	return &eth.AttestationElectra{
		AggregationBits: testBits(committeeLen, indices...),
		Data:            data,
		CommitteeBits:   committeeBits,
		Signature:       sig.Marshal(),
	}, sig
}

var _ state.ReadOnlyBeaconState = (*mockState)(nil)
var _ ChainDAG = (*mockDAG)(nil)
var _ ForkChoicer = (*mockForkChoice)(nil)
var _ MissingBlockSink = (*mockQuarantine)(nil)

// phase0State returns a state at the given slot that uses the phase0
// pending-attestation coverage path.
func phase0State(slot types.Slot) *mockState {
	return &mockState{version: version.Phase0, slot: slot}
}
