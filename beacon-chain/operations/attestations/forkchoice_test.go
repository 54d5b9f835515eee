package attestations

import (
	"context"
	"testing"

	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/suchsoon/nimbus-eth2/encoding/bytesutil"
	"github.com/suchsoon/nimbus-eth2/testing/assert"
	"github.com/suchsoon/nimbus-eth2/testing/require"
)

func TestSelectHead_ResolvesExecutionHashes(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}

	headRoot := bytesutil.ToBytes32(testRoot(0x01))
	safeRoot := bytesutil.ToBytes32(testRoot(0x02))
	finalizedRoot := bytesutil.ToBytes32(testRoot(0x03))
	dag.blocks[headRoot] = &BlockRef{Root: headRoot, Slot: 90}
	dag.blocks[safeRoot] = &BlockRef{Root: safeRoot, Slot: 70}
	dag.finalized = &BlockRef{Root: finalizedRoot, Slot: 50}
	dag.execHashes[safeRoot] = bytesutil.ToBytes32([]byte{0x52})
	dag.execHashes[finalizedRoot] = bytesutil.ToBytes32([]byte{0x53})
	fc.headRoot = headRoot
	fc.safeBlockRoot = safeRoot

	p := testPool(dag, fc, q)
	head := p.SelectHead(context.Background(), 100)
	require.NotNil(t, head)
	assert.Equal(t, headRoot, head.Head.Root)
	assert.Equal(t, bytesutil.ToBytes32([]byte{0x52}), head.SafeExecutionBlockHash)
	assert.Equal(t, bytesutil.ToBytes32([]byte{0x53}), head.FinalizedExecutionBlockHash)
}

func TestSelectHead_FallsBackToFinalizedHash(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}

	headRoot := bytesutil.ToBytes32(testRoot(0x01))
	finalizedRoot := bytesutil.ToBytes32(testRoot(0x03))
	dag.blocks[headRoot] = &BlockRef{Root: headRoot, Slot: 90}
	dag.finalized = &BlockRef{Root: finalizedRoot, Slot: 50}
	dag.execHashes[finalizedRoot] = bytesutil.ToBytes32([]byte{0x53})
	fc.headRoot = headRoot
	// The safe block is missing from the DAG.
	fc.safeBlockRoot = bytesutil.ToBytes32(testRoot(0x0F))

	p := testPool(dag, fc, q)
	head := p.SelectHead(context.Background(), 100)
	require.NotNil(t, head)
	assert.Equal(t, bytesutil.ToBytes32([]byte{0x53}), head.SafeExecutionBlockHash)
}

func TestSelectHead_UnknownHeadQuarantined(t *testing.T) {
	hook := logTest.NewGlobal()
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}

	unknown := bytesutil.ToBytes32(testRoot(0x0E))
	fc.headRoot = unknown

	p := testPool(dag, fc, q)
	head := p.SelectHead(context.Background(), 100)
	assert.Equal(t, true, head == nil)
	require.Equal(t, 1, len(q.missing))
	assert.Equal(t, unknown, q.missing[0])
	require.LogsContain(t, hook, "Fork choice head unknown to block DAG")
}

func TestSelectHead_HeadError(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	fc.headErr = errTestForkChoice

	p := testPool(dag, fc, q)
	assert.Equal(t, true, p.SelectHead(context.Background(), 100) == nil)
	assert.Equal(t, 0, len(q.missing))
}

func TestAddForkChoice_ForwardsBlock(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	ref := &BlockRef{Root: bytesutil.ToBytes32(testRoot(0x01)), Slot: 7}
	p.AddForkChoice(context.Background(), ref, bytesutil.ToBytes32(testRoot(0x02)), nil, 8)
	require.Equal(t, 1, len(fc.blocks))
	assert.Equal(t, ref.Root, fc.blocks[0].Root)
}

func TestAddForkChoice_ErrorLoggedAndSwallowed(t *testing.T) {
	hook := logTest.NewGlobal()
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	fc.processErr = errTestForkChoice
	p := testPool(dag, fc, q)

	ref := &BlockRef{Root: bytesutil.ToBytes32(testRoot(0x01)), Slot: 7}
	p.AddForkChoice(context.Background(), ref, [32]byte{}, nil, 8)
	require.LogsContain(t, hook, "Fork choice rejected block")
}

func TestAddForkChoiceVotes(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	root := bytesutil.ToBytes32(testRoot(0x04))
	p.AddForkChoiceVotes(context.Background(), 9, nil, root, 10)
	require.Equal(t, 1, len(fc.votes))
	assert.Equal(t, root, fc.votes[0].blockRoot)
}

func TestPrune_ErrorLoggedAndSwallowed(t *testing.T) {
	hook := logTest.NewGlobal()
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	fc.pruneErr = errTestForkChoice
	p := testPool(dag, fc, q)

	p.Prune()
	assert.Equal(t, 1, fc.pruneCalled)
	require.LogsContain(t, hook, "Could not prune fork choice store")
}
