package attestations

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/suchsoon/nimbus-eth2/config/params"
	"github.com/suchsoon/nimbus-eth2/consensus-types/eth"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
	"github.com/suchsoon/nimbus-eth2/testing/assert"
	"github.com/suchsoon/nimbus-eth2/testing/require"
)

func TestPool_SaveAttestationNotifiesForkChoiceOnce(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	att, sig := testAtt(testData(1, 0), 8, 3)
	indices := []types.ValidatorIndex{11}

	p.SaveAttestation(context.Background(), att, indices, sig, 1)
	require.Equal(t, 1, len(fc.votes))
	assert.Equal(t, types.Slot(1), fc.votes[0].slot)
	assert.DeepEqual(t, indices, fc.votes[0].attestingIndices)

	// The exact same vote must not reach fork choice a second time.
	p.SaveAttestation(context.Background(), att, indices, sig, 1)
	assert.Equal(t, 1, len(fc.votes))
}

func TestPool_SaveAttestationInvokesCallback(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	var seen []*eth.Attestation
	p := NewPool(&Config{
		DAG:        dag,
		ForkChoice: fc,
		Quarantine: q,
		OnPhase0AttestationAdded: func(att *eth.Attestation) {
			seen = append(seen, att)
		},
	})

	att, sig := testAtt(testData(1, 0), 8, 3)
	p.SaveAttestation(context.Background(), att, nil, sig, 1)
	require.Equal(t, 1, len(seen))

	p.SaveAttestation(context.Background(), att, nil, sig, 1)
	assert.Equal(t, 1, len(seen), "duplicate votes must not fire the callback")
}

func TestPool_SaveAttestationStaleSlotIgnored(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	lookback := uint64(params.BeaconConfig().AttestationLookback())
	wallSlot := types.Slot(10 * lookback)

	att, sig := testAtt(testData(1, 0), 8, 3)
	p.SaveAttestation(context.Background(), att, nil, sig, wallSlot)
	assert.Equal(t, 0, len(fc.votes), "stale attestation must be dropped silently")
}

func TestPool_AdvanceEvictsOldBuckets(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	lookback := uint64(params.BeaconConfig().AttestationLookback())

	att, sig := testAtt(testData(100, 0), 8, 3)
	p.Advance(100)
	require.Equal(t, types.Slot(101-int(lookback)), p.startingSlot)
	p.SaveAttestation(context.Background(), att, nil, sig, 100)
	require.Equal(t, 1, len(fc.votes))

	// Jump far enough that slot 100 falls out of the window.
	p.Advance(types.Slot(100 + lookback + 5))
	_, ok := p.candidateIndex(100)
	assert.Equal(t, false, ok)

	// A fresh ingest for the evicted slot is dropped.
	p.SaveAttestation(context.Background(), att, nil, sig, types.Slot(100+lookback+5))
	assert.Equal(t, 1, len(fc.votes))
}

func TestPool_AdvanceClockRegression(t *testing.T) {
	hook := logTest.NewGlobal()
	logrus.SetLevel(logrus.DebugLevel)
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	p.Advance(200)
	start := p.startingSlot
	p.Advance(100)
	assert.Equal(t, start, p.startingSlot, "regressing clock must not move the window")
	require.LogsContain(t, hook, "Clock appears to have moved backwards")
}

func TestPool_AdvanceBeforeRingFills(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	p.Advance(3)
	assert.Equal(t, types.Slot(0), p.startingSlot, "window does not move until genesis fills the ring")
	_, ok := p.candidateIndex(0)
	assert.Equal(t, true, ok)
}

func TestPool_ForkChoiceFailureIsSwallowed(t *testing.T) {
	hook := logTest.NewGlobal()
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	fc.onAttErr = errTestForkChoice
	p := testPool(dag, fc, q)

	att, sig := testAtt(testData(1, 0), 8, 3)
	p.SaveAttestation(context.Background(), att, nil, sig, 1)

	require.LogsContain(t, hook, "Fork choice rejected attestation")
	// The vote is still in the pool despite the fork choice failure.
	e := p.phase0Ring[1][mustVoteRoot(t, att.Data)]
	require.NotNil(t, e)
}

func TestPool_SaveAttestationElectraRequiresSingleCommittee(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	att, sig := testAttElectra(testData(1, 0), 2, 8, 3)
	att.CommitteeBits.SetBitAt(5, true)
	p.SaveAttestationElectra(context.Background(), att, nil, sig, 1)
	assert.Equal(t, 0, len(fc.votes), "multi-committee gossip attestation must be dropped")
}

func TestPool_SaveAttestationElectraKeysByCommittee(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	// Same data, two different committees: distinct votes, distinct entries.
	att1, sig1 := testAttElectra(testData(1, 0), 0, 8, 3)
	att2, sig2 := testAttElectra(testData(1, 0), 2, 8, 3)
	p.SaveAttestationElectra(context.Background(), att1, nil, sig1, 1)
	p.SaveAttestationElectra(context.Background(), att2, nil, sig2, 1)

	assert.Equal(t, 2, len(p.electraRing[1]))
	assert.Equal(t, 2, len(fc.votes))
}

func TestPool_NextAttestationEpochs(t *testing.T) {
	dag, fc, q := newMockDAG(), &mockForkChoice{}, &mockQuarantine{}
	p := testPool(dag, fc, q)

	assert.Equal(t, NextAttestationEpochs{}, p.NextAttestationEpochs(42))

	p.SetNextSubnetEpoch(42, 7)
	p.SetNextAggregateEpoch(42, 8)
	next := p.NextAttestationEpochs(42)
	assert.Equal(t, types.Epoch(7), next.Subnet)
	assert.Equal(t, types.Epoch(8), next.Aggregate)
}

func mustVoteRoot(t *testing.T, data *eth.AttestationData) [32]byte {
	root, err := eth.VoteRoot(data)
	require.NoError(t, err)
	return root
}
