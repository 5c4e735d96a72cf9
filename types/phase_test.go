package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	// below quorum the vote split is irrelevant
	assert.Equal(t, PhaseExpired, Tally(2, 0, 3))
	assert.Equal(t, PhaseExpired, Tally(0, 2, 3))
	assert.Equal(t, PhaseExpired, Tally(0, 0, 3))

	// quorum met: strict majority decides
	assert.Equal(t, PhaseSucceeded, Tally(2, 1, 3))
	assert.Equal(t, PhaseSucceeded, Tally(3, 0, 3))
	assert.Equal(t, PhaseDefeated, Tally(1, 2, 3))

	// tie is a defeat, not a success
	assert.Equal(t, PhaseDefeated, Tally(2, 2, 3))

	// zero quorum still requires a majority
	assert.Equal(t, PhaseDefeated, Tally(0, 0, 0))
	assert.Equal(t, PhaseSucceeded, Tally(1, 0, 0))
}

func TestPhaseAtBoundaries(t *testing.T) {
	p := &Proposal{VoteBegins: 100, VoteEnds: 200}

	assert.Equal(t, PhasePending, p.PhaseAt(0))
	assert.Equal(t, PhasePending, p.PhaseAt(99))
	// window opens on the boundary
	assert.Equal(t, PhaseActive, p.PhaseAt(100))
	assert.Equal(t, PhaseActive, p.PhaseAt(199))
	// and closes on the boundary
	assert.Equal(t, PhaseQueued, p.PhaseAt(200))
	assert.Equal(t, PhaseQueued, p.PhaseAt(10000))
}

func TestPhaseAtStoredPhaseWins(t *testing.T) {
	p := &Proposal{VoteBegins: 100, VoteEnds: 200, StoredPhase: PhaseSucceeded}
	// once a terminal phase is stored the clock no longer matters
	assert.Equal(t, PhaseSucceeded, p.PhaseAt(0))
	assert.Equal(t, PhaseSucceeded, p.PhaseAt(150))
	assert.Equal(t, PhaseSucceeded, p.PhaseAt(10000))
}

func TestPhaseTerminal(t *testing.T) {
	assert.False(t, PhasePending.Terminal())
	assert.False(t, PhaseActive.Terminal())
	assert.False(t, PhaseQueued.Terminal())
	assert.True(t, PhaseSucceeded.Terminal())
	assert.True(t, PhaseDefeated.Terminal())
	assert.True(t, PhaseExpired.Terminal())
}

func TestRemaining(t *testing.T) {
	p := &Proposal{VoteBegins: 100, VoteEnds: 200}
	assert.Equal(t, uint64(40), p.ReviewRemaining(60))
	assert.Equal(t, uint64(0), p.ReviewRemaining(100))
	assert.Equal(t, uint64(50), p.VoteRemaining(150))
	assert.Equal(t, uint64(0), p.VoteRemaining(200))
	assert.Equal(t, uint64(0), p.VoteRemaining(300))
}
