package types

type Phase uint64

const (
	PhaseUnassigned Phase = 0
	PhasePending    Phase = 1
	PhaseActive     Phase = 2
	PhaseQueued     Phase = 3
	PhaseSucceeded  Phase = 4
	PhaseDefeated   Phase = 5
	PhaseExpired    Phase = 6
)

func (p Phase) String() string {
	switch p {
	case PhaseUnassigned:
		return "unassigned"
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseQueued:
		return "queued"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseDefeated:
		return "defeated"
	case PhaseExpired:
		return "expired"
	}
	return "unknown"
}

// Terminal reports whether p is one of the phases execution freezes into.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseDefeated || p == PhaseExpired
}

// Tally computes the outcome of a closed vote. Quorum counts both sides;
// a tie fails.
func Tally(votesFor, votesAgainst, quorum uint64) Phase {
	if votesFor+votesAgainst < quorum {
		return PhaseExpired
	}
	if votesFor > votesAgainst {
		return PhaseSucceeded
	}
	return PhaseDefeated
}
