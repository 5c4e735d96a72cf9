package types

type ProposalKind uint64

const (
	KindIssueGrant      ProposalKind = 1
	KindModifyGrantSize ProposalKind = 2
)

func (k ProposalKind) String() string {
	switch k {
	case KindIssueGrant:
		return "issue_grant"
	case KindModifyGrantSize:
		return "modify_grant_size"
	}
	return "unknown"
}

type Proposal struct {
	Index            uint64       `json:"index"`
	Kind             ProposalKind `json:"kind"`
	Submitter        uint64       `json:"submitter"`
	SubmitterAddress string       `json:"submitter_address"`
	Recipient        string       `json:"recipient"`
	Amount           uint64       `json:"amount"`
	VoteBegins       uint64       `json:"vote_begins"`
	VoteEnds         uint64       `json:"vote_ends"`
	VotesFor         uint64       `json:"votes_for"`
	VotesAgainst     uint64       `json:"votes_against"`
	StoredPhase      Phase        `json:"stored_phase"`
	Height           uint64       `json:"height"`
}

// PhaseAt resolves the lifecycle phase for the given time. A stored
// terminal phase is immutable and wins over the timestamps. The begin
// instant counts as begun and the end instant as ended.
func (p *Proposal) PhaseAt(now uint64) Phase {
	if p.StoredPhase != PhaseUnassigned {
		return p.StoredPhase
	}
	if now < p.VoteBegins {
		return PhasePending
	}
	if now < p.VoteEnds {
		return PhaseActive
	}
	return PhaseQueued
}

// ReviewRemaining returns seconds until voting opens, zero once open.
func (p *Proposal) ReviewRemaining(now uint64) uint64 {
	if now >= p.VoteBegins {
		return 0
	}
	return p.VoteBegins - now
}

// VoteRemaining returns seconds until voting closes, zero once closed.
func (p *Proposal) VoteRemaining(now uint64) uint64 {
	if now >= p.VoteEnds {
		return 0
	}
	return p.VoteEnds - now
}
