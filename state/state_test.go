package state

import (
	"testing"

	"github.com/calehh/grantgov/tx"
	gov_types "github.com/calehh/grantgov/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	tree := iavl.NewMutableTree(dbm.NewMemDB(), 128, true, Cometbft2CosmosLogger(cmtlog.NewNopLogger()))
	_, err := tree.Load()
	require.NoError(t, err)
	st := newState(tree, cmtlog.NewNopLogger())
	require.NoError(t, st.load())
	st.SetChainId("test-chain")
	st.InitGov(&gov_types.GovGenesis{
		Quorum:         3,
		ReviewPeriod:   100,
		VotingPeriod:   100,
		GrantAmount:    1000,
		AvailableFunds: 5000,
		VoteStake:      0,
		StakeDenom:     "ugov",
	})
	return st
}

func addMember(t *testing.T, st *State, balance uint64) *Account {
	t.Helper()
	a := &Account{Balance: balance}
	a.SetPubKey(ed25519.GenPrivKey().PubKey().Bytes())
	require.NoError(t, st.AddAccount(a))
	acnt, err := st.GetAccount(a.Index)
	require.NoError(t, err)
	return acnt
}

func submitGrant(t *testing.T, st *State, submitter *Account, recipient string, now uint64) *gov_types.Proposal {
	t.Helper()
	_, err := st.SubmitGrantRequest(&tx.GrantRequestTx{Recipient: recipient}, submitter.Index, false, now)
	require.NoError(t, err)
	p, err := st.GetProposal(st.ProposalCount())
	require.NoError(t, err)
	return p
}

func TestSubmitGrantRequestEarmarks(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)

	p := submitGrant(t, st, m, m.Address(), 50)

	assert.Equal(t, uint64(4000), st.Header().AvailableFunds)
	assert.Equal(t, uint64(1000), p.Amount)
	assert.Equal(t, uint64(150), p.VoteBegins)
	assert.Equal(t, uint64(250), p.VoteEnds)
	assert.Equal(t, gov_types.PhasePending, p.PhaseAt(50))
}

func TestSubmitGrantRequestInsufficientFunds(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)
	st.header.AvailableFunds = 999

	_, err := st.SubmitGrantRequest(&tx.GrantRequestTx{Recipient: m.Address()}, m.Index, true, 0)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = st.SubmitGrantRequest(&tx.GrantRequestTx{Recipient: m.Address()}, m.Index, false, 0)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(999), st.Header().AvailableFunds)
	assert.Equal(t, uint64(0), st.ProposalCount())
}

func TestSubmitCheckOnlyLeavesNoTrace(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)

	_, err := st.SubmitGrantRequest(&tx.GrantRequestTx{Recipient: m.Address()}, m.Index, true, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)
	assert.Equal(t, uint64(0), st.ProposalCount())
}

func TestVoteOutsideWindow(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)
	p := submitGrant(t, st, m, m.Address(), 0)

	vtx := &tx.VoteTx{Proposal: p.Index, Support: true}
	_, err := st.Vote(vtx, m.Index, false, p.VoteBegins-1)
	assert.ErrorIs(t, err, ErrProposalNotActive)
	_, err = st.Vote(vtx, m.Index, false, p.VoteEnds)
	assert.ErrorIs(t, err, ErrProposalNotActive)
	// the begin instant is inside the window
	_, err = st.Vote(vtx, m.Index, false, p.VoteBegins)
	assert.NoError(t, err)
}

func TestVoteOncePerMember(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)
	p := submitGrant(t, st, m, m.Address(), 0)

	vtx := &tx.VoteTx{Proposal: p.Index, Support: true}
	_, err := st.Vote(vtx, m.Index, false, p.VoteBegins)
	require.NoError(t, err)
	_, err = st.Vote(vtx, m.Index, false, p.VoteBegins+1)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	// flipping the side does not help
	_, err = st.Vote(&tx.VoteTx{Proposal: p.Index, Support: false}, m.Index, false, p.VoteBegins+1)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	got, err := st.GetProposal(p.Index)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.VotesFor)
	assert.Equal(t, uint64(0), got.VotesAgainst)
}

func TestVoteOnMissingProposal(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)
	_, err := st.Vote(&tx.VoteTx{Proposal: 42, Support: true}, m.Index, false, 0)
	assert.ErrorIs(t, err, ErrProposalNoexists)
}

func voteN(t *testing.T, st *State, p *gov_types.Proposal, now uint64, forVotes, againstVotes int) {
	t.Helper()
	for i := 0; i < forVotes; i++ {
		m := addMember(t, st, 0)
		_, err := st.Vote(&tx.VoteTx{Proposal: p.Index, Support: true}, m.Index, false, now)
		require.NoError(t, err)
	}
	for i := 0; i < againstVotes; i++ {
		m := addMember(t, st, 0)
		_, err := st.Vote(&tx.VoteTx{Proposal: p.Index, Support: false}, m.Index, false, now)
		require.NoError(t, err)
	}
}

func TestExecuteGrantSucceeds(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	recipient := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, recipient.Address(), 0)
	voteN(t, st, p, p.VoteBegins, 2, 1)

	// still active, cannot execute yet
	_, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds-1)
	assert.ErrorIs(t, err, ErrProposalNotQueued)

	event, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseSucceeded, event.Phase)
	assert.False(t, event.PayoutFailed)

	got, err := st.GetAccount(recipient.Index)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got.Balance)
	// earmarked at submission, nothing moves out of the treasury now
	assert.Equal(t, uint64(4000), st.Header().AvailableFunds)
}

func TestExecuteExactlyOnce(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	recipient := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, recipient.Address(), 0)
	voteN(t, st, p, p.VoteBegins, 3, 0)

	_, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	_, err = st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds+100)
	assert.ErrorIs(t, err, ErrProposalNotQueued)

	got, err := st.GetAccount(recipient.Index)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got.Balance)
}

func TestExecuteDefeatedCreditsBack(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, submitter.Address(), 0)
	voteN(t, st, p, p.VoteBegins, 1, 2)

	event, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseDefeated, event.Phase)
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)
}

func TestExecuteTieIsDefeat(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, submitter.Address(), 0)
	voteN(t, st, p, p.VoteBegins, 2, 2)

	event, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseDefeated, event.Phase)
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)
}

func TestExecuteBelowQuorumExpires(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, submitter.Address(), 0)
	voteN(t, st, p, p.VoteBegins, 2, 0)

	event, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseExpired, event.Phase)
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)
}

func TestExecuteFailedPayoutCreditsBack(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, "DEADBEEF00000000000000000000000000000000", 0)
	voteN(t, st, p, p.VoteBegins, 3, 0)

	event, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseSucceeded, event.Phase)
	assert.True(t, event.PayoutFailed)
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)

	// the proposal is settled, the credit cannot replay
	_, err = st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds+1)
	assert.ErrorIs(t, err, ErrProposalNotQueued)
	got, err := st.GetProposal(p.Index)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseSucceeded, got.StoredPhase)
}

func TestGrantSizeChange(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	_, err := st.SubmitGrantSizeChange(&tx.GrantSizeTx{NewAmount: 2500}, submitter.Index, false, 0)
	require.NoError(t, err)
	// no funds reserved for sizing proposals
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)

	p, err := st.GetProposal(st.ProposalCount())
	require.NoError(t, err)
	voteN(t, st, p, p.VoteBegins, 3, 0)

	event, err := st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, gov_types.PhaseSucceeded, event.Phase)
	assert.Equal(t, uint64(2500), st.Header().GrantAmount)
	assert.Equal(t, uint64(5000), st.Header().AvailableFunds)
}

func TestGrantSizeChangeDefeatedKeepsAmount(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	_, err := st.SubmitGrantSizeChange(&tx.GrantSizeTx{NewAmount: 2500}, submitter.Index, false, 0)
	require.NoError(t, err)
	p, err := st.GetProposal(st.ProposalCount())
	require.NoError(t, err)
	voteN(t, st, p, p.VoteBegins, 1, 2)

	_, err = st.Execute(&tx.ExecuteTx{Proposal: p.Index}, submitter.Index, false, p.VoteEnds)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), st.Header().GrantAmount)
}

func TestGrantSizeZeroRejected(t *testing.T) {
	st := newTestState(t)
	submitter := addMember(t, st, 0)
	_, err := st.SubmitGrantSizeChange(&tx.GrantSizeTx{NewAmount: 0}, submitter.Index, true, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVoteStakePolicy(t *testing.T) {
	st := newTestState(t)
	st.header.VoteStake = 10
	submitter := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, submitter.Address(), 0)

	poor := addMember(t, st, 5)
	_, err := st.Vote(&tx.VoteTx{Proposal: p.Index, Support: true}, poor.Index, false, p.VoteBegins)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	rich := addMember(t, st, 50)
	event, err := st.Vote(&tx.VoteTx{Proposal: p.Index, Support: true}, rich.Index, false, p.VoteBegins)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), event.Stake)

	got, err := st.GetAccount(rich.Index)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), got.Balance)
	assert.Equal(t, uint64(10), st.Header().StakePool)
}

func TestRemoteVote(t *testing.T) {
	st := newTestState(t)
	st.header.VoteStake = 10
	submitter := addMember(t, st, 0)
	relayer := addMember(t, st, 0)
	p := submitGrant(t, st, submitter, submitter.Address(), 0)

	rtx := &tx.RemoteVoteTx{Proposal: p.Index, Support: true, Denom: "uatom", Amount: 10, Origin: "remote-sender-1", OriginDomain: "hub"}
	_, err := st.RemoteVote(rtx, relayer.Index, false, p.VoteBegins)
	assert.ErrorIs(t, err, ErrWrongAsset)

	rtx.Denom = "ugov"
	rtx.Amount = 9
	_, err = st.RemoteVote(rtx, relayer.Index, false, p.VoteBegins)
	assert.ErrorIs(t, err, ErrBelowMinimumStake)

	rtx.Amount = 10
	event, err := st.RemoteVote(rtx, relayer.Index, false, p.VoteBegins)
	require.NoError(t, err)
	assert.Equal(t, "remote-sender-1", event.Voter)
	assert.Equal(t, uint64(1), event.VotesFor)
	assert.Equal(t, uint64(10), st.Header().StakePool)

	// the origin sender, not the relayer, is held to vote-once
	_, err = st.RemoteVote(rtx, relayer.Index, false, p.VoteBegins+1)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	_, err = st.Vote(&tx.VoteTx{Proposal: p.Index, Support: true}, relayer.Index, false, p.VoteBegins+1)
	assert.NoError(t, err)
}

func TestDeposit(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)

	_, err := st.Deposit(&tx.DepositTx{Amount: 0}, m.Index, false)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	event, err := st.Deposit(&tx.DepositTx{Amount: 77}, m.Index, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), event.Balance)

	got, err := st.GetAccount(m.Index)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), got.Balance)
}

func TestProposalPersistence(t *testing.T) {
	st := newTestState(t)
	m := addMember(t, st, 0)
	p := submitGrant(t, st, m, m.Address(), 0)
	_, err := st.Vote(&tx.VoteTx{Proposal: p.Index, Support: true}, m.Index, false, p.VoteBegins)
	require.NoError(t, err)

	_, err = st.Update()
	require.NoError(t, err)
	_, err = st.save()
	require.NoError(t, err)

	next := st.nextState()
	got, err := next.GetProposal(p.Index)
	require.NoError(t, err)
	assert.Equal(t, p.Index, got.Index)
	assert.Equal(t, uint64(1), got.VotesFor)
	assert.Equal(t, uint64(4000), next.Header().AvailableFunds)

	voted, err := next.hasVoted(p.Index, m.Address())
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestSetTimeMonotonic(t *testing.T) {
	st := newTestState(t)
	st.SetTime(100)
	st.SetTime(50)
	assert.Equal(t, uint64(100), st.Now())
}
