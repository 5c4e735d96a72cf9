package handler

import (
	"context"
	"testing"

	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	gov_types "github.com/calehh/grantgov/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedProposal(t *testing.T) (*state.State, uint64, uint64) {
	t.Helper()
	db, err := state.NewStateDB(t.TempDir(), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := db.NewState()
	st.SetChainId("test-chain")
	st.InitGov(&gov_types.GovGenesis{
		Quorum:         1,
		ReviewPeriod:   100,
		VotingPeriod:   100,
		GrantAmount:    1000,
		AvailableFunds: 5000,
		StakeDenom:     "ugov",
	})
	a := &state.Account{}
	a.SetPubKey(ed25519.GenPrivKey().PubKey().Bytes())
	require.NoError(t, st.AddAccount(a))

	_, err = st.SubmitGrantRequest(&tx.GrantRequestTx{Recipient: a.Address()}, a.Index, false, 0)
	require.NoError(t, err)
	proposal := st.ProposalCount()
	_, err = st.Vote(&tx.VoteTx{Proposal: proposal, Support: true}, a.Index, false, 100)
	require.NoError(t, err)
	st.SetTime(200)
	return st, proposal, a.Index
}

func TestExecuteHandlerOncePerBlock(t *testing.T) {
	st, proposal, caller := queuedProposal(t)
	h := NewExecuteTxHandler(cmtlog.NewNopLogger())
	ctx := context.Background()
	h.NewContext(ctx)

	btx := &tx.GovTx{
		Version:   tx.GovTxVersion1,
		Type:      tx.GovTxTypeExecute,
		Validator: caller,
		Tx:        &tx.ExecuteTx{Proposal: proposal},
	}
	res, err := h.Process(ctx, st, btx)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	event := gov_types.DecodeEventExecute(res.Events[0])
	require.NotNil(t, event)
	assert.Equal(t, gov_types.PhaseSucceeded, event.Phase)

	_, err = h.Process(ctx, st, btx)
	assert.Error(t, err)

	// a fresh block context still sees the stored terminal phase
	h.NewContext(ctx)
	_, err = h.Process(ctx, st, btx)
	assert.ErrorIs(t, err, state.ErrProposalNotQueued)
}

func TestExecuteHandlerCheckRejectsActive(t *testing.T) {
	st, proposal, caller := queuedProposal(t)
	h := NewExecuteTxHandler(cmtlog.NewNopLogger())

	// rewind below the close instant is impossible, so build a later window
	_, err := st.SubmitGrantRequest(&tx.GrantRequestTx{Recipient: "00"}, caller, false, st.Now())
	require.NoError(t, err)
	active := st.ProposalCount()
	require.NotEqual(t, proposal, active)

	btx := &tx.GovTx{
		Version:   tx.GovTxVersion1,
		Type:      tx.GovTxTypeExecute,
		Validator: caller,
		Tx:        &tx.ExecuteTx{Proposal: active},
	}
	res, err := h.Check(context.Background(), st, btx)
	require.NoError(t, err)
	assert.NotEqual(t, uint32(0), res.Code)
}
