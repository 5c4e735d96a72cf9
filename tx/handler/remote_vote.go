package handler

import (
	"context"

	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	"github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// RemoteVoteTxHandler applies votes relayed from another domain. The
// envelope is signed by the relayer; the origin sender inside the payload
// is the voter.
type RemoteVoteTxHandler struct {
	logger cmtlog.Logger
}

func NewRemoteVoteTxHandler(logger cmtlog.Logger) (h *RemoteVoteTxHandler) {
	logger = logger.With("module", "remoteVoteTx")
	h = &RemoteVoteTxHandler{
		logger: logger,
	}
	return
}

func (h *RemoteVoteTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	vtx := btx.Tx.(*tx.RemoteVoteTx)
	_, err1 := st.RemoteVote(vtx, btx.Validator, true, st.Now())
	if err1 != nil {
		h.logger.Info("CheckTx remote vote fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *RemoteVoteTxHandler) NewContext(ctx context.Context) {}

func (h *RemoteVoteTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	vtx := btx.Tx.(*tx.RemoteVoteTx)
	event, err := st.RemoteVote(vtx, btx.Validator, false, st.Now())
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventVote(event)}
	}
	return
}

func (h *RemoteVoteTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *RemoteVoteTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
