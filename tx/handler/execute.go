package handler

import (
	"context"

	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	"github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ExecuteTxHandler struct {
	logger cmtlog.Logger

	// executed guards against two execute txs for the same proposal
	// landing in one block; the second would tally twice otherwise.
	executed map[uint64]bool
}

func NewExecuteTxHandler(logger cmtlog.Logger) (h *ExecuteTxHandler) {
	logger = logger.With("module", "executeTx")
	h = &ExecuteTxHandler{
		logger:   logger,
		executed: make(map[uint64]bool),
	}
	return
}

func (h *ExecuteTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	etx := btx.Tx.(*tx.ExecuteTx)
	_, err1 := st.Execute(etx, btx.Validator, true, st.Now())
	if err1 != nil {
		h.logger.Info("CheckTx execute fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ExecuteTxHandler) NewContext(ctx context.Context) {
	h.executed = make(map[uint64]bool)
}

func (h *ExecuteTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	etx := btx.Tx.(*tx.ExecuteTx)
	if h.executed[etx.Proposal] {
		return nil, state.ErrProposalNotQueued
	}
	event, err := st.Execute(etx, btx.Validator, false, st.Now())
	if err != nil {
		return nil, err
	}
	h.executed[etx.Proposal] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventExecute(event)}
	}
	return
}

func (h *ExecuteTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ExecuteTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
