package handler

import (
	"context"

	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	"github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type GrantRequestTxHandler struct {
	logger cmtlog.Logger
}

func NewGrantRequestTxHandler(logger cmtlog.Logger) (h *GrantRequestTxHandler) {
	logger = logger.With("module", "grantRequestTx")
	h = &GrantRequestTxHandler{
		logger: logger,
	}
	return
}

func (h *GrantRequestTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.GrantRequestTx)
	_, err1 := st.SubmitGrantRequest(stx, btx.Validator, true, st.Now())
	if err1 != nil {
		h.logger.Info("CheckTx grant request fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *GrantRequestTxHandler) NewContext(ctx context.Context) {}

func (h *GrantRequestTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.GrantRequestTx)
	event, err := st.SubmitGrantRequest(wtx, btx.Validator, false, st.Now())
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventSubmit(event)}
	}
	return
}

func (h *GrantRequestTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *GrantRequestTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
