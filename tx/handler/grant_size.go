package handler

import (
	"context"

	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	"github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type GrantSizeTxHandler struct {
	logger cmtlog.Logger
}

func NewGrantSizeTxHandler(logger cmtlog.Logger) (h *GrantSizeTxHandler) {
	logger = logger.With("module", "grantSizeTx")
	h = &GrantSizeTxHandler{
		logger: logger,
	}
	return
}

func (h *GrantSizeTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.GrantSizeTx)
	_, err1 := st.SubmitGrantSizeChange(stx, btx.Validator, true, st.Now())
	if err1 != nil {
		h.logger.Info("CheckTx grant size fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *GrantSizeTxHandler) NewContext(ctx context.Context) {}

func (h *GrantSizeTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.GrantSizeTx)
	event, err := st.SubmitGrantSizeChange(wtx, btx.Validator, false, st.Now())
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventSubmit(event)}
	}
	return
}

func (h *GrantSizeTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *GrantSizeTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
