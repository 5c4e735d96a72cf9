package handler

import (
	"context"

	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error)
}
