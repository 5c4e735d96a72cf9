package app

import (
	"context"
	"encoding/json"

	"github.com/calehh/grantgov/config"
	"github.com/calehh/grantgov/state"
	"github.com/calehh/grantgov/tx"
	"github.com/calehh/grantgov/tx/handler"
	gov_types "github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &GovApp{}

type GovApp struct {
	cfg    *config.AppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.GovTxType]handler.TxHandler
	queriers map[string]Querier

	st *state.State
}

func NewGovApp(cfg *config.AppConfig, logger cmtlog.Logger) (app *GovApp, err error) {
	logger = logger.With("module", "app")

	dir := cfg.Home + "/data"
	db, err := state.NewStateDB(dir, logger)
	if err != nil {
		return nil, err
	}

	app = &GovApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.GovTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *GovApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *GovApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("gov app stopped")
}

func (app *GovApp) registerTxHandler() {
	app.txHdlrs = map[tx.GovTxType]handler.TxHandler{
		tx.GovTxTypeGrantRequest: handler.NewGrantRequestTxHandler(app.logger),
		tx.GovTxTypeGrantSize:    handler.NewGrantSizeTxHandler(app.logger),
		tx.GovTxTypeVote:         handler.NewVoteTxHandler(app.logger),
		tx.GovTxTypeRemoteVote:   handler.NewRemoteVoteTxHandler(app.logger),
		tx.GovTxTypeExecute:      handler.NewExecuteTxHandler(app.logger),
		tx.GovTxTypeDeposit:      handler.NewDepositTxHandler(app.logger),
	}
}

func (app *GovApp) registerQuerier() {
	app.queriers["/accounts/"] = NewAccountQuerier(app.db, app.logger)
	app.queriers["/proposals/"] = NewProposalQuerier(app.db, app.logger)
	app.queriers["/gov/"] = NewGovQuerier(app.db, app.logger)
	app.queriers["/members/"] = NewMemberQuerier(app.db, app.logger)
}

func (app *GovApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetTime(uint64(chain.Time.Unix()))

	gen := gov_types.DefaultGovGenesis()
	if len(chain.AppStateBytes) > 0 {
		if err = json.Unmarshal(chain.AppStateBytes, gen); err != nil {
			app.logger.Error("InitChain parse app state fail", "err", err)
			return nil, err
		}
	}
	if err = gen.Validate(); err != nil {
		app.logger.Error("InitChain invalid app state", "err", err)
		return nil, err
	}
	st.InitGov(gen)

	for _, v := range chain.Validators {
		var acnt state.Account
		acnt.SetPubKey(v.PubKey.GetEd25519())
		err = st.AddAccount(&acnt)
		if err != nil {
			app.logger.Error("InitChain add validator account fail", "err", err)
			return nil, err
		}
	}
	for _, m := range gen.Members {
		var acnt state.Account
		acnt.SetPubKey(m.PubKey)
		acnt.Balance = m.Balance
		acnt.Name = m.Name
		err = st.AddAccount(&acnt)
		if err != nil {
			app.logger.Error("InitChain add member account fail", "err", err)
			return nil, err
		}
	}

	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *GovApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *GovApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *GovApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{}, nil
}

func (app *GovApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return nil, nil
}

func (app *GovApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return nil, nil
}

func (app *GovApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return nil, nil
}

func (app *GovApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return nil, nil
}
