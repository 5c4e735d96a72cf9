package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/calehh/grantgov/state"
	gov_types "github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func (app *GovApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type AccountQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var a *state.Account
	var height uint64
	if len(req.Data) == 20 {
		a, height, _ = q.db.GetAccountByAddress(req.Data)
	} else if len(req.Data) <= 8 {
		var idx uint64
		for _, v := range req.Data {
			idx <<= 8
			idx |= uint64(v)
		}
		a, height, _ = q.db.GetAccountByIndex(idx)
	}
	if a != nil {
		res.Value, _ = json.Marshal(a)
		res.Height = int64(height)
	} else {
		res.Code = 1
	}
	return
}

// ProposalInfo is the query view of a proposal: the stored record plus the
// phase and countdowns computed at the last committed block time.
type ProposalInfo struct {
	Proposal        *gov_types.Proposal `json:"proposal"`
	Phase           string              `json:"phase"`
	ReviewRemaining uint64              `json:"review_remaining"`
	VoteRemaining   uint64              `json:"vote_remaining"`
}

type ProposalQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewProposalQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ProposalQuerier) {
	q = &ProposalQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ProposalQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	if len(req.Data) == 0 {
		count, height := q.db.ProposalCount()
		res.Value, _ = json.Marshal(count)
		res.Height = int64(height)
		return
	}
	if len(req.Data) > 8 {
		res.Code = 1
		return
	}
	var idx uint64
	for _, v := range req.Data {
		idx <<= 8
		idx |= uint64(v)
	}
	proposal, height, err := q.db.GetProposal(idx)
	if err != nil {
		res.Code = 1
		res.Log = err.Error()
		err = nil
		return
	}
	now := q.db.Header().Time
	info := ProposalInfo{
		Proposal:        proposal,
		Phase:           proposal.PhaseAt(now).String(),
		ReviewRemaining: proposal.ReviewRemaining(now),
		VoteRemaining:   proposal.VoteRemaining(now),
	}
	res.Value, _ = json.Marshal(info)
	res.Height = int64(height)
	return
}

// GovInfo is the query view of the governance configuration and treasury.
type GovInfo struct {
	Quorum         uint64 `json:"quorum"`
	ReviewPeriod   uint64 `json:"review_period"`
	VotingPeriod   uint64 `json:"voting_period"`
	GrantAmount    uint64 `json:"grant_amount"`
	AvailableFunds uint64 `json:"available_funds"`
	VoteStake      uint64 `json:"vote_stake"`
	StakeDenom     string `json:"stake_denom"`
	StakePool      uint64 `json:"stake_pool"`
	Time           uint64 `json:"time"`
}

type GovQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewGovQuerier(db *state.StateDB, logger cmtlog.Logger) (q *GovQuerier) {
	q = &GovQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *GovQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	header := q.db.Header()
	info := GovInfo{
		Quorum:         header.Quorum,
		ReviewPeriod:   header.ReviewPeriod,
		VotingPeriod:   header.VotingPeriod,
		GrantAmount:    header.GrantAmount,
		AvailableFunds: header.AvailableFunds,
		VoteStake:      header.VoteStake,
		StakeDenom:     header.StakeDenom,
		StakePool:      header.StakePool,
		Time:           header.Time,
	}
	res.Value, _ = json.Marshal(info)
	res.Height = int64(header.Height)
	return
}

type MemberQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewMemberQuerier(db *state.StateDB, logger cmtlog.Logger) (q *MemberQuerier) {
	q = &MemberQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *MemberQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	members, height, err := q.db.State().Members()
	if err != nil {
		res.Code = 1
		return
	}
	res.Height = int64(height)
	res.Value, _ = json.Marshal(members)
	return
}
