package indexer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	app_config "github.com/calehh/grantgov/config"
	"github.com/calehh/grantgov/state"
	gov_types "github.com/calehh/grantgov/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/cometbft/cometbft/store"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// chainClient is the slice of the cometbft RPC surface the indexer polls.
type chainClient interface {
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error)
	ABCIQuery(ctx context.Context, path string, data cmtbytes.HexBytes) (*coretypes.ResultABCIQuery, error)
	IsRunning() bool
	Stop() error
}

type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           chainClient
	eventHandlers map[string]eventHandler
	BlockStore    *store.BlockStore
	appConfig     *app_config.Config
	ChainId       string
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string, bs *store.BlockStore, appConfig *app_config.Config) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &Member{}, &Proposal{}, &Vote{}, &Deposit{}).Error; err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		logger.Error("get genesis fail", "err", err)
		return nil, err
	}
	chainId := gres.Genesis.ChainID

	c := ChainIndexer{
		logger:        logger.With("module", "indexer"),
		Url:           chainUrl,
		Height:        int64(h.Height + 1),
		db:            db,
		cli:           cli,
		eventHandlers: map[string]eventHandler{},
		BlockStore:    bs,
		appConfig:     appConfig,
		ChainId:       chainId,
	}

	c.eventHandlers = map[string]eventHandler{
		gov_types.EventSubmitType:  c.handleEventSubmit,
		gov_types.EventVoteType:    c.handleEventVote,
		gov_types.EventExecuteType: c.handleEventExecute,
		gov_types.EventDepositType: c.handleEventDeposit,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event, height)
	}
}

func (c *ChainIndexer) handleEventSubmit(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventSubmit(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	proposal := Proposal{
		Id:               ev.Proposal,
		Kind:             uint64(ev.Kind),
		SubmitterIndex:   ev.Submitter,
		SubmitterAddress: ev.SubmitterAddress,
		Recipient:        ev.Recipient,
		Amount:           ev.Amount,
		VoteBegins:       ev.VoteBegins,
		VoteEnds:         ev.VoteEnds,
		Phase:            gov_types.PhasePending.String(),
		SubmitHeight:     uint64(height),
	}
	submitter, err := c.getMemberByAddress(ev.SubmitterAddress)
	if err == nil && submitter != nil {
		proposal.SubmitterName = submitter.Name
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventVote(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventVote(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := Vote{
		Proposal:     ev.Proposal,
		VoterAddress: ev.Voter,
		Support:      ev.Support,
		Stake:        ev.Stake,
		Height:       uint64(height),
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.VotesFor = ev.VotesFor
	proposal.VotesAgainst = ev.VotesAgainst
	proposal.Phase = gov_types.PhaseActive.String()
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventExecute(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventExecute(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Phase = ev.Phase.String()
	proposal.ExecuteHeight = uint64(height)
	proposal.PayoutFailed = ev.PayoutFailed
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventDeposit(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventDeposit(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	deposit := Deposit{
		MemberIndex: ev.Member,
		Address:     ev.Address,
		Amount:      ev.Amount,
		Balance:     ev.Balance,
		Height:      uint64(height),
	}
	if err := c.db.Create(&deposit).Error; err != nil {
		c.logger.Error("save deposit fail", "err", err)
	}
	member := Member{
		Id:      ev.Member,
		Address: ev.Address,
		Balance: ev.Balance,
	}
	if old, err := c.getMemberByAddress(ev.Address); err == nil && old != nil {
		member.Name = old.Name
	}
	if err := c.db.Save(&member).Error; err != nil {
		c.logger.Error("save member fail", "err", err)
	}
}

func (c *ChainIndexer) syncMembers(ctx context.Context) error {
	res, err := c.cli.ABCIQuery(ctx, "/members/", nil)
	if err != nil {
		return err
	}
	if res.Response.Code != 0 {
		return fmt.Errorf("members query code %v", res.Response.Code)
	}
	var accounts []*state.Account
	if err := json.Unmarshal(res.Response.Value, &accounts); err != nil {
		return err
	}
	for _, a := range accounts {
		member := Member{
			Id:      a.Index,
			Address: a.Address(),
			Balance: a.Balance,
			Name:    a.Name,
		}
		if err := c.db.Save(&member).Error; err != nil {
			return err
		}
	}
	return nil
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	time.Sleep(10 * time.Second)
	if err := c.syncMembers(ctx); err != nil {
		c.logger.Error("sync members fail", "err", err)
	}

	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

// poll drains any blocks the chain has produced beyond the indexed height.
// Every RPC failure abandons the tick; the next tick retries from the same
// height, so nothing after a failed call may touch its result.
func (c *ChainIndexer) poll(ctx context.Context) {
	var err error
	if c.cli == nil {
		c.cli, err = comethttp.New(c.Url, "/websocket")
		if err != nil {
			c.logger.Error("connect fail", "err", err)
			return
		}
	}
	b, err := c.cli.Status(context.TODO())
	if err != nil {
		c.logger.Error("get status fail", "err", err)
		c.reconnect()
		return
	}
	for b.SyncInfo.LatestBlockHeight > c.Height {
		time.Sleep(time.Millisecond * 100)
		c.logger.Info("indexer syncing", "height", c.Height)
		events, err := c.cli.BlockResults(ctx, &c.Height)
		if err != nil {
			c.logger.Error("get block results fail", "err", err)
			c.reconnect()
			return
		}
		for _, res := range events.TxsResults {
			for _, event := range res.Events {
				c.handleEvent(ctx, event, c.Height)
			}
		}
		if err := c.db.Save(Height{
			Id:     1,
			Height: uint64(c.Height),
		}).Error; err != nil {
			c.logger.Error("save height fail", "err", err)
			return
		}
		c.refreshPhases()
		c.Height++
	}
}

func (c *ChainIndexer) reconnect() {
	if c.cli.IsRunning() {
		return
	}
	c.cli.Stop()
	cli, err := comethttp.New(c.Url, "/websocket")
	if err != nil {
		c.logger.Error("reconnect fail", "err", err)
		return
	}
	c.cli = cli
}

// refreshPhases recomputes the phase of non-terminal proposals against the
// latest block time so the read API does not serve stale Pending/Active rows.
func (c *ChainIndexer) refreshPhases() {
	now := uint64(time.Now().Unix())
	var proposals []Proposal
	if err := c.db.Where("phase = ? OR phase = ? OR phase = ?",
		gov_types.PhasePending.String(), gov_types.PhaseActive.String(), gov_types.PhaseQueued.String()).
		Find(&proposals).Error; err != nil {
		return
	}
	for _, p := range proposals {
		live := gov_types.Proposal{VoteBegins: p.VoteBegins, VoteEnds: p.VoteEnds}
		phase := live.PhaseAt(now).String()
		if phase != p.Phase {
			p.Phase = phase
			if err := c.db.Save(&p).Error; err != nil {
				c.logger.Error("save proposal fail", "err", err)
			}
		}
	}
}

func (c *ChainIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalById(proposalId uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("id = ?", proposalId).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getProposalsBySubmitterAddr(submitterAddr string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("submitter_address = ?", submitterAddr).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("submitter_address = ?", submitterAddr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalsByPhase(phase string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("phase = ?", phase).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("phase = ?", phase).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("voter_address = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("voter_address = ?", voter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getDepositsByAddress(address string, page int, pageSize int) ([]Deposit, uint64, error) {
	var deposits []Deposit
	err := c.db.Where("address = ?", address).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&deposits).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Deposit{}).Where("address = ?", address).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return deposits, total, nil
}

func (c *ChainIndexer) getMembers() ([]Member, error) {
	var members []Member
	err := c.db.Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (c *ChainIndexer) getMemberByAddress(address string) (*Member, error) {
	var member Member
	err := c.db.Where("address = ?", address).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func QueryAccount(cli *comethttp.HTTP, index uint64, address string) (*state.Account, error) {
	ctx := context.Background()
	var dat []byte
	var err error
	if len(address) > 0 {
		dat, err = hex.DecodeString(address)
		if err != nil {
			fmt.Printf("invalid address:%v\n", address)
			return nil, err
		}
	} else {
		s := fmt.Sprintf("0%x", index)
		if len(s)&1 == 1 {
			s = s[1:]
		}
		dat, _ = hex.DecodeString(s)
	}
	res, err := cli.ABCIQuery(ctx, "/accounts/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, errors.New("account not found")
	}
	var act state.Account
	err = act.Unmarshal(res.Response.Value)
	if err != nil {
		return nil, err
	}
	return &act, err
}
