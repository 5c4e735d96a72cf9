package indexer

import (
	"context"
	"errors"
	"testing"

	gov_types "github.com/calehh/grantgov/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	status     *coretypes.ResultStatus
	statusErr  error
	results    map[int64]*coretypes.ResultBlockResults
	resultsErr error
	running    bool
	stopped    bool
}

func (s *stubClient) Status(ctx context.Context) (*coretypes.ResultStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.status, nil
}

func (s *stubClient) BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error) {
	if s.resultsErr != nil {
		return nil, s.resultsErr
	}
	return s.results[*height], nil
}

func (s *stubClient) ABCIQuery(ctx context.Context, path string, data cmtbytes.HexBytes) (*coretypes.ResultABCIQuery, error) {
	return nil, errors.New("not implemented")
}

func (s *stubClient) IsRunning() bool { return s.running }

func (s *stubClient) Stop() error {
	s.stopped = true
	return nil
}

func newTestIndexer(t *testing.T, cli chainClient) *ChainIndexer {
	t.Helper()
	db, err := gorm.Open("sqlite3", t.TempDir()+"/index.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.AutoMigrate(&Height{}, &Member{}, &Proposal{}, &Vote{}, &Deposit{}).Error)
	c := &ChainIndexer{
		logger: cmtlog.NewNopLogger(),
		Height: 1,
		db:     db,
		cli:    cli,
	}
	c.eventHandlers = map[string]eventHandler{
		gov_types.EventSubmitType:  c.handleEventSubmit,
		gov_types.EventVoteType:    c.handleEventVote,
		gov_types.EventExecuteType: c.handleEventExecute,
		gov_types.EventDepositType: c.handleEventDeposit,
	}
	return c
}

func TestPollStatusFailureKeepsHeight(t *testing.T) {
	cli := &stubClient{statusErr: errors.New("rpc timeout"), running: true}
	c := newTestIndexer(t, cli)

	c.poll(context.Background())

	require.Equal(t, int64(1), c.Height)
	require.False(t, cli.stopped, "a running client must not be torn down on a transient failure")
}

func TestPollBlockResultsFailureKeepsHeight(t *testing.T) {
	cli := &stubClient{
		status:     &coretypes.ResultStatus{SyncInfo: coretypes.SyncInfo{LatestBlockHeight: 3}},
		resultsErr: errors.New("rpc timeout"),
		running:    true,
	}
	c := newTestIndexer(t, cli)

	c.poll(context.Background())

	require.Equal(t, int64(1), c.Height)
}

func TestPollDrainsBlocksAndIndexesEvents(t *testing.T) {
	submit := gov_types.EncodeEventSubmit(&gov_types.EventSubmit{
		Proposal:         1,
		Kind:             gov_types.KindIssueGrant,
		Submitter:        2,
		SubmitterAddress: "AABB",
		Recipient:        "CCDD",
		Amount:           1000,
		VoteBegins:       100,
		VoteEnds:         200,
	})
	cli := &stubClient{
		status: &coretypes.ResultStatus{SyncInfo: coretypes.SyncInfo{LatestBlockHeight: 2}},
		results: map[int64]*coretypes.ResultBlockResults{
			1: {TxsResults: []*abci.ExecTxResult{{Events: []abci.Event{submit}}}},
		},
		running: true,
	}
	c := newTestIndexer(t, cli)

	c.poll(context.Background())

	require.Equal(t, int64(2), c.Height)
	p, err := c.getProposalById(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), p.Amount)
	require.Equal(t, "AABB", p.SubmitterAddress)
}
