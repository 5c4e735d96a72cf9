package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/calehh/grantgov/state"
	gov_types "github.com/calehh/grantgov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *state.StateDB {
	t.Helper()
	db, err := state.NewStateDB(t.TempDir(), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := db.NewState()
	st.SetChainId("test-chain")
	st.InitGov(&gov_types.GovGenesis{
		Quorum:         3,
		ReviewPeriod:   100,
		VotingPeriod:   100,
		GrantAmount:    1000,
		AvailableFunds: 5000,
		StakeDenom:     "ugov",
	})
	st.SetTime(12345)
	_, err = st.Update()
	require.NoError(t, err)
	_, err = db.SetState(st)
	require.NoError(t, err)
	return db
}

func TestGovQuerierSnapshot(t *testing.T) {
	db := newTestDB(t)
	q := NewGovQuerier(db, cmtlog.NewNopLogger())

	res, err := q.Query(context.Background(), &abcitypes.RequestQuery{Path: "/gov/"})
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.Code)

	var info GovInfo
	require.NoError(t, json.Unmarshal(res.Value, &info))
	assert.Equal(t, uint64(3), info.Quorum)
	assert.Equal(t, uint64(100), info.ReviewPeriod)
	assert.Equal(t, uint64(1000), info.GrantAmount)
	assert.Equal(t, uint64(5000), info.AvailableFunds)
	assert.Equal(t, "ugov", info.StakeDenom)
	assert.Equal(t, uint64(12345), info.Time)
}
