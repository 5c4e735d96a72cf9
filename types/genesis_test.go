package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovGenesisValidate(t *testing.T) {
	g := DefaultGovGenesis()
	assert.NoError(t, g.Validate())

	g.VotingPeriod = 0
	assert.Error(t, g.Validate())

	g = DefaultGovGenesis()
	g.GrantAmount = 0
	assert.Error(t, g.Validate())
}

func TestGenesisDocValidateAndComplete(t *testing.T) {
	doc := &GenesisDoc{}
	assert.Error(t, doc.ValidateAndComplete())

	doc.ChainID = "gov-chain-1"
	require.NoError(t, doc.ValidateAndComplete())
	assert.Equal(t, int64(1), doc.InitialHeight)
	assert.False(t, doc.GenesisTime.IsZero())

	var gen GovGenesis
	require.NoError(t, json.Unmarshal(doc.AppState, &gen))
	assert.Equal(t, uint64(DefaultQuorum), gen.Quorum)
	assert.Equal(t, DefaultStakeDenom, gen.StakeDenom)
}
