package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
)

const GovModuleName = "gov"
const DefaultPower = 1000

const (
	FlagOverwrite = "overwrite"
	FlagChainID   = "chain-id"
	FlagHome      = "home"
	FlagNodeOnly  = "node-only"
)

const (
	DefaultQuorum         = 3
	DefaultReviewPeriod   = 600
	DefaultVotingPeriod   = 3600
	DefaultGrantAmount    = 1000000000
	DefaultAvailableFunds = 10000000000
	DefaultStakeDenom     = "ugov"
)

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisMember seeds a non-validator member account with a balance it can
// stake on votes.
type GenesisMember struct {
	PubKey  []byte `json:"pub_key"`
	Balance uint64 `json:"balance"`
	Name    string `json:"name"`
}

// GovGenesis is the application part of the genesis document: the scalar
// governance configuration plus the initial member set.
type GovGenesis struct {
	Quorum         uint64          `json:"quorum"`
	ReviewPeriod   uint64          `json:"review_period"`
	VotingPeriod   uint64          `json:"voting_period"`
	GrantAmount    uint64          `json:"grant_amount"`
	AvailableFunds uint64          `json:"available_funds"`
	VoteStake      uint64          `json:"vote_stake"`
	StakeDenom     string          `json:"stake_denom"`
	Members        []GenesisMember `json:"members"`
}

func DefaultGovGenesis() *GovGenesis {
	return &GovGenesis{
		Quorum:         DefaultQuorum,
		ReviewPeriod:   DefaultReviewPeriod,
		VotingPeriod:   DefaultVotingPeriod,
		GrantAmount:    DefaultGrantAmount,
		AvailableFunds: DefaultAvailableFunds,
		VoteStake:      0,
		StakeDenom:     DefaultStakeDenom,
	}
}

func (g *GovGenesis) Validate() error {
	if g.VotingPeriod == 0 {
		return errors.New("voting period must be positive")
	}
	if g.GrantAmount == 0 {
		return errors.New("grant amount must be positive")
	}
	return nil
}

// GenesisDoc defines the initial conditions for the chain, in particular its
// validator set and the governance configuration.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// SaveAs is a utility method for saving GenensisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (ag *GenesisDoc) ValidateAndComplete() error {
	if ag.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}

	if ag.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", ag.InitialHeight)
	}

	if ag.InitialHeight == 0 {
		ag.InitialHeight = 1
	}

	if ag.GenesisTime.IsZero() {
		ag.GenesisTime = time.Now().Round(0).UTC()
	}

	if len(ag.AppState) == 0 {
		appState, err := json.Marshal(DefaultGovGenesis())
		if err != nil {
			return err
		}
		ag.AppState = appState
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}
