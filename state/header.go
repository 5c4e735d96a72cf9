package state

import "encoding/json"

// StateHeader carries the chain position and the whole scalar governance
// configuration. It is the single source of truth for quorum, periods,
// grant size and treasury funds; Time is the last committed block time and
// serves as the injected current time for every phase computation.
type StateHeader struct {
	ChainId    string `json:"chain_id"`
	Height     uint64 `json:"height"`
	Time       uint64 `json:"time"`
	Hash       []byte `json:"hash"`
	RootHash   []byte `json:"root_hash"`
	AccountIdx uint64 `json:"account_idx"`

	Quorum         uint64 `json:"quorum"`
	ReviewPeriod   uint64 `json:"review_period"`
	VotingPeriod   uint64 `json:"voting_period"`
	GrantAmount    uint64 `json:"grant_amount"`
	AvailableFunds uint64 `json:"available_funds"`
	VoteStake      uint64 `json:"vote_stake"`
	StakeDenom     string `json:"stake_denom"`
	StakePool      uint64 `json:"stake_pool"`
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	if h.Hash != nil {
		n.Hash = make([]byte, len(h.Hash))
		copy(n.Hash, h.Hash)
	}
	if h.RootHash != nil {
		n.RootHash = make([]byte, len(h.RootHash))
		copy(n.RootHash, h.RootHash)
	}
	return &n
}

func (h *StateHeader) Marshal() ([]byte, error) {
	return json.Marshal(h)
}

func (h *StateHeader) Unmarshal(dat []byte) error {
	return json.Unmarshal(dat, h)
}
