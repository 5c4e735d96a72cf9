package indexer

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type Member struct {
	Id      uint64 `gorm:"primaryKey" json:"id"`
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Name    string `json:"name"`
}

type Proposal struct {
	Id               uint64 `gorm:"primaryKey" json:"id"`
	Kind             uint64 `json:"kind"`
	SubmitterIndex   uint64 `json:"submitter_index"`
	SubmitterAddress string `json:"submitter_address"`
	SubmitterName    string `json:"submitter_name"`
	Recipient        string `json:"recipient"`
	Amount           uint64 `json:"amount"`
	VoteBegins       uint64 `json:"vote_begins"`
	VoteEnds         uint64 `json:"vote_ends"`
	VotesFor         uint64 `json:"votes_for"`
	VotesAgainst     uint64 `json:"votes_against"`
	Phase            string `json:"phase"`
	SubmitHeight     uint64 `json:"submit_height"`
	ExecuteHeight    uint64 `json:"execute_height"`
	PayoutFailed     bool   `json:"payout_failed"`
}

type Vote struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	VoterAddress string `json:"voter_address"`
	Support      bool   `json:"support"`
	Stake        uint64 `json:"stake"`
	Height       uint64 `json:"height"`
}

type Deposit struct {
	Id          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberIndex uint64 `json:"member_index"`
	Address     string `json:"address"`
	Amount      uint64 `json:"amount"`
	Balance     uint64 `json:"balance"`
	Height      uint64 `json:"height"`
}
