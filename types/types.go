package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventSubmitType  = "submit_proposal"
	EventVoteType    = "vote"
	EventExecuteType = "execute_proposal"
	EventDepositType = "deposit"
)

type EventSubmit struct {
	Proposal         uint64       `json:"proposal"`
	Kind             ProposalKind `json:"kind"`
	Submitter        uint64       `json:"submitterIndex"`
	SubmitterAddress string       `json:"submitterAddress"`
	Recipient        string       `json:"recipient"`
	Amount           uint64       `json:"amount"`
	VoteBegins       uint64       `json:"voteBegins"`
	VoteEnds         uint64       `json:"voteEnds"`
}

func EncodeEventSubmit(event *EventSubmit) abci.Event {
	return abci.Event{
		Type: EventSubmitType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "kind", Value: fmt.Sprintf("%v", uint64(event.Kind)), Index: false},
			{Key: "submitter", Value: fmt.Sprintf("%v", event.Submitter), Index: true},
			{Key: "submitterAddress", Value: event.SubmitterAddress, Index: false},
			{Key: "recipient", Value: event.Recipient, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "voteBegins", Value: fmt.Sprintf("%v", event.VoteBegins), Index: false},
			{Key: "voteEnds", Value: fmt.Sprintf("%v", event.VoteEnds), Index: false},
		},
	}
}

func DecodeEventSubmit(originEvent abci.Event) *EventSubmit {
	event := &EventSubmit{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "kind":
			kind, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Kind = ProposalKind(kind)
		case "submitter":
			submitter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Submitter = submitter
		case "submitterAddress":
			event.SubmitterAddress = v.Value
		case "recipient":
			event.Recipient = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "voteBegins":
			begins, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.VoteBegins = begins
		case "voteEnds":
			ends, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.VoteEnds = ends
		}
	}
	return event
}

type EventVote struct {
	Proposal     uint64 `json:"proposal"`
	Voter        string `json:"voterAddress"`
	Support      bool   `json:"support"`
	Stake        uint64 `json:"stake"`
	VotesFor     uint64 `json:"votesFor"`
	VotesAgainst uint64 `json:"votesAgainst"`
}

func EncodeEventVote(event *EventVote) abci.Event {
	return abci.Event{
		Type: EventVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "voter", Value: event.Voter, Index: true},
			{Key: "support", Value: fmt.Sprintf("%v", event.Support), Index: false},
			{Key: "stake", Value: fmt.Sprintf("%v", event.Stake), Index: false},
			{Key: "votesFor", Value: fmt.Sprintf("%v", event.VotesFor), Index: false},
			{Key: "votesAgainst", Value: fmt.Sprintf("%v", event.VotesAgainst), Index: false},
		},
	}
}

func DecodeEventVote(originEvent abci.Event) *EventVote {
	event := &EventVote{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "voter":
			event.Voter = v.Value
		case "support":
			support, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Support = support
		case "stake":
			stake, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Stake = stake
		case "votesFor":
			votes, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.VotesFor = votes
		case "votesAgainst":
			votes, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.VotesAgainst = votes
		}
	}
	return event
}

type EventExecute struct {
	Proposal       uint64 `json:"proposal"`
	Phase          Phase  `json:"phase"`
	PayoutFailed   bool   `json:"payoutFailed"`
	GrantAmount    uint64 `json:"grantAmount"`
	AvailableFunds uint64 `json:"availableFunds"`
}

func EncodeEventExecute(event *EventExecute) abci.Event {
	return abci.Event{
		Type: EventExecuteType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "phase", Value: fmt.Sprintf("%v", uint64(event.Phase)), Index: true},
			{Key: "payoutFailed", Value: fmt.Sprintf("%v", event.PayoutFailed), Index: false},
			{Key: "grantAmount", Value: fmt.Sprintf("%v", event.GrantAmount), Index: false},
			{Key: "availableFunds", Value: fmt.Sprintf("%v", event.AvailableFunds), Index: false},
		},
	}
}

func DecodeEventExecute(originEvent abci.Event) *EventExecute {
	event := &EventExecute{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "phase":
			phase, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Phase = Phase(phase)
		case "payoutFailed":
			failed, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.PayoutFailed = failed
		case "grantAmount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.GrantAmount = amount
		case "availableFunds":
			funds, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.AvailableFunds = funds
		}
	}
	return event
}

type EventDeposit struct {
	Member  uint64 `json:"memberIndex"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Balance uint64 `json:"balance"`
}

func EncodeEventDeposit(event *EventDeposit) abci.Event {
	return abci.Event{
		Type: EventDepositType,
		Attributes: []abci.EventAttribute{
			{Key: "member", Value: strconv.FormatUint(event.Member, 10), Index: true},
			{Key: "addr", Value: event.Address, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%d", event.Amount), Index: false},
			{Key: "balance", Value: fmt.Sprintf("%d", event.Balance), Index: false},
		},
	}
}

func DecodeEventDeposit(originEvent abci.Event) *EventDeposit {
	event := &EventDeposit{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "member":
			member, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Member = member
		case "addr":
			event.Address = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "balance":
			balance, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Balance = balance
		}
	}
	return event
}
