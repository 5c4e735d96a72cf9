package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/calehh/grantgov/tx"
	gov_types "github.com/calehh/grantgov/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	StartAccountIdx = 65536

	ModifiedFlagNew = 1 << 0
	ModifiedFlagMod = 1 << 1
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	KeyState         = "s"
	KeyAccountIndex  = "i%s"
	KeyAccountBody   = "a%x"
	KeyProposalBody  = "p%v"
	KeyProposalIndex = "pi"
	KeyVoteRecord    = "v%v:%s"
)

var (
	ErrTxValidatorNoexists  = errors.New("validator noexists")
	ErrTxNonceInvalid       = errors.New("nonce invalid")
	ErrTxSigInvalid         = errors.New("signature invalid")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrAccountNoexists      = errors.New("account noexists")

	ErrProposalNoexists      = errors.New("proposal noexists")
	ErrProposalNotActive     = errors.New("proposal not active")
	ErrAlreadyVoted          = errors.New("already voted")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrWrongAsset            = errors.New("wrong asset")
	ErrBelowMinimumStake     = errors.New("below minimum stake")
	ErrProposalNotQueued     = errors.New("proposal not queued")
)

type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header *StateHeader
	idxs   map[string]uint64
	acnts  map[uint64]*Account

	modifiedAcnts    map[uint64]uint32
	proposalMaxIndex uint64
	modProposals     map[uint64]*gov_types.Proposal
	newVotes         map[string]bool
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger:           logger,
		db:               db,
		dbVer:            0,
		header:           new(StateHeader),
		idxs:             make(map[string]uint64),
		acnts:            make(map[uint64]*Account),
		modifiedAcnts:    make(map[uint64]uint32),
		proposalMaxIndex: 0,
		modProposals:     make(map[uint64]*gov_types.Proposal),
		newVotes:         make(map[string]bool),
	}
	s.header.AccountIdx = StartAccountIdx
	return s
}

func (s *State) nextState() *State {
	n := &State{
		logger:           s.logger,
		db:               s.db,
		dbVer:            s.dbVer,
		idxs:             make(map[string]uint64),
		acnts:            make(map[uint64]*Account),
		modifiedAcnts:    make(map[uint64]uint32),
		proposalMaxIndex: s.proposalMaxIndex,
		modProposals:     make(map[uint64]*gov_types.Proposal),
		newVotes:         make(map[string]bool),
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}

	return n
}

func deepCopyMap[K comparable, V any](source map[K]V) map[K]V {
	res := make(map[K]V)
	for k, v := range source {
		switch x := any(v).(type) {
		case *Account:
			res[k] = any(x.Clone()).(V)
		case *gov_types.Proposal:
			p := *x
			res[k] = any(&p).(V)
		default:
			res[k] = v
		}
	}
	return res
}

func (s *State) Clone() *State {
	n := &State{
		logger:           s.logger,
		db:               s.db,
		dbVer:            s.dbVer,
		header:           s.header.Clone(),
		idxs:             deepCopyMap(s.idxs),
		acnts:            deepCopyMap(s.acnts),
		modifiedAcnts:    deepCopyMap(s.modifiedAcnts),
		proposalMaxIndex: s.proposalMaxIndex,
		modProposals:     deepCopyMap(s.modProposals),
		newVotes:         deepCopyMap(s.newVotes),
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyProposalIndex))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return err
		}
	}
	s.proposalMaxIndex = new(big.Int).SetBytes(val).Uint64()
	val, err = s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = s.header.Unmarshal(val)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

// Update writes the working changes into the tree and returns the working
// hash. Nothing is durable until save commits a version.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = s.header.Marshal()
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	if len(s.modProposals) != 0 {
		_, err = s.db.Set([]byte(KeyProposalIndex), big.NewInt(int64(s.proposalMaxIndex)).Bytes())
		if err != nil {
			return
		}
		idxs := make([]uint64, 0, len(s.modProposals))
		for idx := range s.modProposals {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			proposal := s.modProposals[idx]
			key := fmt.Sprintf(KeyProposalBody, proposal.Index)
			proposalBz, _ := json.Marshal(proposal)
			_, err = s.db.Set([]byte(key), proposalBz)
			if err != nil {
				return
			}
		}
	}

	for key, voted := range s.newVotes {
		if !voted {
			continue
		}
		_, err = s.db.Set([]byte(key), []byte{1})
		if err != nil {
			return
		}
	}

	n := len(s.modifiedAcnts)
	if n > 0 {
		idxs := make([]uint64, n)
		i := 0
		for idx := range s.modifiedAcnts {
			idxs[i] = idx
			i += 1
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			flag := s.modifiedAcnts[idx]
			acnt := s.acnts[idx]
			key := fmt.Sprintf(KeyAccountBody, acnt.Index)
			val, err = acnt.Marshal()
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(key), val)
			if err != nil {
				return
			}
			if flag&ModifiedFlagNew == ModifiedFlagNew {
				key = fmt.Sprintf(KeyAccountIndex, acnt.Address())
				val, err = rlp.EncodeToBytes(acnt.Index)
				if err != nil {
					return
				}
				_, err = s.db.Set([]byte(key), val)
				if err != nil {
					return
				}
			}
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedAcnts = make(map[uint64]uint32)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// SetTime installs the block time; it is the only clock the governance
// state machine ever sees.
func (s *State) SetTime(t uint64) {
	if t > s.header.Time {
		s.header.Time = t
	}
}

func (s *State) Now() uint64 {
	return s.header.Time
}

// InitGov installs the genesis governance configuration into the header.
func (s *State) InitGov(g *gov_types.GovGenesis) {
	s.header.Quorum = g.Quorum
	s.header.ReviewPeriod = g.ReviewPeriod
	s.header.VotingPeriod = g.VotingPeriod
	s.header.GrantAmount = g.GrantAmount
	s.header.AvailableFunds = g.AvailableFunds
	s.header.VoteStake = g.VoteStake
	s.header.StakeDenom = g.StakeDenom
}

func (s *State) ProposalCount() uint64 {
	return s.proposalMaxIndex
}

// GetProposal returns a proposal by index; indices start at 1 and are never
// reused or removed.
func (s *State) GetProposal(idx uint64) (proposal *gov_types.Proposal, err error) {
	if idx == 0 || idx > s.proposalMaxIndex {
		err = ErrProposalNoexists
		return
	}
	if p, ok := s.modProposals[idx]; ok {
		cp := *p
		return &cp, nil
	}
	key := fmt.Sprintf(KeyProposalBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrProposalNoexists
		return
	}
	proposal = new(gov_types.Proposal)
	err = json.Unmarshal(val, proposal)
	return
}

func voteKey(proposal uint64, voter string) string {
	return fmt.Sprintf(KeyVoteRecord, proposal, voter)
}

func (s *State) hasVoted(proposal uint64, voter string) (bool, error) {
	key := voteKey(proposal, voter)
	if s.newVotes[key] {
		return true, nil
	}
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return false, err
		}
	}
	return val != nil, nil
}

func (s *State) GetAccount(idx uint64) (acnt *Account, err error) {
	if idx >= s.header.AccountIdx {
		err = ErrAccountNoexists
		return
	}
	acnt = s.acnts[idx]
	if acnt != nil {
		return
	}
	key := fmt.Sprintf(KeyAccountBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	acnt = new(Account)
	err = acnt.Unmarshal(val)
	if err != nil {
		acnt = nil
		return
	}
	s.acnts[idx] = acnt
	return
}

func (s *State) FindAccount(addr []byte) (acnt *Account, err error) {
	saddr := cmtcrypto.Address(addr).String()
	return s.findAccountByAddress(saddr)
}

func (s *State) findAccountByAddress(saddr string) (acnt *Account, err error) {
	idx, ok := s.idxs[saddr]
	if !ok {
		key := fmt.Sprintf(KeyAccountIndex, saddr)
		val, err := s.db.Get([]byte(key))
		if err != nil {
			if err == leveldb.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		if val == nil {
			for _, acc := range s.acnts {
				if acc.Address() == saddr {
					return acc, nil
				}
			}
			return nil, nil
		}
		err = rlp.DecodeBytes(val, &idx)
		if err != nil {
			return nil, err
		}
		s.idxs[saddr] = idx
	}
	acnt, err = s.GetAccount(idx)

	return
}

func (s *State) AddAccount(acnt *Account) (err error) {
	a, err := s.FindAccount(acnt.AddrBytes())
	if err != nil {
		return err
	}
	if a != nil {
		err = ErrAccountAlreadyExists
		return
	}
	acnt.Index = s.header.AccountIdx
	s.header.AccountIdx += 1
	s.acnts[acnt.Index] = acnt.Clone()
	s.modifiedAcnts[acnt.Index] = ModifiedFlagNew
	return
}

func (s *State) markModified(a *Account) {
	v := s.modifiedAcnts[a.Index]
	v |= ModifiedFlagMod
	s.modifiedAcnts[a.Index] = v
	s.acnts[a.Index] = a.Clone()
}

func (s *State) Verify(tx *tx.GovTx, allowNonceGap bool) (succ bool, err error) {
	a, err := s.GetAccount(tx.Validator)
	if err != nil {
		return succ, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	if !(a.Nonce == tx.Nonce || (allowNonceGap && a.Nonce < tx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	dat, err := tx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return succ, err
	}
	succ = a.Verify(dat, tx.Sig)
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

// SubmitGrantRequest appends an issue-grant proposal. The current grant
// amount is earmarked out of the treasury before any vote is cast; it is
// credited back if the proposal fails or the payout cannot be delivered.
func (s *State) SubmitGrantRequest(stx *tx.GrantRequestTx, submitter uint64, checkOnly bool, now uint64) (event *gov_types.EventSubmit, err error) {
	s.logger.Debug("apply grant request", "submitter", submitter, "height", s.header.Height)
	a, err := s.GetAccount(submitter)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	if stx.Recipient == "" {
		err = errors.New("grant recipient is empty")
		return
	}
	if s.header.AvailableFunds < s.header.GrantAmount {
		err = ErrInsufficientFunds
		return
	}
	if !checkOnly {
		s.header.AvailableFunds -= s.header.GrantAmount
		proposal := s.appendProposal(gov_types.KindIssueGrant, a, stx.Recipient, s.header.GrantAmount, now)

		a.Nonce += 1
		s.markModified(a)

		event = submitEvent(proposal)
	}
	return
}

// SubmitGrantSizeChange appends a modify-grant-size proposal. No funds are
// reserved; the new size is installed only on successful execution.
func (s *State) SubmitGrantSizeChange(stx *tx.GrantSizeTx, submitter uint64, checkOnly bool, now uint64) (event *gov_types.EventSubmit, err error) {
	s.logger.Debug("apply grant size change", "submitter", submitter, "height", s.header.Height)
	a, err := s.GetAccount(submitter)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	if stx.NewAmount == 0 {
		err = ErrInvalidAmount
		return
	}
	if !checkOnly {
		proposal := s.appendProposal(gov_types.KindModifyGrantSize, a, "", stx.NewAmount, now)

		a.Nonce += 1
		s.markModified(a)

		event = submitEvent(proposal)
	}
	return
}

func (s *State) appendProposal(kind gov_types.ProposalKind, a *Account, recipient string, amount uint64, now uint64) *gov_types.Proposal {
	s.proposalMaxIndex += 1
	begins := now + s.header.ReviewPeriod
	proposal := &gov_types.Proposal{
		Index:            s.proposalMaxIndex,
		Kind:             kind,
		Submitter:        a.Index,
		SubmitterAddress: a.Address(),
		Recipient:        recipient,
		Amount:           amount,
		VoteBegins:       begins,
		VoteEnds:         begins + s.header.VotingPeriod,
		StoredPhase:      gov_types.PhaseUnassigned,
		Height:           s.header.Height,
	}
	s.modProposals[proposal.Index] = proposal
	return proposal
}

func submitEvent(p *gov_types.Proposal) *gov_types.EventSubmit {
	return &gov_types.EventSubmit{
		Proposal:         p.Index,
		Kind:             p.Kind,
		Submitter:        p.Submitter,
		SubmitterAddress: p.SubmitterAddress,
		Recipient:        p.Recipient,
		Amount:           p.Amount,
		VoteBegins:       p.VoteBegins,
		VoteEnds:         p.VoteEnds,
	}
}

// Vote records a member's vote. All preconditions are checked before any
// mutation so a failed vote leaves no trace; when a per-vote stake is
// configured it is pulled from the voter's balance in the same operation.
func (s *State) Vote(vtx *tx.VoteTx, voter uint64, checkOnly bool, now uint64) (event *gov_types.EventVote, err error) {
	s.logger.Debug("apply vote", "voter", voter, "proposal", vtx.Proposal, "support", vtx.Support)
	a, err := s.GetAccount(voter)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	proposal, err := s.GetProposal(vtx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.PhaseAt(now) != gov_types.PhaseActive {
		err = ErrProposalNotActive
		return
	}
	voted, err := s.hasVoted(vtx.Proposal, a.Address())
	if err != nil {
		return nil, err
	}
	if voted {
		err = ErrAlreadyVoted
		return
	}
	if s.header.VoteStake > 0 && a.Balance < s.header.VoteStake {
		err = ErrInsufficientAllowance
		return
	}
	if !checkOnly {
		if s.header.VoteStake > 0 {
			a.Balance -= s.header.VoteStake
			s.header.StakePool += s.header.VoteStake
		}
		event = s.recordVote(proposal, a.Address(), vtx.Support, s.header.VoteStake)

		a.Nonce += 1
		s.markModified(a)
	}
	return
}

// RemoteVote applies a vote relayed from another domain. The attached asset
// must match the configured stake denom and meet the minimum; the origin
// sender is the voter and is held to the same eligibility checks as a
// direct vote.
func (s *State) RemoteVote(vtx *tx.RemoteVoteTx, relayer uint64, checkOnly bool, now uint64) (event *gov_types.EventVote, err error) {
	s.logger.Debug("apply remote vote", "relayer", relayer, "proposal", vtx.Proposal, "origin", vtx.Origin)
	a, err := s.GetAccount(relayer)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	if vtx.Origin == "" {
		err = errors.New("origin sender is empty")
		return
	}
	if vtx.Denom != s.header.StakeDenom {
		err = ErrWrongAsset
		return
	}
	if vtx.Amount < s.header.VoteStake {
		err = ErrBelowMinimumStake
		return
	}
	proposal, err := s.GetProposal(vtx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.PhaseAt(now) != gov_types.PhaseActive {
		err = ErrProposalNotActive
		return
	}
	voted, err := s.hasVoted(vtx.Proposal, vtx.Origin)
	if err != nil {
		return nil, err
	}
	if voted {
		err = ErrAlreadyVoted
		return
	}
	if !checkOnly {
		s.header.StakePool += vtx.Amount
		event = s.recordVote(proposal, vtx.Origin, vtx.Support, vtx.Amount)

		a.Nonce += 1
		s.markModified(a)
	}
	return
}

func (s *State) recordVote(proposal *gov_types.Proposal, voter string, support bool, stake uint64) *gov_types.EventVote {
	if support {
		proposal.VotesFor += 1
	} else {
		proposal.VotesAgainst += 1
	}
	s.modProposals[proposal.Index] = proposal
	s.newVotes[voteKey(proposal.Index, voter)] = true
	return &gov_types.EventVote{
		Proposal:     proposal.Index,
		Voter:        voter,
		Support:      support,
		Stake:        stake,
		VotesFor:     proposal.VotesFor,
		VotesAgainst: proposal.VotesAgainst,
	}
}

// Execute finalizes a queued proposal exactly once. The terminal phase is
// written before any funds move, so a failed payout can only convert into a
// treasury credit, never a replay. Not-queued covers too-early,
// already-executed and nonexistent proposals uniformly.
func (s *State) Execute(etx *tx.ExecuteTx, caller uint64, checkOnly bool, now uint64) (event *gov_types.EventExecute, err error) {
	s.logger.Debug("apply execute", "caller", caller, "proposal", etx.Proposal)
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	proposal, err := s.GetProposal(etx.Proposal)
	if err != nil {
		err = ErrProposalNotQueued
		return
	}
	if proposal.PhaseAt(now) != gov_types.PhaseQueued {
		err = ErrProposalNotQueued
		return
	}
	outcome := gov_types.Tally(proposal.VotesFor, proposal.VotesAgainst, s.header.Quorum)
	if !checkOnly {
		proposal.StoredPhase = outcome
		s.modProposals[proposal.Index] = proposal

		payoutFailed := false
		switch {
		case outcome == gov_types.PhaseSucceeded && proposal.Kind == gov_types.KindIssueGrant:
			if !s.transfer(proposal.Recipient, proposal.Amount) {
				s.header.AvailableFunds += proposal.Amount
				payoutFailed = true
			}
		case outcome == gov_types.PhaseSucceeded && proposal.Kind == gov_types.KindModifyGrantSize:
			s.header.GrantAmount = proposal.Amount
		case proposal.Kind == gov_types.KindIssueGrant:
			s.header.AvailableFunds += proposal.Amount
		}

		a.Nonce += 1
		s.markModified(a)

		event = &gov_types.EventExecute{
			Proposal:       proposal.Index,
			Phase:          outcome,
			PayoutFailed:   payoutFailed,
			GrantAmount:    s.header.GrantAmount,
			AvailableFunds: s.header.AvailableFunds,
		}
	}
	return
}

// transfer credits amount to the account with the given address. It never
// aborts the caller; an unknown recipient just reports failure.
func (s *State) transfer(recipient string, amount uint64) bool {
	r, err := s.findAccountByAddress(recipient)
	if err != nil || r == nil {
		s.logger.Info("grant payout failed", "recipient", recipient, "amount", amount, "err", err)
		return false
	}
	r.Balance += amount
	s.markModified(r)
	return true
}

// Deposit credits a member balance used to fund vote stakes.
func (s *State) Deposit(dtx *tx.DepositTx, member uint64, checkOnly bool) (event *gov_types.EventDeposit, err error) {
	s.logger.Debug("apply deposit", "member", member, "amount", dtx.Amount)
	a, err := s.GetAccount(member)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxValidatorNoexists
		return
	}
	if dtx.Amount == 0 {
		err = ErrInvalidAmount
		return
	}
	if !checkOnly {
		a.Balance += dtx.Amount
		a.Nonce += 1
		s.markModified(a)

		event = &gov_types.EventDeposit{
			Member:  a.Index,
			Address: a.Address(),
			Amount:  dtx.Amount,
			Balance: a.Balance,
		}
	}
	return
}

// Members lists every account in the tree, ordered by index.
func (s *State) Members() (accounts []*Account, height uint64, err error) {
	start := []byte(fmt.Sprintf(KeyAccountBody, ""))
	end := PrefixEndBytes(start)
	aIterator, err := s.db.Iterator(start, end, false)
	if err != nil {
		return nil, 0, err
	}
	for ; aIterator.Valid(); aIterator.Next() {
		var act Account
		if err = act.Unmarshal(aIterator.Value()); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, &act)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Index < accounts[j].Index
	})
	height = s.header.Height
	return accounts, height, nil
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
