package state

import (
	"encoding/json"

	"github.com/cometbft/cometbft/crypto/ed25519"
)

// Account is a member of the governance set. Balance funds per-vote stakes
// and receives grant payouts.
type Account struct {
	Index   uint64 `json:"index"`
	PubKey  []byte `json:"pubKey"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
	Name    string `json:"name"`
}

func (a *Account) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Account) Unmarshal(dat []byte) error {
	return json.Unmarshal(dat, a)
}

func (a *Account) Clone() *Account {
	n := *a
	if a.PubKey != nil {
		n.PubKey = make([]byte, len(a.PubKey))
		copy(n.PubKey, a.PubKey)
	}
	return &n
}

func (a *Account) SetPubKey(pkey []byte) {
	if a.PubKey == nil {
		a.PubKey = make([]byte, len(pkey))
	}
	copy(a.PubKey, pkey)
}

func (a *Account) AddrBytes() []byte {
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.Address()[:]
}

func (a *Account) Address() string {
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.Address().String()
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 {
		return false
	}
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.VerifySignature(msg, sigs[0])
}
