package tx

import (
	"encoding/json"
)

// GovTx is the signed envelope every mutating call arrives in. Validator is
// the index of the account the call is attributed to; the signature covers
// the envelope with the chain id substituted for the signature slot.
type GovTx struct {
	Version   uint8     `json:"version"`
	Type      GovTxType `json:"type"`
	Nonce     uint64    `json:"nonce"`
	Validator uint64    `json:"validator"`
	Tx        any       `json:"tx"`
	Sig       [][]byte  `json:"sig"`
}

// GrantRequestTx asks the treasury to issue the current flat grant to
// Recipient. The amount is earmarked at submission, not at execution.
type GrantRequestTx struct {
	Recipient string `json:"recipient"`
}

// GrantSizeTx proposes a new flat grant size.
type GrantSizeTx struct {
	NewAmount uint64 `json:"newAmount"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Support  bool   `json:"support"`
}

// RemoteVoteTx is a vote relayed from another domain. The relayer submits
// the envelope; Origin is the authenticated sender on the source domain and
// is treated as the voter. The attached asset must match the configured
// stake denom and meet the minimum stake.
type RemoteVoteTx struct {
	Proposal     uint64 `json:"proposal"`
	Support      bool   `json:"support"`
	Denom        string `json:"denom"`
	Amount       uint64 `json:"amount"`
	Origin       string `json:"origin"`
	OriginDomain string `json:"originDomain"`
}

type ExecuteTx struct {
	Proposal uint64 `json:"proposal"`
}

type DepositTx struct {
	Amount uint64 `json:"amount"`
}

type govTxTmpl[Tx any] struct {
	Version   uint8     `json:"version"`
	Type      GovTxType `json:"type"`
	Nonce     uint64    `json:"nonce"`
	Validator uint64    `json:"validator"`
	Tx        Tx        `json:"tx"`
	Sig       [][]byte  `json:"sig"`
}

func (tx *GovTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseGovTxType(dat []byte) GovTxType {
	var tx struct {
		Type GovTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return GovTxTypeUnknown
	}
	return tx.Type
}

func unmarshalGovTx[Tx any](dat []byte) (btx *GovTx, err error) {
	var txt govTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(GovTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Validator = txt.Validator
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalGovTx(dat []byte) (btx *GovTx, err error) {
	tp := parseGovTxType(dat)
	switch tp {
	case GovTxTypeGrantRequest:
		return unmarshalGovTx[GrantRequestTx](dat)
	case GovTxTypeGrantSize:
		return unmarshalGovTx[GrantSizeTx](dat)
	case GovTxTypeVote:
		return unmarshalGovTx[VoteTx](dat)
	case GovTxTypeRemoteVote:
		return unmarshalGovTx[RemoteVoteTx](dat)
	case GovTxTypeExecute:
		return unmarshalGovTx[ExecuteTx](dat)
	case GovTxTypeDeposit:
		return unmarshalGovTx[DepositTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalGovTx(btx *GovTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
