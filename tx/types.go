package tx

import (
	"errors"
)

type GovTxType uint8

const (
	GovTxTypeUnknown      GovTxType = 0
	GovTxTypeGrantRequest GovTxType = 1
	GovTxTypeGrantSize    GovTxType = 2
	GovTxTypeVote         GovTxType = 3
	GovTxTypeRemoteVote   GovTxType = 4
	GovTxTypeExecute      GovTxType = 5
	GovTxTypeDeposit      GovTxType = 6
)

const (
	GovTxVersion0 uint8 = 0
	GovTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)
