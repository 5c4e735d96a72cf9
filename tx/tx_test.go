package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalGovTxDispatch(t *testing.T) {
	btx := &GovTx{
		Version:   GovTxVersion1,
		Type:      GovTxTypeGrantRequest,
		Nonce:     7,
		Validator: 65536,
		Tx:        &GrantRequestTx{Recipient: "A1B2"},
		Sig:       [][]byte{{0x01}},
	}
	dat, err := MarshalGovTx(btx)
	require.NoError(t, err)

	got, err := UnmarshalGovTx(dat)
	require.NoError(t, err)
	assert.Equal(t, GovTxTypeGrantRequest, got.Type)
	assert.Equal(t, uint64(7), got.Nonce)
	assert.Equal(t, uint64(65536), got.Validator)
	payload, ok := got.Tx.(*GrantRequestTx)
	require.True(t, ok)
	assert.Equal(t, "A1B2", payload.Recipient)
}

func TestUnmarshalGovTxPayloadTypes(t *testing.T) {
	cases := []struct {
		tp      GovTxType
		payload any
	}{
		{GovTxTypeGrantSize, &GrantSizeTx{NewAmount: 123}},
		{GovTxTypeVote, &VoteTx{Proposal: 1, Support: true}},
		{GovTxTypeRemoteVote, &RemoteVoteTx{Proposal: 1, Denom: "ugov", Amount: 5, Origin: "o", OriginDomain: "d"}},
		{GovTxTypeExecute, &ExecuteTx{Proposal: 2}},
		{GovTxTypeDeposit, &DepositTx{Amount: 9}},
	}
	for _, c := range cases {
		dat, err := MarshalGovTx(&GovTx{Version: GovTxVersion1, Type: c.tp, Tx: c.payload})
		require.NoError(t, err)
		got, err := UnmarshalGovTx(dat)
		require.NoError(t, err)
		assert.Equal(t, c.tp, got.Type)
	}
}

func TestUnmarshalGovTxUnknownType(t *testing.T) {
	_, err := UnmarshalGovTx([]byte(`{"type":99}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)
	_, err = UnmarshalGovTx([]byte(`not json`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataBindsChainId(t *testing.T) {
	btx := &GovTx{
		Version:   GovTxVersion1,
		Type:      GovTxTypeVote,
		Nonce:     1,
		Validator: 65536,
		Tx:        &VoteTx{Proposal: 1, Support: true},
		Sig:       [][]byte{{0xAA, 0xBB}},
	}
	a, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	b, err := btx.SigData([]byte("chain-b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// the signature slot itself is excluded from the signed bytes
	btx.Sig = [][]byte{{0xCC}}
	c, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	assert.Equal(t, a, c)
}
