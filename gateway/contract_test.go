package gateway

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedAbi(t *testing.T) {
	for _, name := range []string{"transfer", "approve", "transferFrom", "balanceOf", "allowance", "totalSupply", "decimals"} {
		_, ok := Erc20Abi.MaybeFunction(name)
		assert.True(t, ok, name)
	}
	for _, name := range []string{"disperseEther", "disperseEtherByPercent", "disperseToken", "disperseTokenByPercent", "collectEther", "collectToken"} {
		_, ok := DisperseCollectAbi.MaybeFunction(name)
		assert.True(t, ok, name)
	}
	assert.True(t, DisperseCollectAbi.Function("collectEther").IsPayable())
	assert.True(t, Erc20Abi.Function("decimals").IsView())
}

func TestErc20Builders(t *testing.T) {
	erc20 := Erc20{token}
	amount := uint256.NewInt(42)

	msg := erc20.Transfer(alice, bob, amount)
	assert.Equal(t, alice, msg.From)
	assert.Equal(t, token, msg.To)
	assert.True(t, msg.Value.Uint256().IsZero())
	assert.Equal(t, "0xa9059cbb", eth.HexString(msg.Data[:4]))
	assert.Len(t, msg.Data, 4+32*2)

	msg = erc20.Approve(alice, helper, amount)
	assert.Equal(t, "0x095ea7b3", eth.HexString(msg.Data[:4]))

	msg = erc20.TransferFrom(bob, alice, carol, amount)
	assert.Equal(t, "0x23b872dd", eth.HexString(msg.Data[:4]))
	assert.Equal(t, bob, msg.From)
	assert.Len(t, msg.Data, 4+32*3)

	msg = erc20.BalanceOf(alice)
	assert.Equal(t, "0x70a08231", eth.HexString(msg.Data[:4]))
	assert.Nil(t, msg.Value)
}

func TestDisperseCollectBuilders(t *testing.T) {
	dc := DisperseCollect{helper}
	value := uint256.NewInt(3)

	msg := dc.DisperseEther(alice, []eth.Address{bob, carol}, []*uint256.Int{uint256.NewInt(1), uint256.NewInt(2)}, value)
	assert.Equal(t, helper, msg.To)
	assert.Equal(t, uint64(3), msg.Value.Uint256().Uint64())
	// selector, 2 offsets, 2 length-prefixed arrays of 2
	assert.Len(t, msg.Data, 4+32*2+32*3*2)

	msg = dc.DisperseTokenByPercent(alice, token, []eth.Address{bob}, []Percentage{100})
	assert.True(t, msg.Value.Uint256().IsZero())
	assert.Len(t, msg.Data, 4+32*3+32*2*2)

	msg = dc.CollectEther(alice, bob, value)
	assert.Len(t, msg.Data, 4+32)

	value.SetUint64(4)
	assert.Equal(t, uint64(3), msg.Value.Uint256().Uint64(), "the message owns its value")
}

func TestMustEncodePanics(t *testing.T) {
	recovered := func(fun func()) (out interface{}) {
		defer func() { out = recover() }()
		fun()
		return nil
	}

	val := recovered(func() { mustEncode(Erc20Abi, "transfer", "not an address", 1) })
	encErr, ok := val.(*EncodingError)
	require.True(t, ok, "%#v", val)
	assert.Equal(t, "transfer", encErr.Method)

	val = recovered(func() { mustEncode(Erc20Abi, "mint", alice) })
	_, ok = val.(*EncodingError)
	assert.True(t, ok, "%#v", val)

	val = recovered(func() { Erc20{token}.Transfer(alice, bob, nil) })
	_, ok = val.(*EncodingError)
	assert.True(t, ok, "nil amount: %#v", val)
}

func TestValidatePercentages(t *testing.T) {
	assert.NoError(t, ValidatePercentages([]Percentage{50, 50}))
	assert.NoError(t, ValidatePercentages([]Percentage{100}))
	assert.NoError(t, ValidatePercentages([]Percentage{10, 20}))
	assert.True(t, errors.Is(ValidatePercentages([]Percentage{50, 51}), ErrPercentageOverflow))
	assert.True(t, errors.Is(ValidatePercentages([]Percentage{255, 255}), ErrPercentageOverflow))
}

func TestValidateRecipients(t *testing.T) {
	assert.NoError(t, ValidateRecipients("recipients", []eth.Address{bob, carol}, 2))
	assert.True(t, errors.Is(ValidateRecipients("recipients", nil, 0), ErrInvalidInput))
	assert.True(t, errors.Is(ValidateRecipients("recipients", []eth.Address{bob}, 2), ErrInvalidInput))
	assert.True(t, errors.Is(ValidateRecipients("recipients", []eth.Address{bob, {}}, 2), ErrInvalidInput))
}

func TestSum(t *testing.T) {
	total, err := Sum([]*uint256.Int{uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), total.Uint64())

	max := new(uint256.Int).SetAllOne()
	_, err = Sum([]*uint256.Int{max, uint256.NewInt(1)})
	assert.True(t, errors.Is(err, eth.ErrMalformedAmount), "%+v", err)
}
