package eth

import (
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAbiJson = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"disperseToken","stateMutability":"nonpayable",
	 "inputs":[{"name":"token","type":"address"},{"name":"recipients","type":"address[]"},{"name":"values","type":"uint256[]"}],
	 "outputs":[]},
	{"type":"event","name":"Transfer","anonymous":false,
	 "inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"constructor","inputs":[],"stateMutability":"nonpayable"}
]`

var testAbi = MustParseAbiJson(testAbiJson)

var (
	testAddrA = MustParseAddress("0x1111111111111111111111111111111111111111")
	testAddrB = MustParseAddress("0x2222222222222222222222222222222222222222")
)

func word(hex string) string {
	return strings.Repeat("0", 64-len(hex)) + hex
}

func TestAbiSkipsNonFunctions(t *testing.T) {
	assert.Len(t, testAbi, 4)
	_, ok := testAbi.MaybeFunction("Transfer")
	assert.False(t, ok)
	assert.Panics(t, func() { testAbi.Function("mint") })
}

func TestAbiSelectors(t *testing.T) {
	assert.Equal(t, "a9059cbb", selectorHex(testAbi.Function("transfer")))
	assert.Equal(t, "70a08231", selectorHex(testAbi.Function("balanceOf")))
	assert.Equal(t, "313ce567", selectorHex(testAbi.Function("decimals")))
	assert.Equal(t, "disperseToken(address,address[],uint256[])", testAbi.Function("disperseToken").Signature())
}

func TestAbiMarshalTransfer(t *testing.T) {
	data, err := testAbi.Function("transfer").Marshal(testAddrA, uint256.NewInt(1500000))
	require.NoError(t, err)

	want := "0xa9059cbb" +
		word("1111111111111111111111111111111111111111") +
		word("16e360")
	assert.Equal(t, want, HexString(data))
}

func TestAbiMarshalAmountTypes(t *testing.T) {
	fun := testAbi.Function("transfer")
	want, err := fun.Marshal(testAddrA, uint256.NewInt(42))
	require.NoError(t, err)

	for _, amount := range []interface{}{uint64(42), uint8(42), HexUint256From(42), big.NewInt(42)} {
		got, err := fun.Marshal(testAddrA, amount)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%T", amount)
	}
}

func TestAbiMarshalDynamicArrays(t *testing.T) {
	data, err := testAbi.Function("disperseToken").Marshal(
		testAddrA,
		[]Address{testAddrA, testAddrB},
		[]*uint256.Int{uint256.NewInt(1), uint256.NewInt(2)},
	)
	require.NoError(t, err)

	want := "0x" + selectorHex(testAbi.Function("disperseToken")) +
		word("1111111111111111111111111111111111111111") +
		word("60") +
		word("c0") +
		word("2") +
		word("1111111111111111111111111111111111111111") +
		word("2222222222222222222222222222222222222222") +
		word("2") +
		word("1") +
		word("2")
	assert.Equal(t, want, HexString(data))
}

func TestAbiMarshalErrors(t *testing.T) {
	fun := testAbi.Function("transfer")

	_, err := fun.Marshal(testAddrA)
	assert.Error(t, err, "arity")

	_, err = fun.Marshal(testAddrA, "42")
	assert.Error(t, err, "type")

	_, err = fun.Marshal(testAddrA, (*uint256.Int)(nil))
	assert.Error(t, err, "nil")

	_, err = fun.Marshal(testAddrA, big.NewInt(-1))
	assert.Error(t, err, "negative")
}

func TestAbiMarshalUintOverflow(t *testing.T) {
	atype, err := ParseAbiType("uint8")
	require.NoError(t, err)

	_, err = AbiMarshal(atype, uint64(255))
	assert.NoError(t, err)
	_, err = AbiMarshal(atype, uint64(256))
	assert.Error(t, err)
}

func TestAbiUnmarshal(t *testing.T) {
	var balance uint256.Int
	err := testAbi.Function("balanceOf").Unmarshal(MustHexParse("0x"+word("de0b6b3a7640000")), &balance)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.Dec())

	var decimals uint8
	err = testAbi.Function("decimals").Unmarshal(MustHexParse("0x"+word("12")), &decimals)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), decimals)

	var ok bool
	err = testAbi.Function("transfer").Unmarshal(MustHexParse("0x"+word("1")), &ok)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAbiUnmarshalErrors(t *testing.T) {
	var decimals uint8
	err := testAbi.Function("decimals").Unmarshal(MustHexParse("0x"+word("100")), &decimals)
	assert.Error(t, err, "overflow")

	err = testAbi.Function("decimals").Unmarshal(nil, &decimals)
	assert.Error(t, err, "empty")

	var ok bool
	err = testAbi.Function("transfer").Unmarshal(MustHexParse("0x"+word("2")), &ok)
	assert.Error(t, err, "bool")
}

func TestParseAbiType(t *testing.T) {
	for _, name := range []string{"bool", "address", "uint", "uint8", "uint256", "bytes", "bytes32", "string", "address[]", "uint256[3]"} {
		_, err := ParseAbiType(name)
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"int256", "uint7", "uint264", "bytes33", "tuple", "fixed128x18"} {
		_, err := ParseAbiType(name)
		assert.Error(t, err, name)
	}
}

func selectorHex(fun AbiFunction) string {
	return HexString(fun.Selector[:])[2:]
}
