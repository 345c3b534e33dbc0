/*
Ethereum plumbing for the gateway: hex-encoded wire types, exact decimal
conversion of token amounts, ABI encoding of contract calls, and strongly-typed
RPC methods over HTTP or WebSocket transports.

Types

Interacting with Ethereum over RPC involves transmitting raw bytes, addresses,
hashes, and numbers in a hex-encoded format prefixed with "0x". This package
provides aliases for regular Go types such as []byte, [20]byte, uint64 and
"uint256.Int", specialized for hex encoding and decoding.

All quantities that may exceed 64 bits (token amounts, wei values, gas prices)
are "*uint256.Int", or "*HexUint256" on the wire. Floats are never involved.

To avoid potential gotchas, the array types Address and Hash have a special
rule: a zero-initialized array is JSON-encoded as "null", not as
"0x0000000000000.....". For consistency, this rule also affects MarshalText,
where an empty array encodes as "". However, the .String() method is unaffected.

Amounts

Convert between human-readable decimals and integer base units:

	amount, err := eth.ParseUnits("1.5", 6) // 1500000
	text := eth.FormatUnits(amount, 6)      // "1.5"

Conversion is exact. Input with more fractional digits than the token allows is
rejected with "ErrMalformedAmount".

RPC

Connect to an Ethereum node:

	trans, err := eth.Dial("wss://some-host:8546", logger)

Supported transports: HTTP and WebSocket. The WebSocket transport reconnects
automatically.

Call RPC methods:

	balance, err := eth.EthGetBalance(ctx, trans, someAddress)

Contract ABI

Calling a contract involves an "application binary interface", or ABI. This
package ABI-encodes arguments and ABI-decodes return values in accordance with
https://docs.soliditylang.org/en/latest/abi-spec.html

Using a "view" method (error handling elided for brevity):

	method := Erc20Abi.Function("balanceOf")

	input, err := method.Marshal(owner)

	output, err := eth.EthCallLatest(ctx, trans, eth.TxMsg{To: token, Data: input})

	var balance uint256.Int
	err = method.Unmarshal(output, &balance)

For a mutating method, the encoded input becomes "TxMsg.Data" of a transaction
that is signed and broadcast elsewhere; this package never holds keys.

Supported Solidity types: bool, address, uint8 through uint256, bytes, bytesN,
string, and fixed or dynamic arrays of those. Signed integers and tuples are not
supported. Decoding supports statically-sized outputs only.

Cancelation

All network operations accept a context.Context as the first argument. In a web
server, pass the request context, which is canceled when the client goes away.
*/
package eth
