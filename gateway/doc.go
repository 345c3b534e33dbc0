/*
Builds Ethereum transactions for ERC-20 tokens and the DisperseCollect helper
contract, and checks them against the chain before handing them out.

Every operation of "Service" follows the same pipeline:

	validate input -> parse amounts -> check balances and allowances
	-> build the call -> fill in nonce, gas price and gas limit
	-> encode the unsigned transaction as hex

The result is either a complete "PreparedTx" or an error; partially prepared
transactions are never returned. Callers sign the transaction themselves and
submit it via "Service.SendSignedTransaction". "Signer" exists for testing.

All chain access goes through "Ledger". "RpcLedger" implements it over a
JSON-RPC node; tests use an in-memory fake.

Errors are returned wrapped. Compare them via "errors.Is" against the
sentinels in this package. Any failure of the node satisfies
"errors.Is(err, ErrUpstream)".

Amounts are decimal text scaled by the token's "decimals()", which are cached
by "DecimalsCache". Ether amounts use 18 decimals.
*/
package gateway
