package eth

import (
	"context"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Strongly-typed version of the "eth_getBalance" RPC method, at the latest block.
func EthGetBalance(ctx context.Context, trans Trans, addr Address) (*uint256.Int, error) {
	var out HexUint256
	err := trans.Call(ctx, &out, "eth_getBalance", addr, BlockNumberLatest)
	return out.Uint256(), errors.Wrap(err, `error in "eth_getBalance"`)
}

/*
Strongly-typed version of the "eth_getTransactionCount" RPC method. Pass
"BlockNumberPending" to account for transactions waiting in the mempool, which
is what a new transaction's nonce should be based on.
*/
func EthGetTransactionCount(ctx context.Context, trans Trans, addr Address, block BlockNumber) (*uint256.Int, error) {
	var out HexUint256
	err := trans.Call(ctx, &out, "eth_getTransactionCount", addr, block)
	return out.Uint256(), errors.Wrap(err, `error in "eth_getTransactionCount"`)
}

// Strongly-typed version of the "eth_gasPrice" RPC method.
func EthGasPrice(ctx context.Context, trans Trans) (*uint256.Int, error) {
	var out HexUint256
	err := trans.Call(ctx, &out, "eth_gasPrice")
	return out.Uint256(), errors.Wrap(err, `error in "eth_gasPrice"`)
}

/*
Strongly-typed version of the "eth_estimateGas" RPC method.

Note that estimating gas is a somewhat slow operation; the remote node will
attempt to execute the transaction against the current block, running EVM code
if required. This can easily take tens of milliseconds, or more. A transaction
that would revert fails the estimate with an "RpcError".
*/
func EthEstimateGas(ctx context.Context, trans Trans, msg TxMsg) (*uint256.Int, error) {
	var out HexUint256
	err := trans.Call(ctx, &out, "eth_estimateGas", toCallMsg(msg))
	return out.Uint256(), errors.Wrap(err, `error in "eth_estimateGas"`)
}

/*
Strongly-typed version of the "eth_call" RPC method. Executes the message
against the given block without creating a transaction, and returns the raw
return data, which is usually ABI-decoded via "AbiFunction.Unmarshal".
*/
func EthCall(ctx context.Context, trans Trans, msg TxMsg, block BlockNumber) ([]byte, error) {
	var out HexBytes
	err := trans.Call(ctx, &out, "eth_call", toCallMsg(msg), block)
	return []byte(out), errors.Wrap(err, `error in "eth_call"`)
}

// Shortcut for "EthCall" against the latest block.
func EthCallLatest(ctx context.Context, trans Trans, msg TxMsg) ([]byte, error) {
	return EthCall(ctx, trans, msg, BlockNumberLatest)
}

/*
Strongly-typed version of the "eth_sendRawTransaction" RPC method. The input
must be a signed, RLP-encoded transaction. Returns the transaction hash as
reported by the node. Doesn't wait for the transaction to be mined; see
"EthGetTransactionReceipt".
*/
func EthSendRawTransaction(ctx context.Context, trans Trans, raw []byte) (Hash, error) {
	var out Hash
	err := trans.Call(ctx, &out, "eth_sendRawTransaction", HexBytes(raw))
	return out, errors.Wrap(err, `error in "eth_sendRawTransaction"`)
}

// Strongly-typed version of the "eth_chainId" RPC method.
func EthChainId(ctx context.Context, trans Trans) (uint64, error) {
	var out HexUint64
	err := trans.Call(ctx, &out, "eth_chainId")
	return uint64(out), errors.Wrap(err, `error in "eth_chainId"`)
}

/*
Strongly-typed version of the "eth_getTransactionReceipt" RPC method. Nodes
respond with "null" for transactions that are pending or unknown, in which case
this returns nil without an error.
*/
func EthGetTransactionReceipt(ctx context.Context, trans Trans, hash Hash) (*TxReceipt, error) {
	var out json.RawMessage
	err := trans.Call(ctx, &out, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, errors.Wrap(err, `error in "eth_getTransactionReceipt"`)
	}
	if len(out) == 0 || string(out) == "null" {
		return nil, nil
	}

	var receipt TxReceipt
	err = json.Unmarshal(out, &receipt)
	if err != nil {
		return nil, errors.Wrap(err, `error in "eth_getTransactionReceipt": failed to decode receipt`)
	}
	return &receipt, nil
}

/*
Wire format of "TxMsg" for "eth_call" and "eth_estimateGas". Absent fields are
omitted rather than sent as null, and the sender is omitted when zero.
*/
type callMsg struct {
	From     *Address    `json:"from,omitempty"`
	To       *Address    `json:"to,omitempty"`
	Data     HexBytes    `json:"data,omitempty"`
	Value    *HexUint256 `json:"value,omitempty"`
	GasLimit *HexUint256 `json:"gas,omitempty"`
	GasPrice *HexUint256 `json:"gasPrice,omitempty"`
}

func toCallMsg(msg TxMsg) callMsg {
	out := callMsg{
		Data:     msg.Data,
		Value:    msg.Value,
		GasLimit: msg.GasLimit,
		GasPrice: msg.GasPrice,
	}
	if msg.From != ZeroAddress {
		out.From = &msg.From
	}
	if msg.To != ZeroAddress {
		out.To = &msg.To
	}
	return out
}
