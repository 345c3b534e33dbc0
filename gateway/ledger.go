package gateway

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/purelabio/ethgate/eth"
)

/*
The chain as seen by the gateway. All state is read fresh on every call;
nothing is cached or locked.
*/
type Ledger interface {
	Balance(ctx context.Context, addr eth.Address) (*uint256.Int, error)

	// Transaction count including pending transactions: the next usable nonce.
	Nonce(ctx context.Context, addr eth.Address) (*uint256.Int, error)

	GasPrice(ctx context.Context) (*uint256.Int, error)
	EstimateGas(ctx context.Context, msg eth.TxMsg) (*uint256.Int, error)

	// Executes a read-only call against the latest block.
	Call(ctx context.Context, msg eth.TxMsg) ([]byte, error)

	SendRawTransaction(ctx context.Context, raw []byte) (eth.Hash, error)
	ChainID(ctx context.Context) (uint64, error)

	// Returns nil while the transaction is pending or unknown.
	Receipt(ctx context.Context, hash eth.Hash) (*eth.TxReceipt, error)
}

// Ledger backed by a JSON-RPC node.
type RpcLedger struct {
	Trans eth.Trans
}

var _ Ledger = RpcLedger{}

func (self RpcLedger) Balance(ctx context.Context, addr eth.Address) (*uint256.Int, error) {
	return eth.EthGetBalance(ctx, self.Trans, addr)
}

func (self RpcLedger) Nonce(ctx context.Context, addr eth.Address) (*uint256.Int, error) {
	return eth.EthGetTransactionCount(ctx, self.Trans, addr, eth.BlockNumberPending)
}

func (self RpcLedger) GasPrice(ctx context.Context) (*uint256.Int, error) {
	return eth.EthGasPrice(ctx, self.Trans)
}

func (self RpcLedger) EstimateGas(ctx context.Context, msg eth.TxMsg) (*uint256.Int, error) {
	return eth.EthEstimateGas(ctx, self.Trans, msg)
}

func (self RpcLedger) Call(ctx context.Context, msg eth.TxMsg) ([]byte, error) {
	return eth.EthCallLatest(ctx, self.Trans, msg)
}

func (self RpcLedger) SendRawTransaction(ctx context.Context, raw []byte) (eth.Hash, error) {
	return eth.EthSendRawTransaction(ctx, self.Trans, raw)
}

func (self RpcLedger) ChainID(ctx context.Context) (uint64, error) {
	return eth.EthChainId(ctx, self.Trans)
}

func (self RpcLedger) Receipt(ctx context.Context, hash eth.Hash) (*eth.TxReceipt, error) {
	return eth.EthGetTransactionReceipt(ctx, self.Trans, hash)
}
