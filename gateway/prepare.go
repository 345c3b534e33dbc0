package gateway

import (
	"context"

	"github.com/purelabio/ethgate/eth"
	"golang.org/x/sync/errgroup"
)

/*
Fills in gas limit, nonce and gas price. The three are fetched concurrently:
the nonce counts pending transactions of the sender, and the gas estimate runs
the call against the latest block.

Returns a modified copy; the input is never touched. If any query fails, the
result is the zero TxMsg and an "*UpstreamError". There is no retry.

Two concurrent preparations for the same sender get the same nonce.
*/
func Prepare(ctx context.Context, ledger Ledger, msg eth.TxMsg) (eth.TxMsg, error) {
	var nonce, gasPrice, gas *eth.HexUint256
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		val, err := ledger.Nonce(ctx, msg.From)
		nonce = eth.NewHexUint256(val)
		return upstream("nonce", err)
	})

	group.Go(func() error {
		val, err := ledger.GasPrice(ctx)
		gasPrice = eth.NewHexUint256(val)
		return upstream("gas price", err)
	})

	group.Go(func() error {
		val, err := ledger.EstimateGas(ctx, msg)
		gas = eth.NewHexUint256(val)
		return upstream("gas estimate", err)
	})

	err := group.Wait()
	if err != nil {
		return eth.TxMsg{}, err
	}

	msg.Nonce = nonce
	msg.GasPrice = gasPrice
	msg.GasLimit = gas
	return msg, nil
}
