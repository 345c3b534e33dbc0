package gateway

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

/*
Decodes a hex-encoded signed transaction, with or without the "0x" prefix, and
verifies that it's a well-formed transaction envelope. Fails with
"ErrMalformedTx". Doesn't verify the signature; that's the node's job.
*/
func DecodeSignedTx(input string) ([]byte, error) {
	raw, err := eth.HexDecodeLoose(input)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedTx, err.Error())
	}
	if len(raw) == 0 {
		return nil, errors.Wrap(ErrMalformedTx, "empty transaction")
	}

	var tx types.Transaction
	err = tx.UnmarshalBinary(raw)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedTx, err.Error())
	}
	return raw, nil
}

/*
Submits a signed transaction. Returns the hash reported by the node once it
accepts the transaction into its pool; doesn't wait for mining. A rejection is
an "*UpstreamError" carrying the node's message verbatim. Nothing is retried.
*/
func Broadcast(ctx context.Context, ledger Ledger, raw []byte) (eth.Hash, error) {
	hash, err := ledger.SendRawTransaction(ctx, raw)
	if err != nil {
		return eth.Hash{}, upstream("broadcast", err)
	}
	return hash, nil
}

/*
Status of a broadcast transaction. Returns nil while the transaction is pending
or unknown to the node.
*/
func Receipt(ctx context.Context, ledger Ledger, hash eth.Hash) (*eth.TxReceipt, error) {
	receipt, err := ledger.Receipt(ctx, hash)
	if err != nil {
		return nil, upstream("receipt", err)
	}
	return receipt, nil
}
