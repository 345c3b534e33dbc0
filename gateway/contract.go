package gateway

//go:generate go run ../gen_abi -pkg gateway -out abi_gen.go Erc20=../abi/erc20.json DisperseCollect=../abi/disperse_collect.json

import (
	"context"

	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

/*
ABI-encodes a call of the named function. Panics with "*EncodingError" when the
function is missing or the arguments don't fit its signature.
*/
func mustEncode(abi eth.Abi, method string, args ...interface{}) eth.HexBytes {
	fun, ok := abi.MaybeFunction(method)
	if !ok {
		panic(&EncodingError{Method: method, Err: errors.New("function not found in ABI definition")})
	}

	data, err := fun.Marshal(args...)
	if err != nil {
		panic(&EncodingError{Method: method, Err: err})
	}
	return data
}

/*
Executes a view function and decodes its output. Both a failed call and
undecodable output, for example from an address without code, count as upstream
failures.
*/
func query(ctx context.Context, ledger Ledger, abi eth.Abi, to eth.Address, method string, args []interface{}, outs ...interface{}) error {
	msg := eth.TxMsg{To: to, Data: mustEncode(abi, method, args...)}

	output, err := ledger.Call(ctx, msg)
	if err != nil {
		return upstream(method, err)
	}

	err = abi.Function(method).Unmarshal(output, outs...)
	if err != nil {
		return upstream(method, errors.Wrapf(err, "unexpected output from %v", to))
	}
	return nil
}

func callMsg(abi eth.Abi, sender, to eth.Address, value *eth.HexUint256, method string, args ...interface{}) eth.TxMsg {
	if value == nil {
		value = eth.HexUint256From(0)
	}
	return eth.TxMsg{
		From:  sender,
		To:    to,
		Data:  mustEncode(abi, method, args...),
		Value: value,
	}
}
