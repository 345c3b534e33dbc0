package gateway

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

/*
Signs transactions for one chain. Signatures follow EIP-155 over legacy
(gas price) transactions. Holds no keys: every call brings its own.
*/
type Signer struct {
	ChainID uint64
}

// Raw bytes of a signed transaction, ready for "Broadcast", and its hash.
type SignedTx struct {
	Raw  []byte
	Hash eth.Hash
}

/*
Signs the transaction with the hex-encoded secp256k1 key, which may or may not
carry the "0x" prefix. Fails with "ErrInvalidKey" when the key doesn't parse or
doesn't belong to "msg.From" (a zero "From" matches any key), and with
"ErrMalformedTx" when the gas limit or nonce exceeds 64 bits. Missing gas, nonce
or gas price are signed as zero.
*/
func (self Signer) Sign(msg eth.TxMsg, privateKeyHex string) (SignedTx, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X"))
	if err != nil {
		// The cause may quote the key.
		return SignedTx{}, errors.WithStack(ErrInvalidKey)
	}

	sender := eth.Address(crypto.PubkeyToAddress(key.PublicKey))
	if msg.From != eth.ZeroAddress && msg.From != sender {
		return SignedTx{}, errors.Wrapf(ErrInvalidKey, "key belongs to %v, transaction is from %v", sender, msg.From)
	}

	inner, err := legacyTx(msg)
	if err != nil {
		return SignedTx{}, err
	}

	tx, err := types.SignTx(types.NewTx(inner), self.signer(), key)
	if err != nil {
		return SignedTx{}, errors.Wrap(ErrInvalidKey, err.Error())
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return SignedTx{}, errors.Wrap(ErrMalformedTx, err.Error())
	}
	return SignedTx{Raw: raw, Hash: eth.Hash(tx.Hash())}, nil
}

func (self Signer) signer() types.Signer {
	return types.NewEIP155Signer(new(big.Int).SetUint64(self.ChainID))
}

/*
Canonical encoding of an unsigned transaction: the RLP list that EIP-155
signatures are computed over,

	[nonce, gasPrice, gas, to, value, data, chainId, 0, 0]

Its Keccak-256 hash is what the sender signs.
*/
func (self Signer) EncodeUnsigned(msg eth.TxMsg) ([]byte, error) {
	tx, err := legacyTx(msg)
	if err != nil {
		return nil, err
	}

	out, err := rlp.EncodeToBytes([]interface{}{
		tx.Nonce,
		tx.GasPrice,
		tx.Gas,
		tx.To,
		tx.Value,
		tx.Data,
		new(big.Int).SetUint64(self.ChainID),
		uint(0),
		uint(0),
	})
	return out, errors.Wrap(err, "failed to RLP-encode transaction")
}

// "EncodeUnsigned" as "0x"-prefixed lowercase hex: the "tx_hex" of API responses.
func (self Signer) HexTx(msg eth.TxMsg) (string, error) {
	raw, err := self.EncodeUnsigned(msg)
	if err != nil {
		return "", err
	}
	return eth.HexString(raw), nil
}

func legacyTx(msg eth.TxMsg) (*types.LegacyTx, error) {
	gas, err := toUint64("gas", msg.GasLimit)
	if err != nil {
		return nil, err
	}
	nonce, err := toUint64("nonce", msg.Nonce)
	if err != nil {
		return nil, err
	}

	out := &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: orZero(msg.GasPrice),
		Gas:      gas,
		Value:    orZero(msg.Value),
		Data:     []byte(msg.Data),
	}
	if msg.To != eth.ZeroAddress {
		to := common.Address(msg.To)
		out.To = &to
	}
	return out, nil
}

func toUint64(field string, val *eth.HexUint256) (uint64, error) {
	if val == nil {
		return 0, nil
	}
	if !val.Uint256().IsUint64() {
		return 0, errors.Wrapf(ErrMalformedTx, "%v %v exceeds 64 bits", field, val.Uint256().Dec())
	}
	return val.Uint256().Uint64(), nil
}

func orZero(val *eth.HexUint256) *big.Int {
	if val == nil {
		return new(big.Int)
	}
	return val.Big()
}
