package eth

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var null = []byte{'n', 'u', 'l', 'l'}

// Version of "[]byte" that uses "0x"-prefixed hex encoding and decoding.
type HexBytes []byte

/*
Decodes the provided string. Zero-length input is ok. Otherwise, it must be
prefixed with "0x".
*/
func ParseHexBytes(input string) (HexBytes, error) {
	var out HexBytes
	err := out.UnmarshalText(stringToBytesUnsafe(input))
	return out, err
}

/*
Implements "encoding.Marshaler". Uses hex encoding prefixed with "0x".
*/
func (self HexBytes) MarshalText() ([]byte, error) {
	return HexEncode([]byte(self)), nil
}

/*
Implements "encoding.Unmarshaler". Empty input is ok. Otherwise, it must be
prefixed with "0x".
*/
func (self *HexBytes) UnmarshalText(input []byte) error {
	out, err := HexDecode(input)
	if err != nil {
		return err
	}
	*self = HexBytes(out)
	return nil
}

/*
Implements "json.Marshaler". A zero-length value encodes as "0x", which is how
nodes represent empty call data.
*/
func (self HexBytes) MarshalJSON() ([]byte, error) {
	return hexEncodeQuoted(self), nil
}

/*
Implements "fmt.Stringer". Follows the same rules as "MarshalText".
*/
func (self HexBytes) String() string {
	return HexString(self)
}

/*
An unsigned 256-bit integer: the native width of EVM quantities. Token amounts,
wei values, gas and gas prices are all represented this way. Encodes as "0x"
hex without leading zeros, as expected by RPC nodes. Decodes "0x" hex, decimal
strings and bare JSON numbers; anything wider than 256 bits is rejected rather
than truncated.
*/
type HexUint256 uint256.Int

// Copies the provided integer. Nil input produces nil output.
func NewHexUint256(val *uint256.Int) *HexUint256 {
	if val == nil {
		return nil
	}
	return (*HexUint256)(val.Clone())
}

// Shortcut for small constants.
func HexUint256From(val uint64) *HexUint256 {
	return (*HexUint256)(uint256.NewInt(val))
}

// Returns the underlying integer without copying. Nil-safe.
func (self *HexUint256) Uint256() *uint256.Int {
	return (*uint256.Int)(self)
}

// Returns a copy as "*big.Int". Nil-safe: nil converts to nil.
func (self *HexUint256) Big() *big.Int {
	if self == nil {
		return nil
	}
	return (*uint256.Int)(self).ToBig()
}

/*
Implements "encoding.Marshaler". Uses hex encoding prefixed with "0x".
*/
func (self *HexUint256) MarshalText() ([]byte, error) {
	return []byte((*uint256.Int)(self).Hex()), nil
}

/*
Implements "encoding.Unmarshaler". Input with the "0x" prefix is decoded as
hex, otherwise as decimal.
*/
func (self *HexUint256) UnmarshalText(input []byte) error {
	if has0x(input) {
		return self.setHex(input[2:])
	}
	return self.setDecimal(input)
}

/*
Implements "json.Unmarshaler". Accepts JSON strings (see "UnmarshalText") and
non-negative JSON integers.
*/
func (self *HexUint256) UnmarshalJSON(input []byte) error {
	if len(input) > 0 && input[0] == '"' {
		var text string
		err := json.Unmarshal(input, &text)
		if err != nil {
			return errors.WithStack(err)
		}
		return self.UnmarshalText(stringToBytesUnsafe(text))
	}
	return self.setDecimal(input)
}

func (self *HexUint256) setHex(digits []byte) error {
	if len(digits) == 0 {
		return errors.New(`failed to decode "0x" as a hex integer: no digits`)
	}
	if !isHexDigits(digits) {
		return errors.Errorf("failed to decode %q as a hex integer", digits)
	}
	num, ok := new(big.Int).SetString(bytesToMutableString(digits), 16)
	if !ok {
		return errors.Errorf("failed to decode %q as a hex integer", digits)
	}
	out, overflow := uint256.FromBig(num)
	if overflow {
		return errors.Errorf("hex integer 0x%s overflows 256 bits", digits)
	}
	*self = HexUint256(*out)
	return nil
}

func (self *HexUint256) setDecimal(digits []byte) error {
	if !isDigits(digits) {
		return errors.Errorf("failed to decode %q as a decimal integer", digits)
	}
	out, err := uint256.FromDecimal(trimLeadingZeros(bytesToMutableString(digits)))
	if err != nil {
		return errors.Wrapf(err, "decimal integer %s overflows 256 bits", digits)
	}
	*self = HexUint256(*out)
	return nil
}

/*
Implements "fmt.Stringer". Follows the same rules as "MarshalText". A nil
pointer prints as "<nil>".
*/
func (self *HexUint256) String() string {
	if self == nil {
		return "<nil>"
	}
	return (*uint256.Int)(self).Hex()
}

// Version of `uint64` that encodes/decodes in base 16 with the "0x" prefix.
type HexUint64 uint64

/*
Implements "encoding.Marshaler". Uses hex encoding prefixed with "0x".
*/
func (self HexUint64) MarshalText() ([]byte, error) {
	out := make([]byte, 0, 16)
	out = append(out, '0', 'x')
	return strconv.AppendUint(out, uint64(self), 16), nil
}

/*
Implements "encoding.Unmarshaler". The input must be in base 16, prefixed with
"0x".
*/
func (self *HexUint64) UnmarshalText(input []byte) error {
	input, err := drop0x(input)
	if err != nil {
		return err
	}
	out, err := strconv.ParseUint(bytesToMutableString(input), 16, 64)
	if err != nil {
		return errors.WithStack(err)
	}
	*self = HexUint64(out)
	return nil
}

/*
Implements "fmt.Stringer". Follows the same rules as "MarshalText".
*/
func (self HexUint64) String() string {
	bytes, _ := self.MarshalText()
	return bytesToMutableString(bytes)
}

/*
Compact representation of an Ethereum address. Uses hex-encoding and
hex-decoding with the mandatory "0x" prefix. Mixed-case (checksummed) input is
accepted; output is always lowercase.

To avoid gotchas, a zero-initialized Address{} JSON-encodes as "null" and
text-encodes as "".
*/
type Address [20]byte

/*
Decodes the provided string. Zero-length input is ok. Otherwise, it must be
prefixed with "0x".
*/
func ParseAddress(input string) (Address, error) {
	var out Address
	err := out.UnmarshalText(stringToBytesUnsafe(input))
	return out, err
}

/*
Decodes the provided string. Panics on error. Convenient for initializing
global variables.
*/
func MustParseAddress(input string) Address {
	out, err := ParseAddress(input)
	if err != nil {
		panic(err)
	}
	return out
}

/*
Implements "encoding.Marshaler". A zero-initialized value encodes as "",
otherwise uses hex encoding prefixed with "0x".
*/
func (self Address) MarshalText() ([]byte, error) {
	if self == ZeroAddress {
		return nil, nil
	}
	return HexEncode(self[:]), nil
}

/*
Implements "encoding.Unmarshaler". Empty input is ok. Otherwise, it must be
prefixed with "0x".
*/
func (self *Address) UnmarshalText(input []byte) error {
	if len(input) == 0 {
		*self = Address{}
		return nil
	}
	return HexDecodeTo(self[:], input)
}

/*
Implements "json.Marshaler". A zero-initialized value encodes as "null".
Otherwise, it encodes as a hex string, prefixed with "0x".
*/
func (self Address) MarshalJSON() ([]byte, error) {
	if self == ZeroAddress {
		return null, nil
	}
	return hexEncodeQuoted(self[:]), nil
}

/*
Implements "fmt.Stringer". Uses hex encoding prefixed with "0x". Unlike
"MarshalText" and "MarshalJSON", doesn't have special rules for zero-initialized
values.
*/
func (self Address) String() string {
	return HexString(self[:])
}

/*
Usually represents a transaction hash. Same encoding rules as Address: a
zero-initialized Hash{} JSON-encodes as "null".
*/
type Hash [32]byte

/*
Decodes the provided string. Zero-length input is ok. Otherwise, it must be
prefixed with "0x".
*/
func ParseHash(input string) (Hash, error) {
	var out Hash
	err := out.UnmarshalText(stringToBytesUnsafe(input))
	return out, err
}

/*
Implements "encoding.Marshaler". A zero-initialized value encodes as "",
otherwise uses hex encoding prefixed with "0x".
*/
func (self Hash) MarshalText() ([]byte, error) {
	if self == ZeroHash {
		return nil, nil
	}
	return HexEncode(self[:]), nil
}

/*
Implements "encoding.Unmarshaler". Empty input is ok. Otherwise, it must be
prefixed with "0x".
*/
func (self *Hash) UnmarshalText(input []byte) error {
	if len(input) == 0 {
		*self = Hash{}
		return nil
	}
	return HexDecodeTo(self[:], input)
}

/*
Implements "json.Marshaler". A zero-initialized value encodes as "null".
Otherwise, it encodes as a hex string, prefixed with "0x".
*/
func (self Hash) MarshalJSON() ([]byte, error) {
	if self == ZeroHash {
		return null, nil
	}
	return hexEncodeQuoted(self[:]), nil
}

// Implements "fmt.Stringer". Always hex-encodes, even when zero.
func (self Hash) String() string {
	return HexString(self[:])
}

// https://www.jsonrpc.org/specification#request_object
type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Id      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// https://www.jsonrpc.org/specification#response_object
type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"` // assign `*someType` to decode as that type
	Error   *RpcError       `json:"error"`
}

/*
Represents an error that arrives over JSON RPC. See
https://www.jsonrpc.org/specification#error_object for details.
*/
type RpcError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Implements "error". Includes the RPC error details if possible.
func (self RpcError) Error() string {
	str := "RPC error " + strconv.FormatInt(self.Code, 10) + ": " + self.Message
	if len(self.Data) > 0 {
		str += " Additional details: " + string(self.Data)
	}
	return str
}

/*
Represents an unsigned Ethereum transaction, or the input to a non-mutating
contract call. Passed to the various RPC methods and returned to gateway
clients. Gas limit, nonce and gas price are optional until the transaction is
prepared.
*/
type TxMsg struct {
	From     Address     `json:"from"`
	To       Address     `json:"to"`
	Data     HexBytes    `json:"data"`
	Value    *HexUint256 `json:"value"`
	GasLimit *HexUint256 `json:"gas"`
	Nonce    *HexUint256 `json:"nonce"`
	GasPrice *HexUint256 `json:"gasPrice"`
}

// True if gas limit, nonce and gas price are all present.
func (self TxMsg) IsPrepared() bool {
	return self.GasLimit != nil && self.Nonce != nil && self.GasPrice != nil
}

// Represents a transaction receipt.
type TxReceipt struct {
	TransactionHash   Hash        `json:"transactionHash"`
	TransactionIndex  HexUint64   `json:"transactionIndex"`
	BlockHash         Hash        `json:"blockHash"`
	BlockNumber       HexUint64   `json:"blockNumber"`
	From              Address     `json:"from"`
	To                Address     `json:"to"`
	ContractAddress   Address     `json:"contractAddress"`
	GasUsed           HexUint64   `json:"gasUsed"`
	CumulativeGasUsed HexUint64   `json:"cumulativeGasUsed"`
	EffectiveGasPrice *HexUint256 `json:"effectiveGasPrice"`
	Status            HexUint64   `json:"status"`
	Logs              []LogEntry  `json:"logs"`
}

// True if the transaction was executed without reverting.
func (self TxReceipt) Succeeded() bool {
	return self.Status == 1
}

/*
A log entry attached to a receipt. Original definition in "go-ethereum":
https://github.com/ethereum/go-ethereum/blob/0ae462fb80b8a95e38af08d894ea9ecf9e45f2e7/core/types/log.go#L31
*/
type LogEntry struct {
	Address         Address   `json:"address"`
	Topics          []Hash    `json:"topics"`
	Data            HexBytes  `json:"data"`
	BlockHash       Hash      `json:"blockHash"`
	BlockNumber     HexUint64 `json:"blockNumber"`
	TransactionHash Hash      `json:"transactionHash"`
	LogIndex        HexUint64 `json:"logIndex"`
	Removed         bool      `json:"removed"`
}

/*
Stand-in for anything representing a block number. Makes the signatures of
RPC functions more readable.

RPC methods accept block numbers as hex-encoded numbers or the magic strings
"earliest", "latest", "pending". See the "BlockNumberX" constants.
*/
type BlockNumber interface{}

func isDigits(input []byte) bool {
	if len(input) == 0 {
		return false
	}
	for _, char := range input {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

func isHexDigits(input []byte) bool {
	for _, char := range input {
		switch {
		case char >= '0' && char <= '9', char >= 'a' && char <= 'f', char >= 'A' && char <= 'F':
		default:
			return false
		}
	}
	return true
}

func trimLeadingZeros(digits string) string {
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	return digits
}
