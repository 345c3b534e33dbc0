package eth

/*
See https://docs.soliditylang.org/en/latest/abi-spec.html
*/

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Size of an EVM word: every ABI-encoded value is padded to a multiple of it.
const wordSize = 256 / 8

/*
Abi represents the function definitions of a Solidity contract, decoded from a
JSON ABI definition. Constructors, events, errors, fallback and receive entries
are skipped: the gateway only encodes calls.

Defining this type as a slice keeps it a 1-to-1 match with the JSON. Lookups
are linear, which is dominated by the cost of encoding anyway.
*/
type Abi []AbiFunction

/*
Parses an ABI definition. The input must be a JSON ABI array, as produced by a
Solidity compiler. Panics on failure. Convenient for initializing global
variables on startup; see the "gen_abi" tool.
*/
func MustParseAbiJson(input string) Abi {
	var abi Abi
	err := abi.UnmarshalJSON(stringToBytesUnsafe(input))
	if err != nil {
		panic(err)
	}
	return abi
}

// Attempts to find the function by name. Boolean indicates success or failure.
func (self Abi) MaybeFunction(name string) (AbiFunction, bool) {
	for _, entry := range self {
		if entry.Name == name {
			return entry, true
		}
	}
	return AbiFunction{}, false
}

// Finds the function by name. Panics if not found.
func (self Abi) Function(name string) AbiFunction {
	out, ok := self.MaybeFunction(name)
	if !ok {
		panic(fmt.Sprintf("function %v not found in ABI definition", name))
	}
	return out
}

/*
Implements "json.Unmarshaler". Decodes a JSON ABI definition, keeping only
entries of type "function" (or untyped entries, which older compilers emit for
functions).
*/
func (self *Abi) UnmarshalJSON(input []byte) error {
	var chunks []json.RawMessage

	err := json.Unmarshal(input, &chunks)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, chunk := range chunks {
		var tag struct{ Type string }
		err := json.Unmarshal(chunk, &tag)
		if err != nil {
			return errors.WithStack(err)
		}
		if tag.Type != "function" && tag.Type != "" {
			continue
		}

		var fun AbiFunction
		err = json.Unmarshal(chunk, &fun)
		if err != nil {
			return errors.Wrap(err, "failed to decode ABI function")
		}
		*self = append(*self, fun)
	}
	return nil
}

/*
Represents a contract function. Useful for ABI-encoding arguments and
ABI-decoding return values. Usually obtained via "Abi.Function()".
*/
type AbiFunction struct {
	Type            string     `json:"type"` // "function" | ""
	Name            string     `json:"name"`
	Inputs          []AbiParam `json:"inputs"`
	Outputs         []AbiParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
	Selector        [4]byte    `json:"-"`
}

/*
ABI-encodes the arguments, which must exactly match this function's parameter
signature. Prepends the function's ".Selector". The result should be used as a
transaction payload, i.e. "TxMsg.Data". Returns an error in case of arity or
type mismatch.
*/
func (self AbiFunction) Marshal(args ...interface{}) ([]byte, error) {
	out, err := abiAppendTuple(self.Selector[:], self.Inputs, args)
	return out, errors.Wrapf(err, `failed to encode arguments of %q`, self.Signature())
}

/*
ABI-decodes raw bytes into the provided Go values, which must exactly match this
function's return signature. The outputs must be pointers. Returns an error in
case of arity mismatch, type mismatch, or malformed input.
*/
func (self AbiFunction) Unmarshal(input []byte, outs ...interface{}) error {
	err := AbiUnmarshalTuple(input, self.Outputs, outs)
	return errors.Wrapf(err, `failed to decode output of %q`, self.Signature())
}

// Canonical signature, such as "transfer(address,uint256)".
func (self AbiFunction) Signature() string {
	return string(abiSignature(self.Name, self.Inputs))
}

// True if calling this function can't modify chain state.
func (self AbiFunction) IsView() bool {
	return self.StateMutability == "view" || self.StateMutability == "pure"
}

// True if the function accepts ether along with the call.
func (self AbiFunction) IsPayable() bool {
	return self.StateMutability == "payable"
}

/*
Implements "json.Unmarshaler". In addition to parsing the JSON structure, this
precomputes the function's ".Selector", which prefixes encoded calls.
*/
func (self *AbiFunction) UnmarshalJSON(input []byte) error {
	type plain AbiFunction
	var out plain

	err := json.Unmarshal(input, &out)
	if err != nil {
		return err
	}

	sum := Keccak256(abiSignature(out.Name, out.Inputs))
	out.Selector = [4]byte{sum[0], sum[1], sum[2], sum[3]}
	*self = AbiFunction(out)
	return nil
}

/*
Represents a function parameter or return value. Part of an ABI definition,
used for encoding and decoding.
*/
type AbiParam struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	AbiType AbiType `json:"-"`
}

// Implements "json.Unmarshaler".
func (self *AbiParam) UnmarshalJSON(input []byte) error {
	var plain struct {
		Name string
		Type string
	}

	err := json.Unmarshal(input, &plain)
	if err != nil {
		return err
	}

	abiType, err := ParseAbiType(plain.Type)
	if err != nil {
		return err
	}

	*self = AbiParam{Name: plain.Name, Type: plain.Type, AbiType: abiType}
	return nil
}

// Legacy Keccak-256, the hash used throughout Ethereum.
func Keccak256(input []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(input)
	return hash.Sum(nil)
}

func abiSignature(name string, params []AbiParam) []byte {
	var buf []byte

	buf = append(buf, name...)
	buf = append(buf, '(')
	for i, param := range params {
		buf = append(buf, param.Type...)
		if i < len(params)-1 {
			buf = append(buf, ',')
		}
	}
	buf = append(buf, ')')
	return buf
}

/*
Allows a user-defined type to implement its own ABI encoding. Invoked by
ABI-encoding functions.
*/
type AbiMarshaler interface {
	EthAbiMarshal() ([]byte, error)
}

/*
Represents a broad category of EVM types. Used internally for ABI encoding and
decoding.
*/
type AbiKind byte

const (
	AbiKindBool AbiKind = iota + 1
	AbiKindUint
	AbiKindAddress
	AbiKindDenseArray // `string` and all variants of `bytes`
	AbiKindSparseArray
)

// Implements "fmt.Stringer".
func (self AbiKind) String() string {
	switch self {
	case AbiKindBool:
		return "AbiKindBool"
	case AbiKindUint:
		return "AbiKindUint"
	case AbiKindAddress:
		return "AbiKindAddress"
	case AbiKindDenseArray:
		return "AbiKindDenseArray"
	case AbiKindSparseArray:
		return "AbiKindSparseArray"
	default:
		return ""
	}
}

// Details about a concrete EVM type. Used internally for ABI encoding and decoding.
type AbiType struct {
	Type     string
	Kind     AbiKind
	Bits     int      // AbiKindUint only
	ArrayLen int      // can be 0 when FixedLen == true
	FixedLen bool     // implies Kind == AbiKindDenseArray || Kind == AbiKindSparseArray
	Elem     *AbiType // must be present if Kind == AbiKindSparseArray
}

/*
Determines how many bytes are needed to ABI-encode a value of this type. Returns
-1 for dynamically-sized types. Otherwise, it's a multiple of 32.
*/
func (self AbiType) Size() int {
	switch self.Kind {
	case AbiKindDenseArray:
		if !self.FixedLen {
			return -1
		}
		return wordSize
	case AbiKindSparseArray:
		if !self.FixedLen {
			return -1
		}
		size := self.Elem.Size()
		if size >= 0 {
			return size * self.ArrayLen
		}
		return -1
	default:
		return wordSize
	}
}

// True if a value of this type has a fixed size and is ABI-encoded inline,
// without a "heap" reference.
func (self AbiType) IsStaticallySized() bool {
	return self.Size() >= 0
}

var (
	abiUintReg       = regexp.MustCompile(`^uint(\d*)$`)
	abiByteArrayReg  = regexp.MustCompile(`^bytes(\d+)$`)
	abiFixedArrayReg = regexp.MustCompile(`^(.+)\[(\d+)\]$`)
	abiArrayReg      = regexp.MustCompile(`^(.+)\[\]$`)
)

/*
Accepts a name of an EVM type, such as "uint256", "bytes32" or "address[]", and
returns its details as an AbiType. Signed integers, fixed-point numbers,
functions and tuples are not supported.
*/
func ParseAbiType(typeName string) (AbiType, error) {
	switch {
	case typeName == "bool":
		return AbiType{Type: typeName, Kind: AbiKindBool}, nil

	case typeName == "address":
		return AbiType{Type: typeName, Kind: AbiKindAddress}, nil

	case typeName == "string" || typeName == "bytes":
		return AbiType{Type: typeName, Kind: AbiKindDenseArray}, nil

	case abiByteArrayReg.MatchString(typeName):
		match := abiByteArrayReg.FindStringSubmatch(typeName)
		length, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil || length == 0 || length > wordSize {
			return AbiType{}, errors.Errorf(`failed to parse %q as Solidity type`, typeName)
		}
		return AbiType{Type: typeName, Kind: AbiKindDenseArray, ArrayLen: int(length), FixedLen: true}, nil

	case abiFixedArrayReg.MatchString(typeName):
		match := abiFixedArrayReg.FindStringSubmatch(typeName)
		length, err := strconv.ParseUint(match[2], 10, 64)
		if err != nil {
			return AbiType{}, errors.Wrapf(err, `failed to parse %q as Solidity type`, typeName)
		}
		elemType, err := ParseAbiType(match[1])
		if err != nil {
			return AbiType{}, errors.Wrapf(err, `failed to parse %q as Solidity type`, typeName)
		}
		return AbiType{Type: typeName, Kind: AbiKindSparseArray, ArrayLen: int(length), FixedLen: true, Elem: &elemType}, nil

	case abiArrayReg.MatchString(typeName):
		match := abiArrayReg.FindStringSubmatch(typeName)
		elemType, err := ParseAbiType(match[1])
		if err != nil {
			return AbiType{}, errors.Wrapf(err, `failed to parse %q as Solidity type`, typeName)
		}
		return AbiType{Type: typeName, Kind: AbiKindSparseArray, Elem: &elemType}, nil

	case abiUintReg.MatchString(typeName):
		match := abiUintReg.FindStringSubmatch(typeName)
		bits := 256
		if match[1] != "" {
			parsed, err := strconv.Atoi(match[1])
			if err != nil || parsed == 0 || parsed > 256 || parsed%8 != 0 {
				return AbiType{}, errors.Errorf(`failed to parse %q as Solidity type`, typeName)
			}
			bits = parsed
		}
		return AbiType{Type: typeName, Kind: AbiKindUint, Bits: bits}, nil

	default:
		return AbiType{}, errors.Errorf(`failed to parse %q as Solidity type`, typeName)
	}
}

/*
ABI-encodes an arbitrary Go value, using the provided spec. Returns an error in
case of type mismatch.
*/
func AbiMarshal(atype AbiType, input interface{}) ([]byte, error) {
	return abiAppend(nil, atype, reflect.ValueOf(input))
}

func abiAppend(out []byte, atype AbiType, val reflect.Value) ([]byte, error) {
	if !val.IsValid() {
		return out, errors.Errorf(`can't encode nil as Solidity type %q`, atype.Type)
	}
	val = deref(val)
	if val.Kind() == reflect.Ptr && val.IsNil() {
		return out, errors.Errorf(`can't encode nil %v as Solidity type %q`, val.Type(), atype.Type)
	}
	input := val.Interface()

	mar, ok := input.(AbiMarshaler)
	if ok {
		chunk, err := mar.EthAbiMarshal()
		return append(out, chunk...), err
	}

	typ := val.Type()

	switch atype.Kind {
	case AbiKindBool:
		if typ.Kind() == reflect.Bool {
			var word [wordSize]byte
			if val.Bool() {
				word[wordSize-1] = 1
			}
			return append(out, word[:]...), nil
		}
		return out, errors.New(typeMismatch(atype.Type, typ))

	case AbiKindUint:
		switch typ.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return abiAppendUint(out, atype, uint256.NewInt(val.Uint()))
		}

		switch input := input.(type) {
		case *uint256.Int:
			return abiAppendUint(out, atype, input)
		case *HexUint256:
			return abiAppendUint(out, atype, input.Uint256())
		case *big.Int:
			if input.Sign() < 0 {
				return out, errors.Errorf("negative value %v for Solidity type %q", input, atype.Type)
			}
			num, overflow := uint256.FromBig(input)
			if overflow {
				return out, errors.Errorf("%v overflows %v", input, atype.Type)
			}
			return abiAppendUint(out, atype, num)
		}

		return out, errors.New(typeMismatch(atype.Type, typ))

	case AbiKindAddress:
		if typ.ConvertibleTo(addressType) {
			input := val.Convert(addressType).Interface().(Address)
			return appendLeftPadded(out, input[:]), nil
		}
		return out, errors.New(typeMismatch(atype.Type, typ))

	case AbiKindDenseArray:
		if atype.FixedLen {
			length := atype.ArrayLen
			if typ.Kind() == reflect.Array &&
				typ.Elem().Kind() == reflect.Uint8 &&
				typ.Len() == length {
				slice := reflect.MakeSlice(byteSliceType, length, length)
				reflect.Copy(slice, val)
				return appendRightPadded(out, slice.Bytes()), nil
			}
			return out, errors.New(typeMismatch(atype.Type, typ))
		}

		var input []byte
		if val.Kind() == reflect.String {
			input = stringToBytesUnsafe(val.String())
		} else if typ.ConvertibleTo(byteSliceType) {
			input = val.Convert(byteSliceType).Bytes()
		} else {
			return out, errors.New(typeMismatch(atype.Type, typ))
		}

		out = abiAppendUint64(out, uint64(len(input)))
		return appendRightPadded(out, input), nil

	case AbiKindSparseArray:
		// Note: for sparse arrays, this is element count, not byte count
		var length int
		if atype.FixedLen {
			length = atype.ArrayLen
			if !(typ.Kind() == reflect.Array && typ.Len() == length) {
				return out, errors.New(typeMismatch(atype.Type, typ))
			}
		} else {
			if typ.Kind() != reflect.Slice {
				return out, errors.New(typeMismatch(atype.Type, typ))
			}
			length = val.Len()
			out = abiAppendUint64(out, uint64(length))
		}

		if atype.Elem.IsStaticallySized() {
			for i := 0; i < length; i++ {
				var err error
				out, err = abiAppend(out, *atype.Elem, val.Index(i))
				if err != nil {
					return out, errors.Wrapf(err, `failed to encode element %v of %q`, i, atype.Type)
				}
			}
			return out, nil
		}

		var heap []byte
		heapOffset := length * wordSize

		for i := 0; i < length; i++ {
			buf, err := abiAppend(nil, *atype.Elem, val.Index(i))
			if err != nil {
				return out, errors.Wrapf(err, `failed to encode element %v of %q`, i, atype.Type)
			}
			out = abiAppendUint64(out, uint64(heapOffset))
			heap = append(heap, buf...)
			heapOffset += len(buf)
		}

		return append(out, heap...), nil

	default:
		return out, errors.New(typeMismatch(atype.Type, typ))
	}
}

/*
ABI-decodes arbitrary data into a Go value, using the provided spec. The output
must be a pointer. Supported outputs: "*bool", "*Address", fixed-size unsigned
integers, "*uint256.Int", "*big.Int". Returns an error in case of type
mismatch, overflow, or malformed input.
*/
func AbiUnmarshal(input []byte, atype AbiType, out interface{}) error {
	if len(input) < wordSize {
		return errors.New(lenMismatch(wordSize, len(input)))
	}
	word := input[:wordSize]

	switch atype.Kind {
	case AbiKindBool:
		out, ok := out.(*bool)
		if !ok {
			return errors.New(typeMismatch(atype.Type, reflect.TypeOf(out)))
		}
		num := new(uint256.Int).SetBytes(word)
		if !num.IsUint64() || num.Uint64() > 1 {
			return errors.Errorf("malformed bool input: %x", word)
		}
		*out = num.Uint64() == 1
		return nil

	case AbiKindAddress:
		out, ok := out.(*Address)
		if !ok {
			return errors.New(typeMismatch(atype.Type, reflect.TypeOf(out)))
		}
		copy(out[:], word[wordSize-len(out):])
		return nil

	case AbiKindUint:
		num := new(uint256.Int).SetBytes(word)
		if num.BitLen() > atype.Bits {
			return errors.Errorf("malformed %v input: %v has %v bits", atype.Type, num, num.BitLen())
		}

		switch out := out.(type) {
		case *uint256.Int:
			out.Set(num)
			return nil
		case *big.Int:
			out.Set(num.ToBig())
			return nil
		}

		val := reflect.ValueOf(out)
		if val.Kind() != reflect.Ptr || val.IsNil() {
			return errors.Errorf(`can't unmarshal into non-pointer of type %T`, out)
		}
		elem := val.Elem()
		switch elem.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if num.BitLen() > elem.Type().Bits() {
				return errors.Errorf("%v overflows %v", num, elem.Type())
			}
			elem.SetUint(num.Uint64())
			return nil
		}
		return errors.New(typeMismatch(atype.Type, elem.Type()))
	}

	return errors.Errorf(`ABI-decoding of Solidity type %q is not supported`, atype.Type)
}

/*
ABI-encodes multiple values, typically parameters to a function call. Returns an
error in case of arity mismatch, type mismatch, or malformed input.
*/
func AbiMarshalTuple(params []AbiParam, args ...interface{}) ([]byte, error) {
	return abiAppendTuple(nil, params, args)
}

func abiAppendTuple(out []byte, params []AbiParam, inputs []interface{}) ([]byte, error) {
	if len(params) != len(inputs) {
		return out, errors.Errorf(`arity mismatch: expected %v inputs, got %v`, len(params), len(inputs))
	}

	// Copy, so that appending to the head never aliases a caller's buffer,
	// such as the function selector.
	out = append([]byte(nil), out...)

	heapOffset := 0
	for _, param := range params {
		size := param.AbiType.Size()
		if size >= 0 {
			heapOffset += size
		} else {
			heapOffset += wordSize
		}
	}

	var heap []byte

	for i, param := range params {
		buf, err := abiAppend(nil, param.AbiType, reflect.ValueOf(inputs[i]))
		if err != nil {
			return out, errors.Wrapf(err, `failed to encode param %v of type %q`, i, param.Type)
		}

		if len(buf)%wordSize != 0 {
			return out, errors.Errorf(`internal error while encoding param %v of type %q: expected output to be %v-byte-aligned, found length %v`, i, param.Type, wordSize, len(buf))
		}

		size := param.AbiType.Size()
		if size >= 0 {
			if len(buf) != size {
				return out, errors.Errorf(`internal error while encoding param %v of type %q: expected output size to be %v bytes, found %v bytes`, i, param.Type, size, len(buf))
			}
			out = append(out, buf...)
		} else {
			out = abiAppendUint64(out, uint64(heapOffset))
			heap = append(heap, buf...)
			heapOffset += len(buf)
		}
	}

	return append(out, heap...), nil
}

/*
ABI-decodes multiple statically-sized values, typically return values from a
view function. The outputs must be pointers. Returns an error in case of arity
mismatch, type mismatch, or malformed input.
*/
func AbiUnmarshalTuple(input []byte, params []AbiParam, outs []interface{}) error {
	if len(params) != len(outs) {
		return errors.Errorf(`arity mismatch: expected %v outputs, got %v`, len(params), len(outs))
	}

	offset := 0
	for i, param := range params {
		size := param.AbiType.Size()
		if size < 0 {
			return errors.Errorf(`ABI-decoding of dynamic type %q is not supported`, param.Type)
		}
		if len(input) < offset+size {
			return errors.New(lenMismatch(offset+size, len(input)))
		}
		err := AbiUnmarshal(input[offset:offset+size], param.AbiType, outs[i])
		if err != nil {
			return errors.Wrapf(err, `failed to unmarshal param %v of type %q`, i, param.Type)
		}
		offset += size
	}
	return nil
}

var (
	addressType   = reflect.TypeOf(Address{})
	byteSliceType = reflect.TypeOf([]byte(nil))
)

func typeMismatch(expected string, actual reflect.Type) string {
	return fmt.Sprintf(`type mismatch: Solidity type %q, Go type %q`, expected, actual)
}

func lenMismatch(expected, actual int) string {
	return fmt.Sprintf(`length mismatch: expected at least %v bytes, got %v`, expected, actual)
}

func abiPaddingDelta(length int) int {
	if length%wordSize == 0 {
		return 0
	}
	return wordSize - length%wordSize
}

func appendLeftPadded(out []byte, buf []byte) []byte {
	for delta := abiPaddingDelta(len(buf)); delta > 0; delta-- {
		out = append(out, 0)
	}
	return append(out, buf...)
}

func appendRightPadded(out []byte, buf []byte) []byte {
	out = append(out, buf...)
	for delta := abiPaddingDelta(len(buf)); delta > 0; delta-- {
		out = append(out, 0)
	}
	return out
}

func abiAppendUint64(out []byte, num uint64) []byte {
	var word [wordSize]byte
	binary.BigEndian.PutUint64(word[wordSize-8:], num)
	return append(out, word[:]...)
}

func abiAppendUint(out []byte, atype AbiType, num *uint256.Int) ([]byte, error) {
	if num.BitLen() > atype.Bits {
		return out, errors.Errorf("%v overflows %v", num.Dec(), atype.Type)
	}
	word := num.Bytes32()
	return append(out, word[:]...), nil
}

// Dereferences pointers, stopping at types with a dedicated encoding.
func deref(val reflect.Value) reflect.Value {
	for val.Kind() == reflect.Ptr && !val.IsNil() {
		switch val.Interface().(type) {
		case *uint256.Int, *HexUint256, *big.Int:
			return val
		}
		val = val.Elem()
	}
	return val
}
