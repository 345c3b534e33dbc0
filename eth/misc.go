package eth

import (
	"time"
	"unsafe"
)

// "Magic" words understood by RPC methods that expect a block number.
const (
	BlockNumberEarliest = "earliest"
	BlockNumberLatest   = "latest"
	BlockNumberPending  = "pending"
)

// Zero-initialized arrays for equality comparisons.
var (
	ZeroAddress Address
	ZeroHash    Hash
)

var (
	// Determines the default reconnect interval of long-lived RPC transports,
	// such as WsTrans. Configurable on per-transport basis.
	defaultReconnectInterval = time.Second

	// Used by HttpTrans when no client is provided.
	defaultHttpTimeout = 30 * time.Second
)

/*
Reinterprets a byte slice as a string, saving an allocation.
Borrowed from the standard library. Reasonably safe.
*/
func bytesToMutableString(bytes []byte) string {
	return *(*string)(unsafe.Pointer(&bytes))
}

/*
Returns a byte slice backed by the provided string. Mutations are reflected in
the source string, unless it's backed by constant storage, in which case they
trigger a segfault. Should be safe as long as the bytes are treated as
read-only.
*/
func stringToBytesUnsafe(str string) []byte {
	return unsafe.Slice(unsafe.StringData(str), len(str))
}
