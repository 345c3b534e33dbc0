package gateway

import (
	"github.com/pkg/errors"
)

/*
Sentinel errors. Returned wrapped, with details, so always compare via
"errors.Is".
*/
var (
	// Any failure of the ledger: transport, node rejection, malformed output.
	ErrUpstream = errors.New("upstream failure")

	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientTokenBalance = subError("insufficient token balance", ErrInsufficientBalance)
	ErrInsufficientAllowance    = errors.New("insufficient allowance")
	ErrZeroAllowance            = subError("no allowance granted", ErrInsufficientAllowance)
	ErrPercentageOverflow       = errors.New("percentages add up to more than 100")
	ErrInvalidKey               = errors.New("invalid private key")
	ErrMalformedTx              = errors.New("malformed transaction")
	ErrInvalidInput             = errors.New("invalid input")
)

/*
Failure of an operation against the ledger. The message of the underlying
error, usually coming from the node, is preserved verbatim.
*/
type UpstreamError struct {
	Op  string
	Err error
}

// Implements "error".
func (self *UpstreamError) Error() string {
	return self.Op + ": " + self.Err.Error()
}

// Supports "errors.Unwrap".
func (self *UpstreamError) Unwrap() error { return self.Err }

// Makes "errors.Is(err, ErrUpstream)" true for every upstream error.
func (self *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&UpstreamError{Op: op, Err: err})
}

/*
Panic value of transaction builders when call arguments don't match the ABI
definition. This is a bug in the calling code rather than a runtime condition;
it's never returned as an error.
*/
type EncodingError struct {
	Method string
	Err    error
}

// Implements "error".
func (self *EncodingError) Error() string {
	return "failed to encode call of " + self.Method + ": " + self.Err.Error()
}

// Supports "errors.Unwrap".
func (self *EncodingError) Unwrap() error { return self.Err }

type kindError struct {
	msg  string
	kind error
}

func subError(msg string, kind error) error { return &kindError{msg, kind} }

func (self *kindError) Error() string        { return self.msg }
func (self *kindError) Is(target error) bool { return target == self.kind }
