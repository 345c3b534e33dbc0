package gateway

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

// Share of a total, in whole percent.
type Percentage uint8

/*
Binding of the DisperseCollect helper contract, which splits ether or tokens
across recipients, or gathers them from contributors, in one transaction. Token
operations require the token holders to have approved the helper as a spender.
*/
type DisperseCollect struct {
	Address eth.Address
}

// Sends the attached ether to the recipients, in the given amounts.
func (self DisperseCollect) DisperseEther(sender eth.Address, recipients []eth.Address, values []*uint256.Int, value *uint256.Int) eth.TxMsg {
	return callMsg(DisperseCollectAbi, sender, self.Address, eth.NewHexUint256(value),
		"disperseEther", recipients, values)
}

// Splits the attached ether between the recipients by percentage.
func (self DisperseCollect) DisperseEtherByPercent(sender eth.Address, recipients []eth.Address, percentages []Percentage, value *uint256.Int) eth.TxMsg {
	return callMsg(DisperseCollectAbi, sender, self.Address, eth.NewHexUint256(value),
		"disperseEtherByPercent", recipients, percentages)
}

// Moves the sender's tokens to the recipients, in the given amounts.
func (self DisperseCollect) DisperseToken(sender, token eth.Address, recipients []eth.Address, values []*uint256.Int) eth.TxMsg {
	return callMsg(DisperseCollectAbi, sender, self.Address, nil,
		"disperseToken", token, recipients, values)
}

// Splits the sender's allowance to the helper between the recipients by percentage.
func (self DisperseCollect) DisperseTokenByPercent(sender, token eth.Address, recipients []eth.Address, percentages []Percentage) eth.TxMsg {
	return callMsg(DisperseCollectAbi, sender, self.Address, nil,
		"disperseTokenByPercent", token, recipients, percentages)
}

// Forwards the attached ether to the recipient.
func (self DisperseCollect) CollectEther(sender, recipient eth.Address, value *uint256.Int) eth.TxMsg {
	return callMsg(DisperseCollectAbi, sender, self.Address, eth.NewHexUint256(value),
		"collectEther", recipient)
}

// Pulls tokens from each contributor to the recipient, in the given amounts.
func (self DisperseCollect) CollectToken(sender, token, recipient eth.Address, contributors []eth.Address, values []*uint256.Int) eth.TxMsg {
	return callMsg(DisperseCollectAbi, sender, self.Address, nil,
		"collectToken", token, recipient, contributors, values)
}

/*
Rejects percentages that add up to more than 100. A total below 100 is allowed:
the remainder stays with the sender.
*/
func ValidatePercentages(percentages []Percentage) error {
	var sum int
	for _, val := range percentages {
		sum += int(val)
	}
	if sum > 100 {
		return errors.Wrapf(ErrPercentageOverflow, "total is %d%%", sum)
	}
	return nil
}

/*
Validates a list of addresses with the matching list of amounts or
percentages: both non-empty, of equal length, and without zero addresses.
*/
func ValidateRecipients(name string, addrs []eth.Address, count int) error {
	if len(addrs) == 0 {
		return errors.Wrapf(ErrInvalidInput, "%v must not be empty", name)
	}
	if len(addrs) != count {
		return errors.Wrapf(ErrInvalidInput, "got %d %v and %d values", len(addrs), name, count)
	}
	for i, addr := range addrs {
		if addr == eth.ZeroAddress {
			return errors.Wrapf(ErrInvalidInput, "%v[%d] is missing or zero", name, i)
		}
	}
	return nil
}

// Total of the amounts. Fails with "eth.ErrMalformedAmount" on overflow.
func Sum(values []*uint256.Int) (*uint256.Int, error) {
	out := new(uint256.Int)
	for _, val := range values {
		var overflow bool
		out, overflow = new(uint256.Int).AddOverflow(out, val)
		if overflow {
			return nil, errors.Wrap(eth.ErrMalformedAmount, "total overflows 256 bits")
		}
	}
	return out, nil
}
