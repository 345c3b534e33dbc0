package gateway

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

/*
Pre-flight guards. They compare the current chain state with what a transaction
is about to need and fail early with a readable error. Advisory only: the state
may change before the transaction is mined.

Equality passes. Ledger failures are returned as "*UpstreamError", never as a
guard failure.
*/

// Fails with "ErrInsufficientBalance" when the ether balance is below required.
func CheckBalance(ctx context.Context, ledger Ledger, addr eth.Address, required *uint256.Int) error {
	balance, err := ledger.Balance(ctx, addr)
	if err != nil {
		return upstream("balance", err)
	}
	if balance.Lt(required) {
		return errors.Wrapf(ErrInsufficientBalance, "%v holds %v wei, required %v",
			addr, balance.Dec(), required.Dec())
	}
	return nil
}

// Fails with "ErrInsufficientTokenBalance" when the token balance is below required.
func CheckTokenBalance(ctx context.Context, ledger Ledger, token, owner eth.Address, required *uint256.Int) error {
	balance, err := Erc20{token}.QueryBalanceOf(ctx, ledger, owner)
	if err != nil {
		return err
	}
	if balance.Lt(required) {
		return errors.Wrapf(ErrInsufficientTokenBalance, "%v holds %v of token %v, required %v",
			owner, balance.Dec(), token, required.Dec())
	}
	return nil
}

// Fails with "ErrInsufficientAllowance" when the spender may move less than required.
func CheckAllowance(ctx context.Context, ledger Ledger, token, owner, spender eth.Address, required *uint256.Int) error {
	allowance, err := Erc20{token}.QueryAllowance(ctx, ledger, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Lt(required) {
		return errors.Wrapf(ErrInsufficientAllowance, "%v allows %v to spend %v of token %v, required %v",
			owner, spender, allowance.Dec(), token, required.Dec())
	}
	return nil
}

/*
Returns the current allowance, failing with "ErrZeroAllowance" when there is
none. Used where the allowance itself is the amount being moved.
*/
func RequireAllowance(ctx context.Context, ledger Ledger, token, owner, spender eth.Address) (*uint256.Int, error) {
	allowance, err := Erc20{token}.QueryAllowance(ctx, ledger, owner, spender)
	if err != nil {
		return nil, err
	}
	if allowance.IsZero() {
		return nil, errors.Wrapf(ErrZeroAllowance, "%v has not approved %v to spend token %v",
			owner, spender, token)
	}
	return allowance, nil
}
