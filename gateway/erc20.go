package gateway

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/purelabio/ethgate/eth"
)

/*
Binding of an ERC-20 token contract. Builds unsigned transactions for the
mutating functions and queries the view functions. Immutable; safe to share.
*/
type Erc20 struct {
	Address eth.Address
}

// Moves tokens from the sender to the recipient.
func (self Erc20) Transfer(sender, recipient eth.Address, amount *uint256.Int) eth.TxMsg {
	return callMsg(Erc20Abi, sender, self.Address, nil, "transfer", recipient, amount)
}

// Lets the spender move up to the amount on behalf of the sender.
func (self Erc20) Approve(sender, spender eth.Address, amount *uint256.Int) eth.TxMsg {
	return callMsg(Erc20Abi, sender, self.Address, nil, "approve", spender, amount)
}

// Moves tokens between "from" and "to", spending the sender's allowance.
func (self Erc20) TransferFrom(sender, from, to eth.Address, amount *uint256.Int) eth.TxMsg {
	return callMsg(Erc20Abi, sender, self.Address, nil, "transferFrom", from, to, amount)
}

func (self Erc20) BalanceOf(owner eth.Address) eth.TxMsg {
	return eth.TxMsg{To: self.Address, Data: mustEncode(Erc20Abi, "balanceOf", owner)}
}

func (self Erc20) Allowance(owner, spender eth.Address) eth.TxMsg {
	return eth.TxMsg{To: self.Address, Data: mustEncode(Erc20Abi, "allowance", owner, spender)}
}

func (self Erc20) TotalSupply() eth.TxMsg {
	return eth.TxMsg{To: self.Address, Data: mustEncode(Erc20Abi, "totalSupply")}
}

func (self Erc20) Decimals() eth.TxMsg {
	return eth.TxMsg{To: self.Address, Data: mustEncode(Erc20Abi, "decimals")}
}

func (self Erc20) QueryBalanceOf(ctx context.Context, ledger Ledger, owner eth.Address) (*uint256.Int, error) {
	var out uint256.Int
	err := query(ctx, ledger, Erc20Abi, self.Address, "balanceOf", []interface{}{owner}, &out)
	return &out, err
}

func (self Erc20) QueryAllowance(ctx context.Context, ledger Ledger, owner, spender eth.Address) (*uint256.Int, error) {
	var out uint256.Int
	err := query(ctx, ledger, Erc20Abi, self.Address, "allowance", []interface{}{owner, spender}, &out)
	return &out, err
}

func (self Erc20) QueryTotalSupply(ctx context.Context, ledger Ledger) (*uint256.Int, error) {
	var out uint256.Int
	err := query(ctx, ledger, Erc20Abi, self.Address, "totalSupply", nil, &out)
	return &out, err
}

func (self Erc20) QueryDecimals(ctx context.Context, ledger Ledger) (uint8, error) {
	var out uint8
	err := query(ctx, ledger, Erc20Abi, self.Address, "decimals", nil, &out)
	return out, err
}
