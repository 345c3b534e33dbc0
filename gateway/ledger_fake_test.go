package gateway

import (
	"bytes"
	"context"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

/*
In-memory Ledger for tests. Serves ERC-20 view calls from "tokens" by decoding
the call data. Any method can be made to fail via "fail", keyed by method name.
Records the names of all invoked methods.
*/
type fakeLedger struct {
	lock sync.Mutex

	ether    map[eth.Address]*uint256.Int
	tokens   map[eth.Address]*fakeToken
	nonce    uint64
	gasPrice uint64
	gas      uint64
	chainId  uint64
	receipts map[eth.Hash]*eth.TxReceipt
	fail     map[string]error

	calls []string
	sent  [][]byte
}

type fakeToken struct {
	decimals   uint8
	supply     *uint256.Int
	balances   map[eth.Address]*uint256.Int
	allowances map[[2]eth.Address]*uint256.Int
}

var errFakeNode = errors.New("connection refused")

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		ether:    map[eth.Address]*uint256.Int{},
		tokens:   map[eth.Address]*fakeToken{},
		nonce:    7,
		gasPrice: 1e9,
		gas:      52000,
		chainId:  1,
		receipts: map[eth.Hash]*eth.TxReceipt{},
		fail:     map[string]error{},
	}
}

func (self *fakeLedger) addToken(addr eth.Address, decimals uint8) *fakeToken {
	token := &fakeToken{
		decimals:   decimals,
		supply:     new(uint256.Int),
		balances:   map[eth.Address]*uint256.Int{},
		allowances: map[[2]eth.Address]*uint256.Int{},
	}
	self.tokens[addr] = token
	return token
}

func (self *fakeLedger) record(method string) error {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.calls = append(self.calls, method)
	return self.fail[method]
}

func (self *fakeLedger) called(method string) int {
	self.lock.Lock()
	defer self.lock.Unlock()
	var count int
	for _, val := range self.calls {
		if val == method {
			count++
		}
	}
	return count
}

func (self *fakeLedger) Balance(_ context.Context, addr eth.Address) (*uint256.Int, error) {
	err := self.record("balance")
	if err != nil {
		return nil, err
	}
	return orZeroInt(self.ether[addr]), nil
}

func (self *fakeLedger) Nonce(context.Context, eth.Address) (*uint256.Int, error) {
	err := self.record("nonce")
	if err != nil {
		return nil, err
	}
	return uint256.NewInt(self.nonce), nil
}

func (self *fakeLedger) GasPrice(context.Context) (*uint256.Int, error) {
	err := self.record("gasPrice")
	if err != nil {
		return nil, err
	}
	return uint256.NewInt(self.gasPrice), nil
}

func (self *fakeLedger) EstimateGas(context.Context, eth.TxMsg) (*uint256.Int, error) {
	err := self.record("estimateGas")
	if err != nil {
		return nil, err
	}
	return uint256.NewInt(self.gas), nil
}

func (self *fakeLedger) Call(_ context.Context, msg eth.TxMsg) ([]byte, error) {
	err := self.record("call")
	if err != nil {
		return nil, err
	}

	token := self.tokens[msg.To]
	if token == nil {
		// Like an address without code.
		return nil, nil
	}

	data := []byte(msg.Data)
	arg := func(i int) eth.Address {
		var out eth.Address
		copy(out[:], data[4+32*i+12:4+32*(i+1)])
		return out
	}

	switch {
	case hasSelector(data, "decimals"):
		return wordOf(uint256.NewInt(uint64(token.decimals))), nil
	case hasSelector(data, "totalSupply"):
		return wordOf(token.supply), nil
	case hasSelector(data, "balanceOf"):
		return wordOf(token.balances[arg(0)]), nil
	case hasSelector(data, "allowance"):
		return wordOf(token.allowances[[2]eth.Address{arg(0), arg(1)}]), nil
	}
	return nil, errors.New("execution reverted")
}

func (self *fakeLedger) SendRawTransaction(_ context.Context, raw []byte) (eth.Hash, error) {
	err := self.record("send")
	if err != nil {
		return eth.Hash{}, err
	}
	self.lock.Lock()
	self.sent = append(self.sent, raw)
	self.lock.Unlock()

	var hash eth.Hash
	copy(hash[:], eth.Keccak256(raw))
	return hash, nil
}

func (self *fakeLedger) ChainID(context.Context) (uint64, error) {
	err := self.record("chainId")
	return self.chainId, err
}

func (self *fakeLedger) Receipt(_ context.Context, hash eth.Hash) (*eth.TxReceipt, error) {
	err := self.record("receipt")
	if err != nil {
		return nil, err
	}
	return self.receipts[hash], nil
}

func hasSelector(data []byte, method string) bool {
	sel := Erc20Abi.Function(method).Selector
	return len(data) >= 4 && bytes.Equal(data[:4], sel[:])
}

func wordOf(val *uint256.Int) []byte {
	word := orZeroInt(val).Bytes32()
	return word[:]
}

func orZeroInt(val *uint256.Int) *uint256.Int {
	if val == nil {
		return new(uint256.Int)
	}
	return val
}
