package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/purelabio/ethgate/eth"
	"github.com/purelabio/ethgate/gateway"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	alice  = eth.MustParseAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob    = eth.MustParseAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	token  = eth.MustParseAddress("0x1010101010101010101010101010101010101010")
	helper = eth.MustParseAddress("0x2020202020202020202020202020202020202020")
)

/*
JSON-RPC node holding a single 6-decimal token and ether balances. Methods
listed in "fail" answer with that error.
*/
type testNode struct {
	lock      sync.Mutex
	ether     map[eth.Address]uint64
	balances  map[eth.Address]uint64
	allowance map[[2]eth.Address]uint64
	receipts  map[eth.Hash]map[string]interface{}
	fail      map[string]*eth.RpcError
	sent      []string
}

func newTestNode() *testNode {
	return &testNode{
		ether:     map[eth.Address]uint64{},
		balances:  map[eth.Address]uint64{},
		allowance: map[[2]eth.Address]uint64{},
		receipts:  map[eth.Hash]map[string]interface{}{},
		fail:      map[string]*eth.RpcError{},
	}
}

func (self *testNode) ServeHTTP(rew http.ResponseWriter, req *http.Request) {
	var body struct {
		Id     string            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	err := json.NewDecoder(req.Body).Decode(&body)
	if err != nil {
		http.Error(rew, err.Error(), http.StatusBadRequest)
		return
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	res := map[string]interface{}{"jsonrpc": "2.0", "id": body.Id}
	rpcErr := self.fail[body.Method]
	if rpcErr != nil {
		res["error"] = rpcErr
	} else {
		result, rpcErr := self.handle(body.Method, body.Params)
		if rpcErr != nil {
			res["error"] = rpcErr
		} else {
			res["result"] = result
		}
	}
	_ = json.NewEncoder(rew).Encode(res)
}

func (self *testNode) handle(method string, params []json.RawMessage) (interface{}, *eth.RpcError) {
	switch method {
	case "eth_chainId":
		return "0x5", nil
	case "eth_gasPrice":
		return "0x3b9aca00", nil
	case "eth_estimateGas":
		return "0xcb20", nil
	case "eth_getTransactionCount":
		return "0x7", nil

	case "eth_getBalance":
		var addr eth.Address
		_ = json.Unmarshal(params[0], &addr)
		return quantity(self.ether[addr]), nil

	case "eth_call":
		var msg struct {
			To   eth.Address  `json:"to"`
			Data eth.HexBytes `json:"data"`
		}
		_ = json.Unmarshal(params[0], &msg)
		return self.call(msg.To, msg.Data)

	case "eth_sendRawTransaction":
		var raw eth.HexBytes
		_ = json.Unmarshal(params[0], &raw)
		self.sent = append(self.sent, raw.String())
		return eth.HexString(eth.Keccak256(raw)), nil

	case "eth_getTransactionReceipt":
		var hash eth.Hash
		_ = json.Unmarshal(params[0], &hash)
		receipt, ok := self.receipts[hash]
		if !ok {
			return nil, nil
		}
		return receipt, nil
	}
	return nil, &eth.RpcError{Code: -32601, Message: "method not found"}
}

func (self *testNode) call(to eth.Address, data []byte) (interface{}, *eth.RpcError) {
	if to != token || len(data) < 4 {
		return "0x", nil
	}

	arg := func(i int) eth.Address {
		var out eth.Address
		copy(out[:], data[4+32*i+12:4+32*(i+1)])
		return out
	}
	is := func(method string) bool {
		sel := gateway.Erc20Abi.Function(method).Selector
		return string(data[:4]) == string(sel[:])
	}

	switch {
	case is("decimals"):
		return word(6), nil
	case is("totalSupply"):
		return word(1e12), nil
	case is("balanceOf"):
		return word(self.balances[arg(0)]), nil
	case is("allowance"):
		return word(self.allowance[[2]eth.Address{arg(0), arg(1)}]), nil
	}
	return nil, &eth.RpcError{Code: 3, Message: "execution reverted"}
}

func quantity(val uint64) string { return fmt.Sprintf("0x%x", val) }
func word(val uint64) string     { return fmt.Sprintf("0x%064x", val) }

type testServer struct {
	node    *testNode
	metrics *Metrics
	handler http.Handler
}

// The full gateway stack over a real HTTP JSON-RPC transport.
func newTestServer(t *testing.T) *testServer {
	node := newTestNode()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	rpcUrl, err := url.Parse(srv.URL)
	require.NoError(t, err)

	ledger := gateway.RpcLedger{Trans: eth.HttpTrans{Url: *rpcUrl}}
	decimals := gateway.NewDecimalsCache(ledger, time.Hour)
	service := gateway.NewService(ledger, helper, 5, decimals)
	metrics := NewMetrics(decimals)

	return &testServer{
		node:    node,
		metrics: metrics,
		handler: NewHandler(service, metrics, zerolog.Nop()),
	}
}
