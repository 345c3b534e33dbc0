package eth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Minimal JSON-RPC node. Each handler receives the decoded params and returns
either a result or an error object.
*/
type fakeNode map[string]func(params []json.RawMessage) (interface{}, *RpcError)

func (self fakeNode) ServeHTTP(rew http.ResponseWriter, req *http.Request) {
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

	res := map[string]interface{}{"jsonrpc": "2.0", "id": body.Id}
	handler := self[body.Method]
	if handler == nil {
		res["error"] = RpcError{Code: -32601, Message: "method not found"}
	} else {
		result, rpcErr := handler(body.Params)
		if rpcErr != nil {
			res["error"] = rpcErr
		} else {
			res["result"] = result
		}
	}
	_ = json.NewEncoder(rew).Encode(res)
}

func dialFake(t *testing.T, node http.Handler) Trans {
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	rpcUrl, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return HttpTrans{Url: *rpcUrl}
}

func TestHttpTransRpcMethods(t *testing.T) {
	var estimateParams json.RawMessage

	trans := dialFake(t, fakeNode{
		"eth_getBalance": func(params []json.RawMessage) (interface{}, *RpcError) {
			assert.JSONEq(t, `"0x1111111111111111111111111111111111111111"`, string(params[0]))
			assert.JSONEq(t, `"latest"`, string(params[1]))
			return "0xde0b6b3a7640000", nil
		},
		"eth_getTransactionCount": func(params []json.RawMessage) (interface{}, *RpcError) {
			assert.JSONEq(t, `"pending"`, string(params[1]))
			return "0x7", nil
		},
		"eth_gasPrice": func([]json.RawMessage) (interface{}, *RpcError) {
			return "0x3b9aca00", nil
		},
		"eth_estimateGas": func(params []json.RawMessage) (interface{}, *RpcError) {
			estimateParams = params[0]
			return "0x5208", nil
		},
		"eth_chainId": func([]json.RawMessage) (interface{}, *RpcError) {
			return "0x1", nil
		},
		"eth_sendRawTransaction": func(params []json.RawMessage) (interface{}, *RpcError) {
			assert.JSONEq(t, `"0xf86c"`, string(params[0]))
			return "0x" + word("abc"), nil
		},
	})
	ctx := context.Background()

	balance, err := EthGetBalance(ctx, trans, testAddrA)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.Dec())

	nonce, err := EthGetTransactionCount(ctx, trans, testAddrA, BlockNumberPending)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce.Uint64())

	price, err := EthGasPrice(ctx, trans)
	require.NoError(t, err)
	assert.Equal(t, uint64(1e9), price.Uint64())

	gas, err := EthEstimateGas(ctx, trans, TxMsg{From: testAddrA, To: testAddrB, Data: HexBytes{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas.Uint64())
	assert.JSONEq(t, `{
		"from": "0x1111111111111111111111111111111111111111",
		"to": "0x2222222222222222222222222222222222222222",
		"data": "0x0102"
	}`, string(estimateParams))

	chainId, err := EthChainId(ctx, trans)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), chainId)

	hash, err := EthSendRawTransaction(ctx, trans, []byte{0xf8, 0x6c})
	require.NoError(t, err)
	assert.Equal(t, "0x"+word("abc"), hash.String())
}

func TestHttpTransRpcError(t *testing.T) {
	trans := dialFake(t, fakeNode{
		"eth_estimateGas": func([]json.RawMessage) (interface{}, *RpcError) {
			return nil, &RpcError{Code: 3, Message: "execution reverted"}
		},
	})

	_, err := EthEstimateGas(context.Background(), trans, TxMsg{To: testAddrB})
	require.Error(t, err)

	var rpcErr RpcError
	require.True(t, errors.As(err, &rpcErr), "%+v", err)
	assert.Equal(t, int64(3), rpcErr.Code)
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestHttpTransReceipt(t *testing.T) {
	mined := "0x" + word("1")
	trans := dialFake(t, fakeNode{
		"eth_getTransactionReceipt": func(params []json.RawMessage) (interface{}, *RpcError) {
			var hash string
			_ = json.Unmarshal(params[0], &hash)
			if hash != mined {
				return nil, nil
			}
			return map[string]interface{}{
				"transactionHash": mined,
				"blockNumber":     "0x10",
				"gasUsed":         "0x5208",
				"status":          "0x1",
				"logs":            []interface{}{},
			}, nil
		},
	})
	ctx := context.Background()

	receipt, err := EthGetTransactionReceipt(ctx, trans, Hash{31: 2})
	require.NoError(t, err)
	assert.Nil(t, receipt)

	receipt, err = EthGetTransactionReceipt(ctx, trans, Hash{31: 1})
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, HexUint64(16), receipt.BlockNumber)
}

func TestHttpTransHttpStatus(t *testing.T) {
	trans := dialFake(t, http.HandlerFunc(func(rew http.ResponseWriter, _ *http.Request) {
		http.Error(rew, "overloaded", http.StatusServiceUnavailable)
	}))

	_, err := EthGasPrice(context.Background(), trans)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHttpTransContext(t *testing.T) {
	trans := dialFake(t, http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := EthGasPrice(ctx, trans)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "%+v", err)
}

func TestDialSchemes(t *testing.T) {
	trans, err := Dial("https://node.example", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, HttpTrans{}, trans)

	_, err = Dial("ftp://node.example", zerolog.Nop())
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	trans := WithTimeout(dialFake(t, http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})), 50*time.Millisecond)

	_, err := EthGasPrice(context.Background(), trans)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "%+v", err)

	trans = WithTimeout(dialFake(t, fakeNode{
		"eth_chainId": func([]json.RawMessage) (interface{}, *RpcError) { return "0x5", nil },
	}), time.Second)

	chainId, err := EthChainId(context.Background(), trans)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), chainId)
}

type wsTestRequest struct {
	Id     string            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

/*
WebSocket JSON-RPC node. Drops the first connection after reading one request.
On later connections, echoes the first param as the result. "test_hold" is
answered only after the next request, so responses arrive out of order.
"test_fail" answers with an RPC error.
*/
func dialWsFake(t *testing.T) (*WsTrans, *int32, chan string) {
	var conns int32
	received := make(chan string, 16)
	var lock sync.Mutex
	var open []*websocket.Conn

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(rew, req, nil)
		if err != nil {
			return
		}
		lock.Lock()
		open = append(open, conn)
		lock.Unlock()
		defer conn.Close()

		first := atomic.AddInt32(&conns, 1) == 1
		reply := func(req wsTestRequest) {
			res := map[string]interface{}{"jsonrpc": "2.0", "id": req.Id}
			if req.Method == "test_fail" {
				res["error"] = RpcError{Code: -32000, Message: "rejected"}
			} else {
				res["result"] = req.Params[0]
			}
			_ = conn.WriteJSON(res)
		}

		var held *wsTestRequest
		for {
			var req wsTestRequest
			err := conn.ReadJSON(&req)
			if err != nil {
				return
			}
			received <- req.Method
			if first {
				return
			}
			if req.Method == "test_hold" {
				held = &req
				continue
			}
			reply(req)
			if held != nil {
				reply(*held)
				held = nil
			}
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() {
		lock.Lock()
		defer lock.Unlock()
		for _, conn := range open {
			conn.Close()
		}
	})

	wsUrl, err := url.Parse("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)

	trans, err := DialWs(*wsUrl, zerolog.Nop())
	require.NoError(t, err)
	return trans, &conns, received
}

func TestWsTrans(t *testing.T) {
	trans, conns, received := dialWsFake(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out string
	err := trans.Call(ctx, &out, "test_echo", "lost")
	require.Error(t, err, "the node drops the connection")
	assert.Contains(t, err.Error(), "disconnected from RPC node")

	// Waits for the reconnect.
	err = trans.Call(ctx, &out, "test_echo", "one")
	require.NoError(t, err)
	assert.Equal(t, "one", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(conns))

	held := make(chan error, 1)
	var heldOut string
	go func() { held <- trans.Call(ctx, &heldOut, "test_hold", "first") }()

	for method := range received {
		if method == "test_hold" {
			break
		}
	}

	var secondOut string
	require.NoError(t, trans.Call(ctx, &secondOut, "test_echo", "second"))
	require.NoError(t, <-held)
	assert.Equal(t, "first", heldOut, "responses are matched by id")
	assert.Equal(t, "second", secondOut)

	err = trans.Call(ctx, &out, "test_fail", "x")
	var rpcErr RpcError
	require.True(t, errors.As(err, &rpcErr), "%+v", err)
	assert.Equal(t, "rejected", rpcErr.Message)
}

func TestDialWsRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	wsUrl, err := url.Parse("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	srv.Close()

	_, err = DialWs(*wsUrl, zerolog.Nop())
	assert.Error(t, err)
}
