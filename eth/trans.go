package eth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const jsonRpcVersion = "2.0"

/*
Common interface implemented by RPC transports. Obtained via "Dial" and passed
to the various RPC functions.
*/
type Trans interface {
	/**
	Should make an RPC request and decode the response body into `out`, which
	must be a pointer. Returns a request error, an "RpcError" reported by the
	node, or a decoding error. Must respect the context's deadline.
	*/
	Call(ctx context.Context, out interface{}, method string, params ...interface{}) error
}

/*
Chooses the appropriate transport for the given URL. For websockets, waits until
connected. The logger is used for background logging of persistent transports.
*/
func Dial(rpcPath string, logger zerolog.Logger) (Trans, error) {
	rpcUrl, err := url.Parse(rpcPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch rpcUrl.Scheme {
	case "ws", "wss":
		return DialWs(*rpcUrl, logger)
	case "http", "https":
		return HttpTrans{Url: *rpcUrl}, nil
	}

	return nil, errors.Errorf("unsupported RPC path: %v", rpcPath)
}

// Bounds every call of the given transport by the timeout.
func WithTimeout(trans Trans, timeout time.Duration) Trans {
	return timeoutTrans{trans, timeout}
}

type timeoutTrans struct {
	trans   Trans
	timeout time.Duration
}

func (self timeoutTrans) Call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, self.timeout)
	defer cancel()
	return self.trans.Call(ctx, out, method, params...)
}

/*
Stateless HTTP transport. Uses ".Client" when provided, otherwise a client with
a 30s timeout.
*/
type HttpTrans struct {
	Url    url.URL
	Client *http.Client
}

var defaultHttpClient = &http.Client{Timeout: defaultHttpTimeout}

func (self HttpTrans) client() *http.Client {
	if self.Client != nil {
		return self.Client
	}
	return defaultHttpClient
}

// Makes an RPC call.
func (self HttpTrans) Call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(rpcRequest{
		Jsonrpc: jsonRpcVersion,
		Id:      nextId(),
		Method:  method,
		Params:  normalizeParams(params),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, self.Url.String(), &body)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := self.client().Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		bytes, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return errors.Errorf("RPC error: %s\n%s", res.Status, bytes)
	}

	rpcRes := rpcResponse{Result: out}
	err = json.NewDecoder(res.Body).Decode(&rpcRes)
	if err != nil {
		return errors.Wrap(err, "failed to decode RPC response")
	}
	// Note: `error((*RpcError)(nil)) != nil` !!!
	if rpcRes.Error != nil {
		return errors.WithStack(*rpcRes.Error)
	}
	return nil
}

/*
Stateful websocket transport with automatic reconnect. Calls made while
disconnected wait for the connection or for their context, whichever comes
first. The ".ReconnectInterval" property defaults to 1s, can be modified before
the first disconnect.
*/
type WsTrans struct {
	Url               url.URL
	Logger            zerolog.Logger
	ReconnectInterval time.Duration

	connLock  sync.Mutex
	conn      *websocket.Conn
	connected chan struct{}

	writeLock sync.Mutex

	pendingLock sync.Mutex
	pending     map[string]chan wsResult
}

type wsResult struct {
	val json.RawMessage
	err error
}

/*
Attempts to establish a websocket connection to the RPC node at the given URL.
Waits until the connection is established, then starts a background loop that
receives responses and reconnects when the connection drops. The loop runs for
the lifetime of the process.
*/
func DialWs(url url.URL, logger zerolog.Logger) (*WsTrans, error) {
	transport := &WsTrans{
		Url:               url,
		Logger:            logger.With().Str("rpc", url.Host).Logger(),
		ReconnectInterval: defaultReconnectInterval,
		connected:         make(chan struct{}),
		pending:           map[string]chan wsResult{},
	}

	err := transport.connect()
	if err != nil {
		return nil, err
	}

	go transport.run()
	return transport, nil
}

func (self *WsTrans) run() {
	for {
		err := self.receiveLoop()
		self.Logger.Warn().Err(err).Msg("disconnected from RPC node")

		for {
			time.Sleep(self.ReconnectInterval)
			err := self.connect()
			if err == nil {
				self.Logger.Info().Msg("reconnected to RPC node")
				break
			}
			self.Logger.Warn().Err(err).Dur("retry_in", self.ReconnectInterval).Msg("failed to reconnect to RPC node")
		}
	}
}

func (self *WsTrans) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(self.Url.String(), nil)
	if err != nil {
		return errors.WithStack(err)
	}

	self.connLock.Lock()
	self.conn = conn
	close(self.connected)
	self.connLock.Unlock()
	return nil
}

func (self *WsTrans) receiveLoop() error {
	self.connLock.Lock()
	conn := self.conn
	self.connLock.Unlock()

	defer func() {
		self.connLock.Lock()
		self.connected = make(chan struct{})
		self.connLock.Unlock()
		conn.Close()
		self.failPending(errors.New("disconnected from RPC node"))
	}()

	/**
	Note: we receive and unmarshal separately. A receiving failure indicates
	a disconnect. An unmarshaling error indicates a malformed message, but
	not necessarily a connection problem.
	*/
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var body json.RawMessage
		res := rpcResponse{Result: &body}
		err = json.Unmarshal(payload, &res)
		if err != nil {
			self.Logger.Warn().Err(err).Msg("failed to decode RPC message")
			continue
		}

		var id string
		err = json.Unmarshal(res.Id, &id)
		if err != nil || id == "" {
			// Notifications carry no ID. This transport never subscribes, so
			// they're unexpected.
			self.Logger.Debug().RawJSON("message", payload).Msg("ignoring RPC message without ID")
			continue
		}

		// Note: `error((*RpcError)(nil)) != nil` !!!
		if res.Error != nil {
			err = errors.WithStack(*res.Error)
		}
		self.resolve(id, wsResult{val: body, err: err})
	}
}

// Returns a channel that becomes closed when the transport is connected.
func (self *WsTrans) Connected() chan struct{} {
	self.connLock.Lock()
	defer self.connLock.Unlock()
	return self.connected
}

// Makes an RPC call.
func (self *WsTrans) Call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-self.Connected():
	}

	id := nextId()
	result := make(chan wsResult, 1)
	self.pendingLock.Lock()
	self.pending[id] = result
	self.pendingLock.Unlock()

	defer func() {
		self.pendingLock.Lock()
		delete(self.pending, id)
		self.pendingLock.Unlock()
	}()

	err := self.send(id, method, params...)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case res := <-result:
		if res.err != nil {
			return res.err
		}
		if len(res.val) == 0 || out == nil {
			return nil
		}
		return errors.WithStack(json.Unmarshal(res.val, out))
	}
}

func (self *WsTrans) send(id string, method string, params ...interface{}) error {
	self.connLock.Lock()
	conn := self.conn
	self.connLock.Unlock()

	self.writeLock.Lock()
	defer self.writeLock.Unlock()
	err := conn.WriteJSON(rpcRequest{
		Jsonrpc: jsonRpcVersion,
		Id:      id,
		Method:  method,
		Params:  normalizeParams(params),
	})
	return errors.WithStack(err)
}

func (self *WsTrans) resolve(id string, res wsResult) {
	self.pendingLock.Lock()
	result := self.pending[id]
	delete(self.pending, id)
	self.pendingLock.Unlock()

	if result != nil {
		result <- res
	}
}

func (self *WsTrans) failPending(err error) {
	self.pendingLock.Lock()
	defer self.pendingLock.Unlock()

	for id, result := range self.pending {
		result <- wsResult{err: err}
		delete(self.pending, id)
	}
}

var lastId uint64

// IDs only need to be unique among in-flight requests of one process.
func nextId() string {
	return strconv.FormatUint(atomic.AddUint64(&lastId, 1), 10)
}

// Nodes reject `"params": null`.
func normalizeParams(params []interface{}) []interface{} {
	if params == nil {
		return []interface{}{}
	}
	return params
}
