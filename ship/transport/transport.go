// Package transport implements the websocket client (C1): resolve,
// connect, handshake, and framed binary read/write against the upstream
// state-history feed. gorilla/websocket is the only binary-websocket
// client library present in the retrieved corpus (teacher go.mod), so it
// is the grounded choice here.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// maxMessageBytes is the inbound frame size cap. Spec §4.1 requires at
// least 2^36 bytes of headroom; gorilla/websocket's SetReadLimit takes an
// int64, so the cap is set to the full 2^36 the spec names rather than a
// smaller, more "reasonable" default.
const maxMessageBytes = 1 << 36

// Error is the single opaque transport error kind (spec §4.1, §7).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Transport is the C1 contract (spec §4.1).
type Transport interface {
	Connect(ctx context.Context, host, port string) error
	Send(b []byte) error
	Read() ([]byte, error)
	AsyncRead(ctx context.Context) <-chan ReadResult
	Close()
}

// ReadResult is delivered to AsyncRead's channel, modeling the spec's
// async_read callback as a channel send instead of a literal closure
// (spec §9: "model them as an explicit state machine driven by a
// scheduler-posted message").
type ReadResult struct {
	Data []byte
	Err  error
}

type wsTransport struct {
	conn *websocket.Conn
	host string
}

// New creates an unconnected transport handle.
func New() Transport {
	return &wsTransport{}
}

// Connect resolves host:port and performs the websocket handshake against
// path "/" (spec §4.1, §6). Resolution and connection are both
// synchronous from the controller's point of view, matching the source's
// "it should be fine to call connection ... synchronously ... it's only
// one thread" rationale (original_source/ship_receiver_plugin.cpp).
func (t *wsTransport) Connect(ctx context.Context, host, port string) error {
	if _, _, err := net.SplitHostPort(net.JoinHostPort(host, port)); err != nil {
		return wrap("resolve", err)
	}
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(host, port), Path: "/"}
	dialer := websocket.Dialer{
		HandshakeTimeout: 0, // upstream is assumed reachable on a local/trusted network; no read timeouts anywhere (spec §5)
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return wrap("connect", err)
	}
	conn.SetReadLimit(maxMessageBytes)
	t.conn = conn
	t.host = host
	return nil
}

func (t *wsTransport) Send(b []byte) error {
	if t.conn == nil {
		return wrap("send", fmt.Errorf("not connected"))
	}
	return wrap("send", t.conn.WriteMessage(websocket.BinaryMessage, b))
}

func (t *wsTransport) Read() ([]byte, error) {
	if t.conn == nil {
		return nil, wrap("read", fmt.Errorf("not connected"))
	}
	_, b, err := t.conn.ReadMessage()
	if err != nil {
		return nil, wrap("read", err)
	}
	return b, nil
}

// AsyncRead re-arms a single read and delivers its result on the returned
// channel, which is closed after the send. Callers arrange the next call
// themselves (spec §4.4 start_read loop), keeping recursion out of this
// package entirely.
func (t *wsTransport) AsyncRead(ctx context.Context) <-chan ReadResult {
	out := make(chan ReadResult, 1)
	go func() {
		defer close(out)
		b, err := t.Read()
		select {
		case out <- ReadResult{Data: b, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// Close attempts a graceful close but never fails user-visibly (spec
// §4.1: "close attempts a graceful close ... but never fails
// user-visibly").
func (t *wsTransport) Close() {
	if t.conn == nil {
		return
	}
	_ = t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	_ = t.conn.Close()
}
