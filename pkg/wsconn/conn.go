// Package wsconn wraps an accepted websocket with a liveness state and a
// send guard so several goroutines can write to it safely.
package wsconn

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// ErrDisconnected is matched by every error returned once the peer is gone.
var ErrDisconnected = errors.New("websocket disconnected")

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// RawConn is the part of *websocket.Conn the relay needs.
type RawConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// DisconnectError carries the transport error that ended the connection.
type DisconnectError struct {
	Op  string
	Err error
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDisconnected, e.Op, e.Err)
}

func (e *DisconnectError) Unwrap() error {
	return e.Err
}

func (e *DisconnectError) Is(target error) bool {
	return target == ErrDisconnected
}

// IsUnexpectedClose reports whether the peer went away without a clean close frame.
func (e *DisconnectError) IsUnexpectedClose() bool {
	return websocket.IsUnexpectedCloseError(e.Err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// Conn is the connection handle shared between a session and the registry.
// Reads must only happen from the owning session goroutine.
type Conn struct {
	id           string
	raw          RawConn
	state        atomic.Int32
	writeTimeout time.Duration

	sendLock  sync.Mutex
	closeOnce sync.Once
}

type Option func(*Conn)

// WithWriteTimeout sets a write deadline for every send.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.writeTimeout = d
	}
}

// New wraps an accepted websocket. The handle starts in StateOpen.
func New(raw RawConn, opts ...Option) *Conn {
	c := &Conn{
		id:  uuid.NewString(),
		raw: raw,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Store(int32(StateOpen))
	return c
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) State() State {
	return State(c.state.Load())
}

func (c *Conn) IsOpen() bool {
	return c.State() == StateOpen
}

// ReceiveText blocks until the next text frame. Binary frames are returned
// with ok=false so the caller can decide to skip them.
func (c *Conn) ReceiveText() (text string, ok bool, err error) {
	if c.State() == StateClosed {
		return "", false, &DisconnectError{Op: "read", Err: errors.New("connection closed")}
	}

	mt, data, err := c.raw.ReadMessage()
	if err != nil {
		c.markClosed()
		return "", false, &DisconnectError{Op: "read", Err: err}
	}
	if mt != websocket.TextMessage {
		return "", false, nil
	}
	return string(data), true, nil
}

// SendText writes a text frame. Concurrent callers are serialized.
func (c *Conn) SendText(text string) error {
	return c.send(websocket.TextMessage, []byte(text))
}

func (c *Conn) send(mt int, data []byte) error {
	c.sendLock.Lock()
	defer c.sendLock.Unlock()

	if c.State() == StateClosed {
		return &DisconnectError{Op: "write", Err: errors.New("connection closed")}
	}

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.raw.WriteMessage(mt, data); err != nil {
		c.markClosed()
		return &DisconnectError{Op: "write", Err: err}
	}
	return nil
}

// Close closes the underlying socket once. Only the owning session calls it.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.markClosed()
		err = c.raw.Close()
	})
	return err
}

func (c *Conn) markClosed() {
	c.state.Store(int32(StateClosed))
}
