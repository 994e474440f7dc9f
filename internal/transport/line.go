package transport

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Error marks a peer whose socket is broken. Callers treat it as "this
// peer is gone" and tear the session down instead of propagating.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "transport: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Conn frames one bidirectional byte stream into newline-delimited UTF-8
// text. Writes are serialized so concurrent broadcasts cannot interleave
// inside a single line.
type Conn struct {
	raw net.Conn
	r   *bufio.Reader

	wmu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established network connection.
func NewConn(raw net.Conn) *Conn {
	return &Conn{raw: raw, r: bufio.NewReader(raw)}
}

// ReadLine blocks for the next line, stripped of its terminator.
// io.EOF means the peer closed in an orderly way; a locally closed
// connection is reported the same way so shutdown reads stay quiet.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return "", io.EOF
		}
		// A partial final line without a terminator still counts.
		if errors.Is(err, io.EOF) && strings.TrimRight(line, "\r\n") != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WriteLine sends one line, appending the terminator. Failures are wrapped
// in *Error so callers can tell a broken peer from other failures.
func (c *Conn) WriteLine(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := c.raw.Write([]byte(line + "\n")); err != nil {
		return &Error{Op: "write", Err: err}
	}
	return nil
}

// SetReadDeadline bounds the next ReadLine; zero clears the deadline.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.raw.SetReadDeadline(t)
}

// RemoteAddr reports the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Close shuts the underlying connection down. Safe to call any number of
// times; repeat calls return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}
