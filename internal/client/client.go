package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ibaimoya/sockchat/internal/transport"
)

// ANSI accents for local status lines, kept from the original client.
const (
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorReset  = "\x1b[0m"
)

// Client is the companion chat process. It dials the server, sends the
// username handshake, then runs two loops concurrently: a listener that
// prints server lines and an input loop that forwards console lines
// verbatim (so LOGOUT, BAN alice, SHUTDOWN, and chat text all pass
// through unchanged).
type Client struct {
	host     string
	port     int
	username string
	log      *zerolog.Logger

	in  io.Reader
	out io.Writer
}

// New builds a client reading from stdin and printing to stdout.
func New(host string, port int, username string, logger *zerolog.Logger) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		log:      logger,
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

// WithIO overrides the console streams; used by tests.
func (c *Client) WithIO(in io.Reader, out io.Writer) *Client {
	c.in = in
	c.out = out
	return c
}

// Run drives the Connecting -> Handshaking -> Running -> Disconnected
// state machine and returns nil on an orderly disconnect.
func (c *Client) Run(ctx context.Context) error {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	conn := transport.NewConn(nc)
	defer conn.Close()

	if err := conn.WriteLine(c.username); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	c.status(fmt.Sprintf("connected to %s as %s", addr, c.username))

	listenerDone := make(chan error, 1)
	go func() { listenerDone <- c.listen(conn) }()

	inputDone := make(chan error, 1)
	go func() { inputDone <- c.forwardInput(conn) }()

	select {
	case err := <-listenerDone:
		// Server is gone. Stop without waiting on a blocked stdin read;
		// the input goroutine dies with the process.
		_ = conn.Close()
		c.status("disconnected from server")
		return err
	case err := <-inputDone:
		// Local logout or console EOF. Close the socket to unblock the
		// listener and let it drain before returning.
		_ = conn.Close()
		<-listenerDone
		return err
	case <-ctx.Done():
		_ = conn.Close()
		c.status("interrupted, closing connection")
		return nil
	}
}

// listen prints every server line until the stream ends. End-of-stream
// is an orderly stop, never a crash.
func (c *Client) listen(conn *transport.Conn) error {
	for {
		line, err := conn.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			c.log.Warn().Err(err).Msg("read from server failed")
			return nil
		}
		fmt.Fprintln(c.out, line)
	}
}

// forwardInput sends console lines verbatim. A local LOGOUT still goes to
// the server first, then stops this loop.
func (c *Client) forwardInput(conn *transport.Conn) error {
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		line := sc.Text()
		if err := conn.WriteLine(line); err != nil {
			c.log.Warn().Err(err).Msg("send failed")
			return nil
		}
		if strings.EqualFold(strings.TrimSpace(line), "LOGOUT") {
			c.status("disconnecting from the chat...")
			return nil
		}
	}
	return sc.Err()
}

func (c *Client) status(msg string) {
	fmt.Fprintf(c.out, "%s[*]%s %s%s\n", colorYellow, colorCyan, msg, colorReset)
}
