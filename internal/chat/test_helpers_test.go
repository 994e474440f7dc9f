package chat

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ibaimoya/sockchat/internal/config"
	"github.com/ibaimoya/sockchat/internal/log"
	"github.com/ibaimoya/sockchat/internal/transport"
)

// newTestServer binds an ephemeral port and runs the accept loop. The
// Serve result is delivered on the returned channel.
func newTestServer(t *testing.T) (*Server, <-chan error) {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.HandshakeTimeout = 2 * time.Second

	srv := NewServer(cfg, log.Nop(), nil)
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(context.Background()) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return srv, serveErr
}

type testClient struct {
	t    *testing.T
	conn *transport.Conn
}

// dial connects and performs the username handshake.
func dial(t *testing.T, srv *Server, username string) *testClient {
	t.Helper()

	nc, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := transport.NewConn(nc)
	t.Cleanup(func() { _ = conn.Close() })

	if err := conn.WriteLine(username); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(line string) {
	c.t.Helper()
	if err := c.conn.WriteLine(line); err != nil {
		c.t.Fatalf("send %q: %v", line, err)
	}
}

func (c *testClient) readLine(timeout time.Duration) (string, error) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})
	return c.conn.ReadLine()
}

// mustRead returns the next line, failing the test if it does not arrive
// or does not contain every expected substring.
func (c *testClient) mustRead(contains ...string) string {
	c.t.Helper()

	line, err := c.readLine(2 * time.Second)
	if err != nil {
		c.t.Fatalf("expected a line containing %v, got error %v", contains, err)
	}
	for _, want := range contains {
		if !strings.Contains(line, want) {
			c.t.Fatalf("line %q does not contain %q", line, want)
		}
	}
	return line
}

// expectSilence fails if any line arrives within the probe window.
func (c *testClient) expectSilence() {
	c.t.Helper()

	if line, err := c.readLine(150 * time.Millisecond); err == nil {
		c.t.Fatalf("unexpected line %q", line)
	}
}

// waitForSessions polls the registry until it holds n live sessions.
func waitForSessions(t *testing.T, srv *Server, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Registry().Len() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d sessions, have %d", n, srv.Registry().Len())
}
