package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ibaimoya/sockchat/internal/config"
	"github.com/ibaimoya/sockchat/internal/proto"
	"github.com/ibaimoya/sockchat/internal/store"
	"github.com/ibaimoya/sockchat/internal/transport"
)

// Server accepts chat clients over TCP and relays lines between them.
// One goroutine runs the accept loop; every connected client gets its own
// handler goroutine, unblocked on shutdown by closing its connection.
type Server struct {
	cfg      config.Config
	log      *zerolog.Logger
	registry *Registry
	audit    store.AuditStore

	ln net.Listener

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error

	wg sync.WaitGroup
}

// NewServer constructs a server. A nil audit store disables auditing.
func NewServer(cfg config.Config, logger *zerolog.Logger, audit store.AuditStore) *Server {
	if audit == nil {
		audit = store.Nop()
	}
	return &Server{
		cfg:      cfg,
		log:      logger,
		registry: NewRegistry(),
		audit:    audit,
		closed:   make(chan struct{}),
	}
}

// Registry exposes the live session table, read-only use intended.
func (s *Server) Registry() *Registry { return s.registry }

// Listen binds the configured TCP address. A bind failure is fatal for
// the caller; the server never retries it.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return nil
}

// Addr reports the bound listen address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the accept loop until shutdown or a fatal accept error.
// It returns nil on orderly shutdown, after every handler has exited.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Shutdown()
		case <-s.closed:
		}
	}()

	defer s.wg.Wait()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
			}
			s.log.Error().Err(err).Msg("accept failed")
			_ = s.Shutdown()
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn performs the username handshake and, if it succeeds, runs
// the session loop. Handshake failures abandon only this connection.
func (s *Server) handleConn(nc net.Conn) {
	defer s.wg.Done()

	logger := s.log.With().
		Str("conn_id", uuid.NewString()).
		Str("remote_addr", nc.RemoteAddr().String()).
		Logger()

	conn := transport.NewConn(nc)

	if s.cfg.HandshakeTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	}
	line, err := conn.ReadLine()
	if err != nil {
		logger.Debug().Err(err).Msg("connection dropped before handshake")
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	username := strings.TrimSpace(line)
	if username == "" {
		// An empty handshake is an orderly disconnect, not an error.
		_ = conn.Close()
		return
	}

	sess, err := s.registry.Add(username, conn)
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			_ = conn.WriteLine(fmt.Sprintf("username %s is already in use", username))
			logger.Warn().Str("username", username).Msg("duplicate username rejected")
			s.recordEvent(store.EventRejected, 0, username, "")
		} else {
			logger.Debug().Err(err).Msg("handshake rejected")
		}
		_ = conn.Close()
		return
	}

	slog := logger.With().
		Int64("session_id", sess.ID).
		Str("username", sess.Username).
		Logger()
	slog.Info().Msg("client joined")
	s.recordEvent(store.EventJoin, sess.ID, sess.Username, "")
	s.Broadcast(proto.ChatMessage{
		SenderID: sess.ID,
		Type:     proto.TypeNotice,
		Body:     sess.Username + " has joined",
	})

	s.serveSession(&slog, sess)
}

// serveSession reads protocol lines until end-of-stream, logout, or
// shutdown, dispatching each one.
func (s *Server) serveSession(logger *zerolog.Logger, sess *Session) {
	for {
		line, err := sess.conn.ReadLine()
		if err != nil {
			select {
			case <-s.closed:
				// Shutdown closed the socket under us; nothing to clean.
				return
			default:
			}
			// Abrupt disconnect: remove silently, no departure notice.
			s.teardown(sess)
			logger.Info().Msg("client disconnected")
			s.recordEvent(store.EventDisconnect, sess.ID, sess.Username, "")
			return
		}

		cmd := proto.ParseLine(line)
		switch cmd.Kind {
		case proto.CommandNone:
			// Blank lines are dropped.

		case proto.CommandLogout:
			s.Broadcast(proto.ChatMessage{
				SenderID: sess.ID,
				Type:     proto.TypeLogout,
				Body:     sess.Username + " has left the chat",
			})
			s.teardown(sess)
			logger.Info().Msg("client logged out")
			s.recordEvent(store.EventLogout, sess.ID, sess.Username, "")
			return

		case proto.CommandBan:
			s.handleBan(logger, sess, cmd.Arg)

		case proto.CommandUnban:
			s.handleUnban(logger, sess, cmd.Arg)

		case proto.CommandWho:
			names := s.registry.Usernames()
			sort.Strings(names)
			s.reply(logger, sess, "connected users: "+strings.Join(names, ", "))

		case proto.CommandShutdown:
			logger.Info().Msg("shutdown requested")
			s.Broadcast(proto.ChatMessage{
				SenderID: sess.ID,
				Type:     proto.TypeShutdown,
				Body:     "server is shutting down",
			})
			s.recordEvent(store.EventShutdown, sess.ID, sess.Username, "")
			_ = s.Shutdown()
			return

		case proto.CommandChat:
			s.Broadcast(proto.ChatMessage{
				SenderID: sess.ID,
				Type:     proto.TypeMessage,
				Body:     cmd.Text,
			})
		}
	}
}

func (s *Server) handleBan(logger *zerolog.Logger, sess *Session, target string) {
	if target == "" {
		s.reply(logger, sess, "usage: BAN <username>")
		return
	}
	if err := sess.Ban(target); err != nil {
		s.reply(logger, sess, err.Error())
		return
	}
	logger.Info().Str("target", target).Msg("user banned")
	s.recordEvent(store.EventBan, sess.ID, sess.Username, target)
	s.Broadcast(proto.ChatMessage{
		SenderID: sess.ID,
		Type:     proto.TypeNotice,
		Body:     fmt.Sprintf("%s has banned %s", sess.Username, target),
	})
}

func (s *Server) handleUnban(logger *zerolog.Logger, sess *Session, target string) {
	if target == "" {
		s.reply(logger, sess, "usage: UNBAN <username>")
		return
	}
	if err := sess.Unban(target); err != nil {
		s.reply(logger, sess, err.Error())
		return
	}
	logger.Info().Str("target", target).Msg("user unbanned")
	s.recordEvent(store.EventUnban, sess.ID, sess.Username, target)
	s.Broadcast(proto.ChatMessage{
		SenderID: sess.ID,
		Type:     proto.TypeNotice,
		Body:     fmt.Sprintf("%s has unbanned %s", sess.Username, target),
	})
}

// reply sends a private line to one session. A failed write is logged;
// the session's own reader will observe the broken socket shortly.
func (s *Server) reply(logger *zerolog.Logger, sess *Session, text string) {
	if err := sess.Send(text); err != nil {
		logger.Warn().Err(err).Msg("private reply failed")
	}
}

// teardown removes the session from the registry and closes its socket.
func (s *Server) teardown(sess *Session) {
	s.registry.Remove(sess.Username)
	_ = sess.Close()
}

// Shutdown stops the accept loop, closes every session, and closes the
// listener, collecting close errors. Idempotent: concurrent and repeat
// calls share the first outcome and never double-close.
func (s *Server) Shutdown() error {
	s.closeOnce.Do(func() {
		close(s.closed)

		var errs []error
		for _, sess := range s.registry.Snapshot() {
			s.registry.Remove(sess.Username)
			if err := sess.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close session %s: %w", sess.Username, err))
			}
		}
		if s.ln != nil {
			if err := s.ln.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close listener: %w", err))
			}
		}

		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.log.Error().Err(s.closeErr).Msg("shutdown finished with errors")
		} else {
			s.log.Info().Msg("shutdown complete")
		}
	})
	return s.closeErr
}

// recordEvent writes one audit record, best effort.
func (s *Server) recordEvent(kind store.EventKind, sessionID int64, username, target string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev := &store.Event{Kind: kind, SessionID: sessionID, Username: username, Target: target}
	if err := s.audit.RecordEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("audit write failed")
	}
}
