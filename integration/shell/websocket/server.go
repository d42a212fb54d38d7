package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/logger"
)

// SessionFactory creates the bridge for a new connection. When the connection
// ends the server closes the bridge, which aborts the session's pending tasks,
// and then calls release if it is not nil.
type SessionFactory[Ev, VM any] func(ctx context.Context) (b *bridge.Bridge[Ev, VM], release func(), err error)

// Option configures a Server.
type Option func(*options)

type options struct {
	cfg         Config
	logger      *slog.Logger
	checkOrigin func(r *http.Request) bool
}

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger sets the connection logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOriginCheck sets the function that accepts or rejects the Origin of an
// upgrade request.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(o *options) {
		o.checkOrigin = fn
	}
}

// Server is an http.Handler that upgrades requests to WebSocket and serves a
// bridge session on each connection.
type Server[Ev, VM any] struct {
	newSession SessionFactory[Ev, VM]
	upgrader   websocket.Upgrader
	cfg        Config
	logger     *slog.Logger
}

// New creates a Server.
func New[Ev, VM any](newSession SessionFactory[Ev, VM], opts ...Option) *Server[Ev, VM] {
	o := options{cfg: DefaultConfig(), logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.checkOrigin == nil && o.cfg.AllowAnyOrigin {
		o.checkOrigin = func(*http.Request) bool { return true }
	}

	return &Server[Ev, VM]{
		newSession: newSession,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   o.cfg.ReadBufferSize,
			WriteBufferSize:  o.cfg.WriteBufferSize,
			HandshakeTimeout: o.cfg.HandshakeTimeout,
			CheckOrigin:      o.checkOrigin,
		},
		cfg:    o.cfg,
		logger: o.logger,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server[Ev, VM]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.DebugContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	if err := s.serve(r.Context(), conn); err != nil {
		s.logger.WarnContext(r.Context(), "websocket session ended with error", logger.Error(err))
	}
}

func (s *Server[Ev, VM]) serve(ctx context.Context, conn *websocket.Conn) error {
	b, release, err := s.newSession(ctx)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable"),
			time.Now().Add(s.cfg.WriteTimeout))
		return fmt.Errorf("create session: %w", err)
	}
	if release != nil {
		defer release()
	}
	defer func() {
		if err := b.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close session bridge", logger.Error(err))
		}
	}()

	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}

	g, ctx := errgroup.WithContext(ctx)
	sess := &session[Ev, VM]{
		bridge: b,
		format: b.Format(),
		outbox: make(chan Frame, max(s.cfg.OutboxSize, 1)),
		ctx:    ctx,
		logger: s.logger,
	}

	b.ProcessEffects(func(requests []byte) {
		sess.send(Frame{Type: FrameEffects, Payload: requests})
	})
	defer b.ProcessEffects(nil)

	g.Go(func() error {
		return sess.readLoop(conn)
	})
	g.Go(func() error {
		return sess.writeLoop(conn, s.cfg.WriteTimeout)
	})

	err = g.Wait()
	if errors.Is(err, errClosed) {
		return nil
	}
	return err
}

var errClosed = errors.New("websocket: connection closed")

type session[Ev, VM any] struct {
	bridge *bridge.Bridge[Ev, VM]
	format bridge.Format
	outbox chan Frame
	ctx    context.Context
	logger *slog.Logger
}

// send queues f for the writer. It gives up once the connection is done.
func (s *session[Ev, VM]) send(f Frame) {
	select {
	case s.outbox <- f:
	case <-s.ctx.Done():
	}
}

func (s *session[Ev, VM]) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClosed
			}
			if websocket.IsUnexpectedCloseError(err) {
				return fmt.Errorf("read frame: %w", err)
			}
			return errClosed
		}
		s.send(s.handle(data))
		if s.ctx.Err() != nil {
			return errClosed
		}
	}
}

func (s *session[Ev, VM]) handle(data []byte) Frame {
	var in Frame
	if err := s.format.Unmarshal(data, &in); err != nil {
		return errorFrame(0, errors.Join(ErrMalformedFrame, err))
	}

	switch in.Type {
	case FrameEvent:
		out, err := s.bridge.Update(in.Payload)
		if err != nil {
			return errorFrame(in.Seq, err)
		}
		return Frame{Type: FrameEffects, Seq: in.Seq, Payload: out}

	case FrameResolve:
		out, err := s.bridge.Resolve(in.ID, in.Payload)
		if err != nil {
			s.logger.Debug("resolve rejected", logger.EffectID(in.ID), logger.Error(err))
			return errorFrame(in.Seq, err)
		}
		return Frame{Type: FrameEffects, Seq: in.Seq, Payload: out}

	case FrameView:
		out, err := s.bridge.View()
		if err != nil {
			return errorFrame(in.Seq, err)
		}
		return Frame{Type: FrameView, Seq: in.Seq, Payload: out}

	default:
		return errorFrame(in.Seq, fmt.Errorf("%w: %q", ErrUnknownFrame, in.Type))
	}
}

// writeLoop owns writes to conn. It closes conn on exit, which also unblocks
// readLoop.
func (s *session[Ev, VM]) writeLoop(conn *websocket.Conn, timeout time.Duration) error {
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-s.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(timeout))
			return nil
		case f := <-s.outbox:
			data, err := s.format.Marshal(f)
			if err != nil {
				return fmt.Errorf("encode frame: %w", err)
			}
			if timeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(timeout))
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
	}
}
