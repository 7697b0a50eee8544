// Package session runs the event loop of one mounted chart dashboard over a
// WebSocket connection. All renderer calls happen on the loop goroutine;
// dataset fetches run in the background and only the newest one is applied.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"stock_compare/internal/feature/chart/domain/entity"
	"stock_compare/internal/feature/chart/renderer"
	"stock_compare/internal/feature/chart/usecase"
)

// DefaultWriteTimeout bounds a single frame write.
const DefaultWriteTimeout = 10 * time.Second

// Conn is the message transport of a session. *websocket.Conn satisfies it.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// DatasetBuilder builds normalized datasets for a selection.
// Following Go convention: interfaces are defined by the consumer, not the provider.
type DatasetBuilder interface {
	BuildDatasets(ctx context.Context, sel usecase.Selection) (usecase.Datasets, error)
}

// Options are the initial browser values sent when the connection opens.
type Options struct {
	ViewportHeight int
	Dark           bool
	Renderer       renderer.Config
	// WriteTimeout is the deadline for each frame write. Zero selects DefaultWriteTimeout.
	WriteTimeout time.Duration
}

type fetchResult struct {
	gen      uint64
	datasets usecase.Datasets
	err      error
}

// selectionKey identifies the inputs that require a refetch.
type selectionKey struct {
	symbols     string
	window      entity.DateWindow
	passthrough string
	catalog     bool
}

// Session owns the renderer of one connection.
type Session struct {
	conn    Conn
	builder DatasetBuilder
	env     *environment
	chart   *renderer.Renderer
	sink    *connSink

	results chan fetchResult
	gen     uint64
	cancel  context.CancelFunc

	key      *selectionKey
	datasets *usecase.Datasets
	tooltip  bool
}

// New creates a session for conn.
func New(conn Conn, builder DatasetBuilder, opts Options) *Session {
	env := newEnvironment(opts.ViewportHeight, opts.Dark)
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	sink := &connSink{conn: conn, timeout: timeout}
	return &Session{
		conn:    conn,
		builder: builder,
		env:     env,
		chart:   renderer.New(sink, env, opts.Renderer),
		sink:    sink,
		results: make(chan fetchResult, 1),
		tooltip: true,
	}
}

// Run processes client messages until the connection closes or ctx is done.
// The renderer is disposed and the connection closed before Run returns.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.close()

	if err := s.chart.Mount(); err != nil {
		return err
	}

	messages := make(chan ClientMessage)
	readErr := make(chan error, 1)
	go s.read(ctx, messages, readErr)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if isClosed(err) {
				return nil
			}
			return err
		case m := <-messages:
			s.handle(ctx, m)
		case res := <-s.results:
			s.handleResult(res)
		}
		if s.sink.err != nil {
			return s.sink.err
		}
	}
}

func (s *Session) read(ctx context.Context, out chan<- ClientMessage, errc chan<- error) {
	for {
		var m ClientMessage
		if err := s.conn.ReadJSON(&m); err != nil {
			errc <- err
			return
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.chart.Dispose()
	if err := s.conn.Close(); err != nil {
		slog.Debug("failed to close chart connection", "error", err)
	}
}

func (s *Session) handle(ctx context.Context, m ClientMessage) {
	switch m.Type {
	case MsgSelect:
		s.handleSelect(ctx, m)
	case MsgResize:
		if m.ViewportHeight <= 0 {
			s.sendError("viewportHeight must be positive")
			return
		}
		s.env.setHeight(m.ViewportHeight)
	case MsgTheme:
		s.env.setDark(m.Dark)
	case MsgRedraw:
		s.report(s.chart.ForceRedraw())
	default:
		g, ok := m.gesture()
		if !ok {
			s.sendError("unknown message type: " + m.Type)
			return
		}
		s.report(s.env.dispatch(g))
	}
}

func (s *Session) handleSelect(ctx context.Context, m ClientMessage) {
	window, err := entity.ParseDateWindow(m.Start, m.End)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.tooltip = m.ShowTooltip == nil || *m.ShowTooltip

	key := newSelectionKey(m.Symbols, window, m.Passthrough)
	if s.key != nil && *s.key == key {
		// 同じ選択なら再取得せず、表示設定だけ反映する
		if s.datasets != nil {
			s.apply()
		}
		return
	}
	s.key = &key
	s.datasets = nil

	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	sel := usecase.Selection{Symbols: m.Symbols, Window: window, Passthrough: m.Passthrough}
	go func() {
		ds, err := s.builder.BuildDatasets(fctx, sel)
		select {
		case s.results <- fetchResult{gen: gen, datasets: ds, err: err}:
		case <-fctx.Done():
		}
	}()
}

func (s *Session) handleResult(res fetchResult) {
	if res.gen != s.gen {
		slog.Debug("discarding stale chart datasets", "generation", res.gen, "current", s.gen)
		return
	}
	if res.err != nil {
		slog.Warn("failed to build chart datasets", "error", res.err)
		// 失敗した選択は記憶しない。同じ選択の再送で再取得する
		s.key = nil
		s.sendError(res.err.Error())
		return
	}
	s.datasets = &res.datasets
	s.apply()
}

func (s *Session) apply() {
	s.report(s.chart.Apply(renderer.Inputs{
		Datasets:       s.datasets.Series,
		Window:         s.datasets.Window,
		TooltipEnabled: s.tooltip,
	}))
}

// report sends err to the client. Interactions before the chart exists are ignored.
func (s *Session) report(err error) {
	if err == nil || errors.Is(err, renderer.ErrNotReady) {
		return
	}
	s.sendError(err.Error())
}

func (s *Session) sendError(msg string) {
	_ = s.sink.Send(errorFrame(msg))
}

// isClosed reports whether err marks an orderly end of the connection.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

func newSelectionKey(symbols []string, window entity.DateWindow, passthrough []string) selectionKey {
	return selectionKey{
		symbols:     strings.Join(symbols, "\x00"),
		window:      window,
		passthrough: strings.Join(passthrough, "\x00"),
		catalog:     passthrough == nil,
	}
}

// connSink writes frames to the connection and remembers the first failure.
type connSink struct {
	conn    Conn
	timeout time.Duration
	err     error
}

func (c *connSink) Send(f renderer.Frame) error {
	if c.err != nil {
		return c.err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		c.err = err
		return c.err
	}
	if err := c.conn.WriteJSON(f); err != nil {
		c.err = err
	}
	return c.err
}
