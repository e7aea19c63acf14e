package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ierrors "github.com/iqwerty/iq/internal/errors"
	"github.com/iqwerty/iq/pkg/component"
	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/vdom"
)

const (
	sessionWriteTimeout = 10 * time.Second
	sessionReadTimeout  = 120 * time.Second
	sessionJobQueue     = 64
)

// Session is one WebSocket client with its own server-side document.
// All document work runs on the session loop goroutine, so loader cycles
// for one document never overlap.
type Session struct {
	id     string
	conn   *websocket.Conn
	doc    *dom.Node
	loader *component.Loader
	logger *slog.Logger
	tracer trace.Tracer
	m      *metrics

	// pending collects the ops of every patch committed during the current
	// job; they are flushed as one frame when the job finishes.
	pending []vdom.Op

	seq     atomic.Uint64
	jobs    chan func()
	done    chan struct{}
	closed  atomic.Bool
	writeMu sync.Mutex
}

// newSession builds a session over an upgraded connection. The page markup
// is parsed into a fresh document; the first job mounts its components and
// sends the resulting content down as the initial patch frame.
func newSession(srv *Server, conn *websocket.Conn, id string) (*Session, error) {
	doc := dom.NewElement("body")
	if err := dom.ParseFragmentInto(doc, srv.page); err != nil {
		return nil, ierrors.Wrap("E201", err)
	}

	s := &Session{
		id:     id,
		conn:   conn,
		doc:    doc,
		logger: srv.log.With("session", id),
		tracer: srv.tracer,
		m:      srv.m,
		jobs:   make(chan func(), sessionJobQueue),
		done:   make(chan struct{}),
	}

	s.loader = component.NewLoader(srv.registry,
		component.WithStore(srv.store),
		component.WithSource(srv.source),
		component.WithLogger(s.logger),
		component.WithObserver(func(_ *dom.Node, ops []vdom.Op) {
			s.pending = append(s.pending, ops...)
		}),
	)
	return s, nil
}

// start launches the session loops and queues the initial mount.
func (s *Session) start() {
	s.m.recordSessionOpen()
	go s.loop()
	go s.readLoop()

	s.run(func() {
		s.loader.Load(s.doc)
		s.flush()
	})
}

// loop executes queued jobs one at a time until the session closes.
func (s *Session) loop() {
	for {
		select {
		case fn := <-s.jobs:
			s.execute(fn)
		case <-s.done:
			return
		}
	}
}

// execute runs one job with panic containment; a broken handler must not
// take the session down.
func (s *Session) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// run queues fn on the session loop.
func (s *Session) run(fn func()) {
	select {
	case s.jobs <- fn:
	case <-s.done:
	}
}

// readLoop reads client frames until the connection drops.
func (s *Session) readLoop() {
	defer s.close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(sessionReadTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "err", err)
				s.m.recordWSError("read")
			}
			return
		}

		var frame EventFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.logger.Warn("malformed frame", "err", err)
			s.sendError(ierrors.Wrap("E302", err))
			continue
		}
		if frame.Type != FrameEvent || frame.Event == "" {
			s.sendError(ierrors.Newf("E302", "frame type %q", frame.Type))
			continue
		}

		s.run(func() { s.handleEvent(&frame) })
	}
}

// handleEvent replays one client event against the document. It runs on the
// session loop; any re-renders it triggers land in pending and go out as a
// single patch frame.
func (s *Session) handleEvent(frame *EventFrame) {
	_, span := s.tracer.Start(context.Background(), "iq.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("iq.event_type", frame.Event),
			attribute.String("iq.session_id", s.id),
			attribute.IntSlice("iq.target_path", frame.Path),
		),
	)
	defer span.End()

	start := time.Now()

	target := nodeAt(s.doc, frame.Path)
	if target == nil {
		err := ierrors.Newf("E302", "no node at path %v", frame.Path)
		span.SetStatus(codes.Error, err.Error())
		s.m.recordEvent(frame.Event, "error", time.Since(start).Seconds())
		s.sendError(err)
		return
	}

	target.Dispatch(&dom.Event{
		Type:   frame.Event,
		Target: target,
		Detail: frame.Detail,
	})

	opCount := len(s.pending)
	s.flush()

	span.SetAttributes(attribute.Int("iq.op_count", opCount))
	span.SetStatus(codes.Ok, "")
	s.m.recordEvent(frame.Event, "success", time.Since(start).Seconds())
}

// flush sends the pending ops as one patch frame. Runs on the session loop.
func (s *Session) flush() {
	if len(s.pending) == 0 {
		return
	}
	ops := encodeOps(s.doc, s.pending)
	s.pending = s.pending[:0]
	if len(ops) == 0 {
		return
	}

	frame := PatchFrame{
		Type: FramePatch,
		Seq:  s.seq.Add(1),
		Ops:  ops,
	}
	if err := s.write(frame); err != nil {
		s.logger.Error("patch write failed", "err", ierrors.Wrap("E301", err))
		s.m.recordWSError("write")
		s.close()
		return
	}
	s.m.recordPatch(len(ops))
}

// sendReload tells the client to reload the page (template changed on disk).
func (s *Session) sendReload() {
	if err := s.write(map[string]string{"type": FrameReload}); err != nil {
		s.m.recordWSError("write")
		s.close()
	}
}

func (s *Session) sendError(err error) {
	frame := ErrorFrame{Type: FrameError, Message: err.Error()}
	var ie *ierrors.Error
	if errors.As(err, &ie) {
		frame.Code = ie.Code
	}
	if werr := s.write(frame); werr != nil {
		s.m.recordWSError("write")
	}
}

func (s *Session) write(v any) error {
	data, err := marshalFrame(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return fmt.Errorf("session closed")
	}
	s.conn.SetWriteDeadline(time.Now().Add(sessionWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// close tears the session down once.
func (s *Session) close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	s.conn.Close()
	s.m.recordSessionClose()
	s.logger.Info("session closed")
}
