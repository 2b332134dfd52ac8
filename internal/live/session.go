package live

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// Session is one live document bound to one WebSocket connection.
type Session struct {
	// ID is a random UUID identifying the session.
	ID string

	conn    *websocket.Conn
	codec   Codec
	loop    *reactive.EventLoop
	manager *Manager
	logger  *slog.Logger

	// Touched only on the loop goroutine.
	doc         *dom.Document
	stopObserve func()
	dirty       bool
	scheduled   bool

	writeMu sync.Mutex

	events atomic.Int64
	closed atomic.Bool
	done   chan struct{}
}

func newSession(m *Manager, conn *websocket.Conn, codec Codec) *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		conn:    conn,
		codec:   codec,
		loop:    m.loop,
		manager: m,
		logger:  m.logger.With("session_id", id),
		done:    make(chan struct{}),
	}
}

// do runs fn on the loop and converts a panic into an error.
func (s *Session) do(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
	}()
	var fnErr error
	if err := s.loop.Do(func() { fnErr = fn() }); err != nil {
		return err
	}
	return fnErr
}

// start parses the page, connects its components and sends the first render.
func (s *Session) start(page string, reg *dom.Registry) error {
	var html string
	err := s.do(func() error {
		doc, err := dom.ParseString(page, reg)
		if doc == nil {
			return err
		}
		s.doc = doc
		s.stopObserve = dom.Observe(doc.DocumentElement(), func(dom.MutationRecord) { s.markDirty() })
		html = s.render()
		return err
	})
	if s.doc == nil {
		return err
	}
	if err != nil {
		s.logger.Warn("page connected with errors", "error", err)
	}
	return s.send(Reply{Type: TypeRender, Session: s.ID, HTML: html})
}

// render returns the body markup and clears the dirty flag. Loop only.
func (s *Session) render() string {
	s.dirty = false
	if body := s.doc.Body(); body != nil {
		return body.InnerHTML()
	}
	return s.doc.String()
}

// markDirty schedules a render push for mutations that did not come from a
// client event. Loop only.
func (s *Session) markDirty() {
	s.dirty = true
	if s.scheduled || s.closed.Load() {
		return
	}
	s.scheduled = true
	// Dispatch blocks while the queue is full, so it must not run on the
	// loop goroutine.
	go s.loop.Dispatch(s.push)
}

func (s *Session) push() {
	s.scheduled = false
	if !s.dirty || s.closed.Load() || s.doc == nil {
		return
	}
	html := s.render()
	if err := s.send(Reply{Type: TypeRender, HTML: html}); err != nil {
		s.logger.Debug("push failed", "error", err)
	}
}

// Handle applies one client message and returns the reply, if any.
func (s *Session) Handle(msg Message) *Reply {
	switch msg.Type {
	case TypePing:
		return &Reply{Type: TypePong}
	case TypeEvent:
		html, changed, err := s.dispatch(msg)
		if m := s.manager.metrics; m != nil {
			m.SessionEvent(msg.Event, err)
		}
		if err != nil {
			return errorReply(err, "UIE402")
		}
		if !changed {
			return nil
		}
		return &Reply{Type: TypeRender, HTML: html}
	default:
		return errorReply(errors.New("UIE401").WithDetail("unknown message type "+fmt.Sprintf("%q", msg.Type)), "UIE401")
	}
}

func (s *Session) dispatch(msg Message) (html string, changed bool, err error) {
	s.events.Add(1)
	err = s.do(func() error {
		if err := Apply(s.doc, msg); err != nil {
			return err
		}
		if s.dirty {
			html, changed = s.render(), true
		}
		return nil
	})
	return html, changed, err
}

// Apply dispatches an event message into doc: it writes msg.Value to the
// target's value property, when set, then dispatches msg.Event on it.
// It must run on the goroutine that owns doc.
func Apply(doc *dom.Document, msg Message) error {
	target, err := doc.QuerySelector(msg.Selector)
	if err != nil {
		return errors.New("UIE402").WithSubject(msg.Selector).Wrap(err)
	}
	if target == nil {
		return errors.New("UIE402").WithSubject(msg.Selector)
	}
	if msg.Value != nil {
		if err := target.SetProperty("value", *msg.Value); err != nil {
			return err
		}
	}
	target.DispatchEvent(dom.NewEvent(msg.Event, msg.Detail))
	return nil
}

func errorReply(err error, fallback string) *Reply {
	ue := errors.FromError(err, fallback)
	return &Reply{Type: TypeError, Code: ue.Code, Message: ue.Error()}
}

func (s *Session) send(r Reply) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	data, err := s.codec.Marshal(r)
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.manager.config.WriteTimeout))
	return s.conn.WriteMessage(s.codec.FrameType(), data)
}

// readLoop reads client messages until the connection fails or closes.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.manager.config.ReadTimeout))

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var msg Message
		if err := s.codec.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("message decode error", "error", err)
			_ = s.send(*errorReply(errors.New("UIE401").Wrap(err), "UIE401"))
			continue
		}

		if reply := s.Handle(msg); reply != nil {
			if err := s.send(*reply); err != nil {
				s.logger.Debug("write failed", "error", err)
				return
			}
		}
	}
}

// Events returns the number of events dispatched into the session.
func (s *Session) Events() int64 {
	return s.events.Load()
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close disconnects the document's components and closes the connection.
// It is safe to call more than once.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)

	err := s.do(func() error {
		if s.doc == nil {
			return nil
		}
		if s.stopObserve != nil {
			s.stopObserve()
		}
		var err error
		if body := s.doc.Body(); body != nil {
			err = body.SetInnerHTML("")
		}
		s.doc.Close()
		return err
	})
	if err != nil && err != reactive.ErrLoopClosed {
		s.logger.Warn("disconnect errors", "error", err)
	}

	s.writeMu.Lock()
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.conn.Close()
	s.writeMu.Unlock()

	s.manager.remove(s)
	s.logger.Info("session closed", "events", s.events.Load())
}
