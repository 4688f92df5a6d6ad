package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/interaction"
	"github.com/gardar/ocrlens/pkg/scene"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage is the envelope of every message in both directions.
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message types.
const (
	MsgToggle          = "toggle"
	MsgLineEnter       = "line_enter"
	MsgLineLeave       = "line_leave"
	MsgControlEnter    = "control_enter"
	MsgControlLeave    = "control_leave"
	MsgWordClick       = "word_click"
	MsgCopyLine        = "copy_line"
	MsgCopyPage        = "copy_page"
	MsgClipboardResult = "clipboard_result"

	MsgDirectives  = "directives"
	MsgShowControl = "show_control"
	MsgHideControl = "hide_control"
	MsgNotify      = "notify"
	MsgDetail      = "detail"
	MsgClipboard   = "clipboard"
	MsgError       = "error"
)

// ToggleRequest sets a flag, or toggles it when Value is absent.
type ToggleRequest struct {
	Flag  string `json:"flag"`
	Value *bool  `json:"value,omitempty"`
}

// Extent is a viewport rectangle reported by the browser.
type Extent struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// LineEvent addresses one line, with its extent on enter.
type LineEvent struct {
	Line   int    `json:"line"`
	Extent Extent `json:"extent"`
}

// WordClickEvent is a click on a word at viewport position X, Y.
type WordClickEvent struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ClipboardResult reports the outcome of a clipboard request.
type ClipboardResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DirectivesPayload carries directives with the resulting state.
type DirectivesPayload struct {
	State      display.State       `json:"state"`
	Directives []display.Directive `json:"directives"`
}

// HideControlPayload names the line whose control goes away.
type HideControlPayload struct {
	Line int `json:"line"`
}

// NotifyPayload is a transient message.
type NotifyPayload struct {
	Message    string `json:"message"`
	DurationMs int64  `json:"duration_ms"`
}

// DetailPayload is a word detail popup.
type DetailPayload struct {
	scene.WordDetail
	Lines      []string `json:"lines"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	DurationMs int64    `json:"duration_ms"`
}

// ClipboardRequest asks the browser to write text to the clipboard.
type ClipboardRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ErrorPayload describes a rejected message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// viewerWebSocketHandler runs one viewer session.
func (s *Server) viewerWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	sess := s.newSession(conn)
	defer sess.close()
	sess.run()
}

// session is the host side of one connected viewer. It is the controller's
// surface, clipboard and notifier.
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	closed  bool

	machine *display.Machine
	ctrl    *interaction.Controller

	pendingMu sync.Mutex
	pending   map[string]func(error)
	nextID    int
}

func (s *Server) newSession(conn *websocket.Conn) *session {
	sess := &session{
		conn:    conn,
		logger:  s.logger.With("remote_addr", conn.RemoteAddr().String()),
		machine: display.NewMachine(s.State()),
		pending: make(map[string]func(error)),
	}

	opts := s.interaction
	opts.Logger = sess.logger
	userOnCopy := opts.OnCopy
	opts.OnCopy = func(kind string, err error) {
		recordCopy(kind, err)
		if userOnCopy != nil {
			userOnCopy(kind, err)
		}
	}
	sess.ctrl = interaction.New(s.doc.Scene, sess.machine, sess, sess, sess, nil, opts)
	return sess
}

func (sess *session) run() {
	_ = sess.conn.SetReadDeadline(time.Now().Add(readTimeout))
	sess.conn.SetPongHandler(func(string) error {
		_ = sess.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go sess.keepAlive(done)

	sess.ctrl.Init()

	for {
		messageType, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				sess.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType != websocket.TextMessage {
			continue
		}
		if err := sess.handle(data); err != nil {
			sess.logger.Debug("rejected viewer message", "error", err)
			sess.send(MsgError, ErrorPayload{Message: err.Error()})
		}
	}
}

func (sess *session) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			sess.writeMu.Lock()
			err := sess.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout))
			sess.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// handle dispatches one client message to the controller.
func (sess *session) handle(data []byte) error {
	var msg WebSocketMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	switch msg.Type {
	case MsgToggle:
		var req ToggleRequest
		if err := decodePayload(msg, &req); err != nil {
			return err
		}
		flag, err := display.ParseFlag(req.Flag)
		if err != nil {
			return err
		}
		var ds []display.Directive
		if req.Value == nil {
			ds = sess.ctrl.Toggle(flag)
		} else {
			ds = sess.ctrl.SetFlag(flag, *req.Value)
		}
		if ds != nil {
			displayTogglesTotal.WithLabelValues(flag.ControlID(), "websocket").Inc()
		}

	case MsgLineEnter:
		var ev LineEvent
		if err := decodePayload(msg, &ev); err != nil {
			return err
		}
		sess.ctrl.LineEnter(ev.Line, geometry.Rect{
			Left: ev.Extent.Left, Top: ev.Extent.Top,
			Right: ev.Extent.Right, Bottom: ev.Extent.Bottom,
		})

	case MsgLineLeave:
		var ev LineEvent
		if err := decodePayload(msg, &ev); err != nil {
			return err
		}
		sess.ctrl.LineLeave(ev.Line)

	case MsgControlEnter:
		sess.ctrl.ControlEnter()

	case MsgControlLeave:
		sess.ctrl.ControlLeave()

	case MsgWordClick:
		var ev WordClickEvent
		if err := decodePayload(msg, &ev); err != nil {
			return err
		}
		return sess.ctrl.WordClick(ev.ID, geometry.Point{X: ev.X, Y: ev.Y})

	case MsgCopyLine:
		var ev LineEvent
		if err := decodePayload(msg, &ev); err != nil {
			return err
		}
		return sess.ctrl.CopyLine(ev.Line)

	case MsgCopyPage:
		sess.ctrl.CopyPage()

	case MsgClipboardResult:
		var res ClipboardResult
		if err := decodePayload(msg, &res); err != nil {
			return err
		}
		return sess.resolve(res)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func decodePayload(msg WebSocketMessage, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}

// send writes one message. Writes are serialized; failures after the
// connection went away are dropped.
func (sess *session) send(typ string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		sess.logger.Error("failed to encode message", "type", typ, "error", err)
		return
	}
	data, err := json.Marshal(WebSocketMessage{Type: typ, Payload: body})
	if err != nil {
		sess.logger.Error("failed to encode message", "type", typ, "error", err)
		return
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.closed {
		return
	}
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		sess.logger.Debug("failed to write message", "type", typ, "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (sess *session) close() {
	sess.ctrl.Close()

	sess.writeMu.Lock()
	sess.closed = true
	sess.writeMu.Unlock()

	sess.pendingMu.Lock()
	n := len(sess.pending)
	sess.pending = make(map[string]func(error))
	sess.pendingMu.Unlock()
	if n > 0 {
		sess.logger.Debug("dropped unanswered clipboard requests", "count", n)
	}
	sess.logger.Info("WebSocket connection closed")
}

// Apply implements interaction.Surface. It runs inside the controller, so
// reading the machine here sees the state the directives produced.
func (sess *session) Apply(ds []display.Directive) {
	sess.send(MsgDirectives, DirectivesPayload{State: sess.machine.State(), Directives: ds})
}

// ShowLineControl implements interaction.Surface.
func (sess *session) ShowLineControl(c interaction.LineControl) {
	sess.send(MsgShowControl, c)
}

// HideLineControl implements interaction.Surface.
func (sess *session) HideLineControl(line int) {
	sess.send(MsgHideControl, HideControlPayload{Line: line})
}

// WriteText implements interaction.Clipboard. The browser performs the write
// and answers with a clipboard_result message carrying the request id.
func (sess *session) WriteText(text string, done func(error)) {
	sess.pendingMu.Lock()
	sess.nextID++
	id := strconv.Itoa(sess.nextID)
	sess.pending[id] = done
	sess.pendingMu.Unlock()

	sess.send(MsgClipboard, ClipboardRequest{ID: id, Text: text})
}

func (sess *session) resolve(res ClipboardResult) error {
	sess.pendingMu.Lock()
	done, ok := sess.pending[res.ID]
	delete(sess.pending, res.ID)
	sess.pendingMu.Unlock()

	if !ok {
		return fmt.Errorf("unknown clipboard request %q", res.ID)
	}
	var err error
	if !res.OK {
		msg := res.Error
		if msg == "" {
			msg = "clipboard write rejected"
		}
		err = errors.New(msg)
	}
	done(err)
	return nil
}

// Notify implements interaction.Notifier.
func (sess *session) Notify(message string, d time.Duration) {
	sess.send(MsgNotify, NotifyPayload{Message: message, DurationMs: d.Milliseconds()})
}

// ShowDetail implements interaction.Notifier.
func (sess *session) ShowDetail(detail scene.WordDetail, at geometry.Point, d time.Duration) {
	sess.send(MsgDetail, DetailPayload{
		WordDetail: detail,
		Lines:      detail.Lines(),
		X:          at.X,
		Y:          at.Y,
		DurationMs: d.Milliseconds(),
	})
}
