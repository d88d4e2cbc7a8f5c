package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pointer"
	"github.com/matzehuels/depforce/pkg/sim"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// clientMessage is sent by the page. Hover messages carry the pointer
// position and the measured tooltip size.
type clientMessage struct {
	Type          string  `json:"type"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Theme         string  `json:"theme"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	TooltipWidth  float64 `json:"tooltip_width"`
	TooltipHeight float64 `json:"tooltip_height"`
}

// tooltipMessage answers a hover. Hidden tooltips carry no target.
type tooltipMessage struct {
	Visible bool         `json:"visible"`
	Kind    pointer.Kind `json:"kind,omitempty"`
	Index   int          `json:"index"`
	Text    string       `json:"text,omitempty"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
}

// serverMessage is sent to the page. Fields are set per Type.
type serverMessage struct {
	Type     string          `json:"type"`
	RunID    string          `json:"run_id,omitempty"`
	Theme    *graph.Theme    `json:"theme,omitempty"`
	Nodes    []graph.Node    `json:"nodes,omitempty"`
	Edges    []graph.Edge    `json:"edges,omitempty"`
	Radii    []float64       `json:"radii,omitempty"`
	MaxDepth int             `json:"max_depth,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Frame    *sim.Frame      `json:"frame,omitempty"`
	Tooltip  *tooltipMessage `json:"tooltip,omitempty"`
	Code     string          `json:"code,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// session is one live connection and the layout run it owns.
type session struct {
	id      string
	srv     *Server
	conn    *websocket.Conn
	ctrl    *sim.Controller
	limiter *rate.Limiter
	logger  *log.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	viewport    graph.Viewport
	hasViewport bool
	theme       graph.Theme
	sceneRun    string
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := s.newSession(ctx, conn)
	s.addSession(sess)
	defer s.removeSession(sess)
	defer sess.close()

	go sess.writeLoop()
	sess.readLoop(ctx)
}

func (s *Server) newSession(ctx context.Context, conn *websocket.Conn) *session {
	limit := rate.Inf
	if s.cfg.MaxFPS > 0 {
		limit = rate.Limit(s.cfg.MaxFPS)
	}
	sess := &session{
		id:      uuid.NewString(),
		srv:     s,
		conn:    conn,
		limiter: rate.NewLimiter(limit, 1),
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		theme:   graph.Dark,
	}
	sess.logger = s.logger.With("conn", sess.id[:8])
	params := s.cfg.Params
	sess.ctrl = sim.NewController(ctx,
		sim.WithInterval(s.cfg.TickInterval),
		sim.WithRedraw(sess.onRedraw),
		sim.WithControllerLogger(sess.logger),
		sim.WithSimOptions(
			sim.WithSeed(s.cfg.Seed),
			sim.WithParams(params),
			sim.WithOnTick(sess.onTick),
			sim.WithLogger(sess.logger),
		),
	)
	return sess
}

func (sess *session) readLoop(ctx context.Context) {
	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Debug("connection closed", "err", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.sendError(errors.Wrap(errors.ErrCodeInvalidInput, err, "decode message"))
			continue
		}
		sess.handle(ctx, msg)
	}
}

func (sess *session) handle(ctx context.Context, msg clientMessage) {
	switch msg.Type {
	case "viewport":
		vp := graph.Viewport{Width: msg.Width, Height: msg.Height}
		if err := vp.Validate(); err != nil {
			sess.sendError(err)
			return
		}
		theme, err := graph.ThemeByName(msg.Theme)
		if err != nil {
			sess.sendError(err)
			return
		}
		sess.mu.Lock()
		sess.viewport, sess.hasViewport, sess.theme = vp, true, theme
		sess.mu.Unlock()

		g, err := sess.srv.Graph(ctx)
		if err != nil {
			sess.sendError(err)
			return
		}
		sess.refresh(g)
	case "refresh":
		if _, err := sess.srv.Reload(ctx, true); err != nil {
			sess.sendError(err)
		}
	case "hover":
		sess.hover(graph.Point{X: msg.X, Y: msg.Y}, pointer.Size{Width: msg.TooltipWidth, Height: msg.TooltipHeight})
	default:
		sess.sendError(errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type))
	}
}

// refresh hands the snapshot and the last viewport to the controller.
func (sess *session) refresh(g graph.GraphData) {
	sess.mu.Lock()
	vp, ok, theme := sess.viewport, sess.hasViewport, sess.theme
	sess.mu.Unlock()
	if !ok {
		return
	}
	if _, _, err := sess.ctrl.Update(g, vp, theme); err != nil {
		sess.sendError(err)
	}
}

// hover resolves the element under p in the current frame and places its
// tooltip. A miss or an unmeasured tooltip hides it.
func (sess *session) hover(p graph.Point, tip pointer.Size) {
	hidden := serverMessage{Type: "tooltip", Tooltip: &tooltipMessage{Index: -1}}
	run := sess.ctrl.Current()
	if run == nil {
		sess.enqueue(hidden, true)
		return
	}

	data := run.Data()
	index, err := data.Index()
	if err != nil {
		sess.sendError(err)
		return
	}
	links, err := force.ResolveLinks(data.Edges, index)
	if err != nil {
		sess.sendError(err)
		return
	}

	target, ok := pointer.Hit(data, run.Frame(), links, p)
	if !ok {
		sess.enqueue(hidden, true)
		return
	}
	pos, err := pointer.Place(p, tip, run.Viewport())
	if errors.Is(err, errors.ErrCodeUnmeasurableElement) {
		sess.logger.Debug("tooltip suppressed", "err", err)
		sess.enqueue(hidden, true)
		return
	}
	if err != nil {
		sess.sendError(err)
		return
	}
	if !tip.Fits(run.Viewport()) {
		sess.logger.Debug("tooltip larger than viewport", "width", tip.Width, "height", tip.Height)
	}
	sess.enqueue(serverMessage{Type: "tooltip", Tooltip: &tooltipMessage{
		Visible: true,
		Kind:    target.Kind,
		Index:   target.Index,
		Text:    target.Text,
		X:       pos.X,
		Y:       pos.Y,
	}}, true)
}

// onRedraw runs for a new run's first frame and on theme changes.
func (sess *session) onRedraw(f sim.Frame, theme graph.Theme) {
	if sess.ensureScene(f) {
		sess.enqueue(serverMessage{Type: "frame", Frame: &f}, true)
		return
	}
	sess.enqueue(serverMessage{Type: "theme", Theme: &theme}, true)
	sess.enqueue(serverMessage{Type: "frame", Frame: &f}, true)
}

// onTick forwards tick frames, dropping those over the frame rate. The
// settling frame is always sent.
func (sess *session) onTick(f sim.Frame) {
	if f.State != sim.Settled && !sess.limiter.Allow() {
		return
	}
	sess.ensureScene(f)
	sess.mu.Lock()
	current := sess.sceneRun == f.RunID
	sess.mu.Unlock()
	if current {
		sess.enqueue(serverMessage{Type: "frame", Frame: &f}, f.State == sim.Settled)
	}
}

// ensureScene sends the scene for f's run if it has not been sent yet. It
// reports whether a scene was sent. Frames of replaced runs send nothing.
func (sess *session) ensureScene(f sim.Frame) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.sceneRun == f.RunID {
		return false
	}
	run := sess.ctrl.Current()
	if run == nil || run.ID() != f.RunID {
		return false
	}
	data, vp, theme := run.Data(), run.Viewport(), sess.ctrl.Theme()
	sess.sceneRun = f.RunID
	sess.enqueue(serverMessage{
		Type:     "scene",
		RunID:    f.RunID,
		Theme:    &theme,
		Nodes:    data.Nodes,
		Edges:    data.Edges,
		Radii:    f.Radii,
		MaxDepth: data.MaxDepth(),
		Width:    vp.Width,
		Height:   vp.Height,
	}, true)
	return true
}

func (sess *session) sendError(err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	sess.logger.Debug("sending error", "err", err)
	sess.enqueue(serverMessage{Type: "error", Code: string(code), Message: errors.UserMessage(err)}, true)
}

// enqueue queues msg for the writer. Unless must is set, the message is
// dropped when the client is not keeping up.
func (sess *session) enqueue(msg serverMessage, must bool) {
	b, err := json.Marshal(msg)
	if err != nil {
		sess.logger.Warn("encode message", "type", msg.Type, "err", err)
		return
	}
	if must {
		select {
		case sess.send <- b:
		case <-sess.done:
			return
		}
	} else {
		select {
		case sess.send <- b:
		case <-sess.done:
			return
		default:
			return
		}
	}
	if msg.Type == "frame" {
		sess.srv.metrics.FrameSent()
	}
}

func (sess *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case b := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				sess.logger.Debug("write failed", "err", err)
				sess.close()
				return
			}
		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				sess.close()
				return
			}
		case <-sess.done:
			return
		}
	}
}

func (sess *session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		sess.ctrl.Close()
		_ = sess.conn.Close()
	})
}
