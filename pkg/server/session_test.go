package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/sim"
)

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendViewport(t *testing.T, conn *websocket.Conn, w, h float64, theme string) {
	t.Helper()
	if err := conn.WriteJSON(clientMessage{Type: "viewport", Width: w, Height: h, Theme: theme}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

// readUntil reads messages until match returns true and returns every
// message read, the matching one last.
func readUntil(t *testing.T, conn *websocket.Conn, match func(serverMessage) bool) []serverMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var seen []serverMessage
	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v after %d messages", err, len(seen))
		}
		seen = append(seen, msg)
		if match(msg) {
			return seen
		}
	}
}

func isType(typ string) func(serverMessage) bool {
	return func(m serverMessage) bool { return m.Type == typ }
}

func isSettled(m serverMessage) bool {
	return m.Type == "frame" && m.Frame != nil && m.Frame.State == sim.Settled
}

func TestLiveStream(t *testing.T) {
	_, ts := newTestServer(t, &testLoader{graph: testGraph()})
	conn := dial(t, ts)

	sendViewport(t, conn, 400, 300, "dark")
	msgs := readUntil(t, conn, isType("scene"))
	if len(msgs) != 1 {
		t.Errorf("scene should be the first message, got %d before it", len(msgs)-1)
	}
	scene := msgs[len(msgs)-1]
	if scene.RunID == "" || len(scene.Nodes) != 3 || len(scene.Edges) != 2 || len(scene.Radii) != 3 {
		t.Fatalf("scene = %+v", scene)
	}
	if scene.Width != 400 || scene.Height != 300 || scene.MaxDepth != 3 || scene.Theme.Name != graph.ThemeDark {
		t.Errorf("scene geometry = %vx%v depth %d theme %s", scene.Width, scene.Height, scene.MaxDepth, scene.Theme.Name)
	}

	frames := readUntil(t, conn, isSettled)
	lastTick := -1
	for _, m := range frames {
		if m.Type != "frame" {
			continue
		}
		if m.Frame.RunID != scene.RunID {
			t.Fatalf("frame of run %s after scene of %s", m.Frame.RunID, scene.RunID)
		}
		if m.Frame.Tick < lastTick {
			t.Errorf("tick went backwards: %d after %d", m.Frame.Tick, lastTick)
		}
		lastTick = m.Frame.Tick
		for i, p := range m.Frame.Positions {
			if p.X < 20 || p.X > 380 || p.Y < 20 || p.Y > 280 {
				t.Fatalf("tick %d node %d at %v outside clamp box", m.Frame.Tick, i, p)
			}
		}
	}

	// Theme change: redraw without a new run.
	sendViewport(t, conn, 400, 300, "light")
	msgs = readUntil(t, conn, isType("theme"))
	for _, m := range msgs {
		if m.Type == "scene" {
			t.Error("theme change must not start a new run")
		}
	}
	if got := msgs[len(msgs)-1].Theme.Name; got != graph.ThemeLight {
		t.Errorf("theme message = %s, want light", got)
	}
	redraw := readUntil(t, conn, isType("frame"))
	if f := redraw[len(redraw)-1].Frame; f.RunID != scene.RunID || f.State != sim.Settled {
		t.Errorf("redraw frame = run %s state %s", f.RunID, f.State)
	}

	// Resize: new run.
	sendViewport(t, conn, 500, 400, "light")
	msgs = readUntil(t, conn, isType("scene"))
	next := msgs[len(msgs)-1]
	if next.RunID == scene.RunID || next.Width != 500 || next.Theme.Name != graph.ThemeLight {
		t.Errorf("resize scene = run %s width %v theme %s", next.RunID, next.Width, next.Theme.Name)
	}
}

func TestLiveSetGraph(t *testing.T) {
	srv, ts := newTestServer(t, &testLoader{graph: testGraph()})
	conn := dial(t, ts)

	sendViewport(t, conn, 400, 300, "dark")
	first := readUntil(t, conn, isType("scene"))
	firstRun := first[len(first)-1].RunID

	smaller := testGraph()
	smaller.Nodes = smaller.Nodes[:2]
	smaller.Edges = smaller.Edges[:1]
	srv.SetGraph(smaller)

	msgs := readUntil(t, conn, func(m serverMessage) bool { return m.Type == "scene" && m.RunID != firstRun })
	if got := len(msgs[len(msgs)-1].Nodes); got != 2 {
		t.Errorf("new scene nodes = %d, want 2", got)
	}
}

func TestLiveErrors(t *testing.T) {
	_, ts := newTestServer(t, &testLoader{graph: testGraph()})
	conn := dial(t, ts)

	tests := []struct {
		name string
		send func() error
		code errors.Code
	}{
		{"zero viewport", func() error {
			return conn.WriteJSON(clientMessage{Type: "viewport", Width: 0, Height: 300})
		}, errors.ErrCodeInvalidInput},
		{"unknown theme", func() error {
			return conn.WriteJSON(clientMessage{Type: "viewport", Width: 10, Height: 10, Theme: "neon"})
		}, errors.ErrCodeInvalidTheme},
		{"unknown type", func() error {
			return conn.WriteJSON(clientMessage{Type: "zoom"})
		}, errors.ErrCodeInvalidInput},
		{"not json", func() error {
			return conn.WriteMessage(websocket.TextMessage, []byte("hello"))
		}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); err != nil {
				t.Fatal(err)
			}
			msgs := readUntil(t, conn, isType("error"))
			if got := msgs[len(msgs)-1].Code; got != string(tt.code) {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestLiveLoadError(t *testing.T) {
	_, ts := newTestServer(t, &testLoader{err: errors.New(errors.ErrCodeTimeout, "analyzer timed out")})
	conn := dial(t, ts)

	sendViewport(t, conn, 400, 300, "dark")
	msgs := readUntil(t, conn, isType("error"))
	if m := msgs[len(msgs)-1]; m.Code != string(errors.ErrCodeTimeout) || m.Message != "analyzer timed out" {
		t.Errorf("error = %+v", m)
	}
}

func TestLiveHover(t *testing.T) {
	_, ts := newTestServer(t, &testLoader{graph: testGraph()})
	conn := dial(t, ts)

	sendViewport(t, conn, 400, 300, "dark")
	msgs := readUntil(t, conn, isSettled)
	root := msgs[len(msgs)-1].Frame.Positions[0]

	hover := func(x, y, w, h float64) *tooltipMessage {
		t.Helper()
		msg := clientMessage{Type: "hover", X: x, Y: y, TooltipWidth: w, TooltipHeight: h}
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatal(err)
		}
		got := readUntil(t, conn, isType("tooltip"))
		return got[len(got)-1].Tooltip
	}

	tip := hover(root.X, root.Y, 120, 60)
	if tip == nil || !tip.Visible || tip.Kind != "node" || tip.Index != 0 {
		t.Fatalf("root hover = %+v", tip)
	}
	if !strings.Contains(tip.Text, "Name: app") || !strings.Contains(tip.Text, "Depth: 1") {
		t.Errorf("tooltip text = %q", tip.Text)
	}
	if tip.X < 0 || tip.X+120 > 400 || tip.Y < 0 || tip.Y+60 > 300 {
		t.Errorf("tooltip at (%v, %v) overflows the viewport", tip.X, tip.Y)
	}

	if tip := hover(root.X, root.Y, 0, 0); tip.Visible {
		t.Error("unmeasured tooltip should stay hidden")
	}
	if tip := hover(-500, -500, 120, 60); tip.Visible {
		t.Error("hover over empty space should hide the tooltip")
	}
}
