package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
)

func testLayout() graph.Layout {
	data := graph.GraphData{
		Nodes: []graph.Node{
			{ID: "app@1.0.0", Name: "app", Version: "1.0.0", Depth: 2, Description: "a <b> & \"c\""},
			{ID: "json@1.1.0", Name: "json", Version: "1.1.0", Depth: 1, IsMultipleVersions: true},
			{ID: "log@0.3.0", Name: "log", Version: "0.3.0", Depth: 0},
		},
		Edges: []graph.Edge{
			{SourceID: "app@1.0.0", TargetID: "json@1.1.0"},
			{SourceID: "json@1.1.0", TargetID: "log@0.3.0"},
			{SourceID: "log@0.3.0", TargetID: "app@1.0.0", IsCircular: true},
		},
	}
	pos := []graph.Point{{X: 100, Y: 100}, {X: 300, Y: 200}, {X: 500, Y: 400}}
	for i := range data.Nodes {
		data.Nodes[i] = data.Nodes[i].WithPosition(pos[i])
	}
	return graph.Layout{
		Width: 800, Height: 600, Seed: 42, Ticks: 301, Settled: true, MaxDepth: 3,
		Nodes: data.Nodes, Edges: data.Edges,
		Radii: []float64{13, 10.8, 9.51},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testLayout()))

	for _, want := range []string{
		`viewBox="0 0 800.0 600.0" width="800" height="600"`,
		`<marker id="arrow" viewBox="-0 -5 10 10" refX="16" refY="0" orient="auto" markerWidth="4" markerHeight="4"`,
		`<path d="M 0,-5 L 10 ,0 L 0,5" fill="#0f0"/>`,
		`<marker id="arrow-circular"`,
		`<path d="M 0,-5 L 10 ,0 L 0,5" fill="#f00"/>`,
		`x1="100.00" y1="100.00" x2="300.00" y2="200.00" stroke="#0f0" stroke-width="3" marker-end="url(#arrow)"`,
		`stroke="#f00" stroke-width="3" marker-end="url(#arrow-circular)"`,
		`cx="100.00" cy="100.00" r="13.00" fill="#ffa500"`,
		`cx="300.00" cy="200.00" r="10.80" fill="#f00"`,
		`cx="500.00" cy="400.00" r="9.51" fill="#fff"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %s", want)
		}
	}
	if strings.Contains(svg, "data-tooltip") || strings.Contains(svg, "<script") {
		t.Error("tooltips should be opt-in")
	}
	if strings.Index(svg, `class="links"`) > strings.Index(svg, `class="nodes"`) {
		t.Error("edges must be drawn below nodes")
	}
}

func TestRenderSVGLightTheme(t *testing.T) {
	svg := string(RenderSVG(testLayout(), WithTheme(graph.Light), WithBackground()))
	if !strings.Contains(svg, `r="9.51" fill="#000"`) {
		t.Error("light theme default node fill should be black")
	}
	if !strings.Contains(svg, `<rect width="100%" height="100%" fill="#fff"/>`) {
		t.Error("background should use the light page color")
	}
	if !strings.Contains(svg, "theme-light") {
		t.Error("root element should carry the theme class")
	}
}

func TestRenderSVGTooltips(t *testing.T) {
	svg := string(RenderSVG(testLayout(), WithTooltips()))

	if !strings.Contains(svg, `data-tooltip="Name: app&#10;Version: 1.0.0&#10;Depth: 1&#10;Description: a &lt;b&gt; &amp; &#34;c&#34;&#10;Dir: "`) {
		t.Error("node tooltip missing or not escaped")
	}
	if !strings.Contains(svg, `data-tooltip="Source: app@1.0.0&#10;Target: json@1.1.0"`) {
		t.Error("edge tooltip missing")
	}
	if !strings.Contains(svg, `<g id="tooltip" visibility="hidden">`) || !strings.Contains(svg, "const margin = 10;") {
		t.Error("tooltip overlay or script missing")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testLayout(), DOTOptions{Theme: graph.Dark, Labels: true})

	for _, want := range []string{
		"layout=neato;",
		`"app@1.0.0" [pos="100.00,500.00!", width=0.3611, fillcolor="#ffa500"`,
		`xlabel="app"`,
		`"json@1.1.0" -> "log@0.3.0" [color="#0f0"`,
		`"log@0.3.0" -> "app@1.0.0" [color="#f00"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}

	plain := ToDOT(testLayout(), DOTOptions{})
	if !strings.Contains(plain, `label=""`) || strings.Contains(plain, "xlabel") {
		t.Error("labels should be off by default")
	}
}

func TestRenderGraphviz(t *testing.T) {
	ctx := context.Background()
	dot := ToDOT(testLayout(), DOTOptions{})

	svg, err := RenderGraphviz(ctx, dot, FormatSVG)
	if err != nil {
		t.Fatalf("RenderGraphviz(svg) error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Error("graphviz SVG should have a normalized root element")
	}

	png, err := RenderGraphviz(ctx, dot, FormatPNG)
	if err != nil {
		t.Fatalf("RenderGraphviz(png) error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("PNG output should start with the PNG signature")
	}

	if _, err := RenderGraphviz(ctx, dot, FormatHTML); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("html via graphviz error = %v", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 62.00 116.00" width="62" height="116"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("input without viewBox should be unchanged")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{" PNG ", FormatPNG, false},
		{"jpeg", FormatJPG, false},
		{"dot", FormatDOT, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) error code = %s", tt.in, errors.GetCode(err))
		}
	}
	if FormatPNG.Ext() != ".png" || FormatSVG.ContentType() != "image/svg+xml" {
		t.Error("format metadata mismatch")
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	l := testLayout()

	for _, f := range []Format{FormatSVG, FormatHTML, FormatDOT, FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			out, err := Render(ctx, l, f, Options{Tooltips: true})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(out) == 0 {
				t.Fatal("Render() returned no output")
			}
		})
	}

	out, _ := Render(ctx, l, FormatJSON, Options{})
	back, err := graph.UnmarshalLayout(out)
	if err != nil || back.Ticks != 301 {
		t.Errorf("JSON output did not round trip: %v", err)
	}

	if _, err := Render(ctx, l, Format("pdf"), Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestStaticPage(t *testing.T) {
	page, err := StaticPage(testLayout(), graph.Light)
	if err != nil {
		t.Fatalf("StaticPage() error = %v", err)
	}
	s := string(page)
	if !strings.Contains(s, "<!DOCTYPE html>") || !strings.Contains(s, `<svg xmlns=`) {
		t.Error("page should embed the SVG unescaped")
	}
	if !strings.Contains(s, "background: #fff") {
		t.Error("page background should follow the theme")
	}
}

func TestLivePage(t *testing.T) {
	page, err := LivePage(PageOptions{SocketPath: "/ws"})
	if err != nil {
		t.Fatalf("LivePage() error = %v", err)
	}
	s := string(page)
	for _, want := range []string{`id="graph"`, `id="tooltip"`, `"rootNodeColor":"#ffa500"`, `"nodeColor":"#000"`, `"refX":16`, "type: 'hover'", "case 'tooltip'"} {
		if !strings.Contains(s, want) {
			t.Errorf("live page missing %s", want)
		}
	}
	for _, gone := range []string{"nodeTooltip", "const MARGIN"} {
		if strings.Contains(s, gone) {
			t.Errorf("live page computes tooltips itself (%s)", gone)
		}
	}
}
