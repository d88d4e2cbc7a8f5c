package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func captureProgress(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := progressOut
	progressOut = &buf
	t.Cleanup(func() { progressOut = prev })
	return &buf
}

func TestSpinnerDrawsLabelAndClears(t *testing.T) {
	buf := captureProgress(t)

	sp := startSpinner(context.Background(), "Settling 3 nodes...")
	time.Sleep(3 * spinnerInterval)
	sp.Stop()

	out := buf.String()
	if !strings.Contains(out, "Settling 3 nodes...") {
		t.Fatalf("label not drawn: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("line not cleared on stop: %q", out)
	}
}

func TestSpinnerStopBeforeFirstFrame(t *testing.T) {
	buf := captureProgress(t)

	sp := startSpinner(context.Background(), "Loading graph.json...")
	sp.Stop()
	if buf.Len() != 0 {
		t.Errorf("wrote %q before the first frame", buf.String())
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	captureProgress(t)

	sp := startSpinner(context.Background(), "Loading...")
	sp.Stop()
	sp.Stop()
}

func TestSpinnerEndsWithContext(t *testing.T) {
	captureProgress(t)
	ctx, cancel := context.WithCancel(context.Background())

	sp := startSpinner(ctx, "Settling...")
	cancel()

	select {
	case <-sp.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after cancel")
	}
	sp.Stop()
}

func TestSpinnerFail(t *testing.T) {
	captureProgress(t)
	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	sp := startSpinner(context.Background(), "Rendering...")
	sp.Fail("Render failed")
	if !strings.Contains(out.String(), "Render failed") {
		t.Errorf("stdout = %q", out.String())
	}
}
