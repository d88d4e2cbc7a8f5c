package cli

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depforce/pkg/source"
)

func TestServeSource(t *testing.T) {
	setup(t)
	c := New(io.Discard, log.InfoLevel)

	if got := c.serveSource(nil); got != source.DefaultEndpoint {
		t.Errorf("serveSource(nil) = %q, want %q", got, source.DefaultEndpoint)
	}
	if got := c.serveSource([]string{"graph.json"}); got != "graph.json" {
		t.Errorf("serveSource(graph.json) = %q", got)
	}

	c.settings().Source.Endpoint = "http://analyzer:3000/analyze"
	if got := c.serveSource(nil); got != "http://analyzer:3000/analyze" {
		t.Errorf("serveSource(nil) with config = %q", got)
	}
}
