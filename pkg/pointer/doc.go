// Package pointer answers pointer-event questions against a frame: which
// node or edge is under the pointer, what its tooltip says, and where the
// tooltip goes so that it stays on screen.
//
// All functions are pure. They read a [sim.Frame] copy, so a caller may
// hold a frame that is one tick stale while the run keeps moving.
package pointer
