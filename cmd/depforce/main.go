// Command depforce lays out dependency graphs with a force simulation.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depforce/internal/cli"
	"github.com/matzehuels/depforce/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, log.InfoLevel).RootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode reports err on stderr and maps it to a process status: 130 for
// an interrupt, 2 for bad input, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if stderrors.Is(err, context.Canceled) {
		return 130
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	if errors.HTTPStatus(err) == 400 {
		return 2
	}
	return 1
}
