// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/passthrough"
	"golang.org/x/sync/errgroup"
)

var errExitRequested = errors.New("exit requested")

// run keeps the passthrough going until ctx is done or a line is read from
// stdin.
func run(ctx context.Context, b device.Backend, input, output string, cfg passthrough.Config, stdin io.Reader, stdout io.Writer) error {
	sup := passthrough.NewSupervisor(b, input, output, cfg)
	fmt.Fprintln(stdout, "Press Enter to exit.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(gctx) })
	g.Go(func() error { return waitForLine(gctx, stdin) })

	if err := g.Wait(); err != nil && !errors.Is(err, errExitRequested) {
		return err
	}
	return nil
}

// waitForLine returns errExitRequested once a full line was read from r, or
// nil when ctx is done first. Input that ends without a newline is ignored
// so a closed stdin does not stop a detached process.
//
// The reading goroutine stays blocked on r after ctx is done.
func waitForLine(ctx context.Context, r io.Reader) error {
	line := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(r).ReadString('\n'); err == nil {
			close(line)
		}
	}()

	select {
	case <-line:
		return errExitRequested
	case <-ctx.Done():
		return nil
	}
}
