// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/ik5/audpass"
	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device/filedev"
	"github.com/ik5/audpass/internal/logging"
	"github.com/ik5/audpass/passthrough"
	"golang.org/x/sync/errgroup"
)

var errInputDone = errors.New("input consumed")

// play runs the supervisor over the file backend until the input has been
// played or ctx is done.
func play(ctx context.Context, in, out string, o options, loggers func(string) slog.Logger, stdout io.Writer) error {
	format, err := o.outputFormat()
	if err != nil {
		return err
	}
	engine, err := audio.ParseEngine(o.engine)
	if err != nil {
		return err
	}
	quality, err := audio.ParseQuality(o.quality)
	if err != nil {
		return err
	}

	b := filedev.New(audpass.NewRegistry(),
		filedev.WithSpeed(o.speed),
		filedev.WithLogger(loggers(logging.SubsysDevice)))
	defer b.Close()

	if err := b.AddInput(in, in); err != nil {
		return err
	}
	if err := b.AddOutput(out, out, format); err != nil {
		return err
	}
	done, err := b.InputDone(in)
	if err != nil {
		return err
	}

	cfg := passthrough.DefaultConfig()
	cfg.Engine = engine
	cfg.Quality = quality
	cfg.Latency = o.latency
	cfg.Log = loggers(logging.SubsysSupervisor)
	cfg.SessionLog = loggers(logging.SubsysSession)
	cfg.Status = stdout
	sup := passthrough.NewSupervisor(b, in, out, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(gctx) })
	g.Go(func() error {
		select {
		case <-done:
			return errInputDone
		case <-gctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errInputDone) {
		return err
	}
	return nil
}

// convert runs the conversion chain over the whole input without pacing.
func convert(in, out string, o options, loggers func(string) slog.Logger, stdout io.Writer) error {
	log := loggers(logging.SubsysCLI)

	format, err := o.outputFormat()
	if err != nil {
		return err
	}
	engine, err := audio.ParseEngine(o.engine)
	if err != nil {
		return err
	}

	src, err := audpass.NewRegistry().Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	f, err := os.Create(out)
	if err != nil {
		return err
	}

	frames, err := audpass.Convert(src, f, format, engine)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("converting %s: %w", in, err)
	}

	log.Debugf("Converted %s (%s, %dch) with %s", in, src.Format(), src.Format().Channels, engine)
	fmt.Fprintf(stdout, "Wrote %d frames (%s, %dch) to %s\n", frames, format, format.Channels, out)
	return nil
}
