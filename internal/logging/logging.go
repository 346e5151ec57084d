// SPDX-License-Identifier: EPL-2.0

// Package logging builds the slog backend used by the command line tools:
// per-subsystem loggers writing to an optional console writer and a
// size-rotated log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags.
const (
	SubsysCLI        = "AUDP"
	SubsysSupervisor = "SUPV"
	SubsysSession    = "SESS"
	SubsysDevice     = "DEVC"
)

// Backend hands out subsystem loggers sharing one output.
type Backend struct {
	stdOut          io.Writer
	logRotator      *rotator.Rotator
	bknd            *slog.Backend
	defaultLogLevel slog.Level
	logLevels       map[string]slog.Level

	mtx     sync.Mutex
	loggers map[string]slog.Logger
}

// DefaultLogFile is <user cache dir>/<app>/logs/<app>.log.
func DefaultLogFile(app string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, app, "logs", app+".log"), nil
}

// New creates a backend. An empty logFile disables the file output and a nil
// stdOut disables the console output.
//
// debugLevel is either a single level applied to every subsystem or a comma
// separated list that may mix a default level with subsys=level pairs, for
// example "info,SESS=trace".
func New(logFile, debugLevel string, stdOut io.Writer) (*Backend, error) {
	var logRotator *rotator.Rotator
	if logFile != "" {
		logDir, _ := filepath.Split(logFile)
		err := os.MkdirAll(logDir, 0o700)
		if err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		logRotator, err = rotator.New(logFile, 1024, false, 10)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
	}

	b := &Backend{
		stdOut:          stdOut,
		logRotator:      logRotator,
		defaultLogLevel: slog.LevelInfo,
		logLevels:       make(map[string]slog.Level),
		loggers:         make(map[string]slog.Logger),
	}
	b.bknd = slog.NewBackend(b)

	if err := b.parseLevels(debugLevel); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) parseLevels(debugLevel string) error {
	if debugLevel == "" {
		return nil
	}
	for _, v := range strings.Split(debugLevel, ",") {
		fields := strings.Split(v, "=")
		switch len(fields) {
		case 1:
			level, ok := slog.LevelFromString(fields[0])
			if !ok {
				return fmt.Errorf("%w: %q", ErrInvalidLevel, fields[0])
			}
			b.defaultLogLevel = level
		case 2:
			level, ok := slog.LevelFromString(fields[1])
			if !ok {
				return fmt.Errorf("%w: %q", ErrInvalidLevel, fields[1])
			}
			b.logLevels[fields[0]] = level
		default:
			return fmt.Errorf("%w: unable to parse %q as subsys=level", ErrInvalidLevel, v)
		}
	}
	return nil
}

func (b *Backend) Write(p []byte) (int, error) {
	if b.stdOut != nil {
		b.stdOut.Write(p)
	}
	if b.logRotator != nil {
		b.logRotator.Write(p)
	}
	return len(p), nil
}

// Logger returns the logger for subsys, creating it on first use.
func (b *Backend) Logger(subsys string) slog.Logger {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if l, ok := b.loggers[subsys]; ok {
		return l
	}

	l := b.bknd.Logger(subsys)
	if level, ok := b.logLevels[subsys]; ok {
		l.SetLevel(level)
	} else {
		l.SetLevel(b.defaultLogLevel)
	}
	b.loggers[subsys] = l
	return l
}

// Close flushes and closes the log file.
func (b *Backend) Close() error {
	if b.logRotator == nil {
		return nil
	}
	return b.logRotator.Close()
}
