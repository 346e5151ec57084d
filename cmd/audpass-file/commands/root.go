// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decred/slog"
	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/internal/logging"
	"github.com/spf13/cobra"
)

const appName = "audpass-file"

// options are the command line settings.
type options struct {
	rate     int
	channels int
	format   string
	speed    float64
	engine   string
	quality  string
	latency  time.Duration
	offline  bool
}

var opts = options{
	rate:     48000,
	channels: 2,
	format:   "pcm16",
	speed:    1,
	engine:   "cubic",
	quality:  "high",
	latency:  200 * time.Millisecond,
}

var (
	debugLevel string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "audpass-file <input> <output.wav>",
	Short: "Run the audpass passthrough from an audio file into a WAV file",
	Long: `audpass-file decodes <input> (wav, mp3, ogg or aiff) in real time, as if it
were a capture device, and plays it through the passthrough into <output.wav>
written in the requested format. It exits once the input is consumed.

With --offline the input is converted as fast as possible instead, through
the same conversion chain.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Command returns the root cobra command.
func Command() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&opts.rate, "rate", "r", opts.rate, "output sample rate")
	flags.IntVarP(&opts.channels, "channels", "c", opts.channels, "output channel count")
	flags.StringVarP(&opts.format, "format", "f", opts.format, "output sample format (pcm8, pcm16, pcm24, pcm32, float32)")
	flags.Float64VarP(&opts.speed, "speed", "s", opts.speed, "playback speed as a multiple of real time")
	flags.StringVarP(&opts.engine, "engine", "e", opts.engine, "rate converter (cubic or soxr)")
	flags.StringVarP(&opts.quality, "quality", "q", opts.quality, "soxr quality preset (quick, low, medium, high, veryhigh)")
	flags.DurationVarP(&opts.latency, "latency", "l", opts.latency, "buffered audio to aim for between capture and playback")
	flags.BoolVar(&opts.offline, "offline", false, "convert without real-time pacing")
	flags.StringVarP(&debugLevel, "debuglevel", "d", "info", "log level, optionally per subsystem (e.g. info,SESS=debug)")
	flags.StringVar(&logFile, "logfile", "", "log file (default is <user cache dir>/audpass-file/logs/audpass-file.log)")
}

// outputFormat builds the requested output format.
func (o options) outputFormat() (audio.SampleFormat, error) {
	v, err := audio.ParseVariant(o.format)
	if err != nil {
		return audio.SampleFormat{}, err
	}
	f := v.Format(o.rate, o.channels)
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	path := logFile
	if path == "" {
		var err error
		if path, err = logging.DefaultLogFile(appName); err != nil {
			return fmt.Errorf("locating log directory: %w", err)
		}
	}
	logs, err := logging.New(path, debugLevel, nil)
	if err != nil {
		return err
	}
	defer logs.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loggers := func(subsys string) slog.Logger { return logs.Logger(subsys) }
	if opts.offline {
		return convert(args[0], args[1], opts, loggers, cmd.OutOrStdout())
	}
	return play(ctx, args[0], args[1], opts, loggers, cmd.OutOrStdout())
}
