// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/audpass"
	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/internal/logging"
	"github.com/ik5/audpass/passthrough"
	"github.com/spf13/cobra"
)

const appName = "audpass"

var (
	engineName  string
	qualityName string
	latency     time.Duration
	period      time.Duration
	debugLevel  string
	logFile     string
)

var rootCmd = &cobra.Command{
	Use:   "audpass <input> <output>",
	Short: "Live audio passthrough between two devices",
	Long: `audpass records from the capture device whose name contains <input> and
plays it on the render device whose name contains <output>, converting the
format, channel count and sample rate on the fly.

Devices that are missing or go away are waited for and picked up again.
Run without arguments to list the available devices.`,
	Args:          cobra.MaximumNArgs(2),
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
	flags.StringVarP(&engineName, "engine", "e", audio.EngineCubic.String(), "rate converter (cubic or soxr)")
	flags.StringVarP(&qualityName, "quality", "q", audio.QualityHigh.String(), "soxr quality preset (quick, low, medium, high, veryhigh)")
	flags.DurationVarP(&latency, "latency", "l", 200*time.Millisecond, "buffered audio to aim for between capture and playback")
	flags.DurationVar(&period, "period", 10*time.Millisecond, "device callback period")
	flags.StringVarP(&debugLevel, "debuglevel", "d", "info", "log level, optionally per subsystem (e.g. info,SESS=debug)")
	flags.StringVar(&logFile, "logfile", "", "log file (default is <user cache dir>/audpass/logs/audpass.log)")
}

// buildConfig turns the flags into a passthrough configuration.
func buildConfig() (passthrough.Config, error) {
	cfg := passthrough.DefaultConfig()

	engine, err := audio.ParseEngine(engineName)
	if err != nil {
		return cfg, err
	}
	quality, err := audio.ParseQuality(qualityName)
	if err != nil {
		return cfg, err
	}
	if latency <= 0 {
		return cfg, fmt.Errorf("latency must be positive, got %s", latency)
	}

	cfg.Engine = engine
	cfg.Quality = quality
	cfg.Latency = latency
	return cfg, nil
}

func openLogs() (*logging.Backend, error) {
	path := logFile
	if path == "" {
		var err error
		if path, err = logging.DefaultLogFile(appName); err != nil {
			return nil, fmt.Errorf("locating log directory: %w", err)
		}
	}
	return logging.New(path, debugLevel, nil)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logs, err := openLogs()
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Logger(logging.SubsysCLI)

	backend, err := device.NewMalgoBackend(logs.Logger(logging.SubsysDevice), device.WithPeriod(period))
	if err != nil {
		return err
	}
	defer backend.Close()

	out := cmd.OutOrStdout()
	if len(args) < 2 {
		fmt.Fprintf(out, "Usage: %s <input> <output>\n", appName)
		return audpass.PrintDevices(out, backend)
	}

	cfg.Log = logs.Logger(logging.SubsysSupervisor)
	cfg.SessionLog = logs.Logger(logging.SubsysSession)
	cfg.Status = out

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting passthrough %q -> %q (engine %s, latency %s)", args[0], args[1], cfg.Engine, cfg.Latency)
	err = run(ctx, backend, args[0], args[1], cfg, cmd.InOrStdin(), out)
	if err != nil {
		log.Errorf("Passthrough failed: %v", err)
		return err
	}
	log.Infof("Exiting")
	return nil
}
