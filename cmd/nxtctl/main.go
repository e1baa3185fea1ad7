// Command nxtctl talks to a LEGO Mindstorms NXT brick over USB: it reports
// device state, manages files and starts or stops programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-nxt/brick"
	"github.com/moffa90/go-nxt/usbdev"
)

// device is the transport handed to the client.
type device interface {
	io.ReadWriter
	Close() error
}

var openDevice = func(cfg usbdev.Config) (device, error) {
	return usbdev.Open(cfg)
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "nxtctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nxtctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) (err error) {
	cfg := defaultConfig()
	if opts.configPath != "" {
		if cfg, err = loadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.verbosity > 0 {
		cfg.Verbosity = opts.verbosity
	}

	log := newLogger(stderr, cfg.LogLevel, cfg.Verbosity)

	if opts.action == actionBoot && !bootEnabled {
		return errBootDisabled
	}

	m := newMetrics()
	if cfg.MetricsFile != "" {
		defer func() {
			if werr := m.writeFile(cfg.MetricsFile); werr != nil {
				log.Warn().Err(werr).Str("path", cfg.MetricsFile).Msg("write metrics")
			}
		}()
	}

	dev, err := openDevice(cfg.USB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close device")
		}
	}()
	log.Debug().Str("device", fmt.Sprint(dev)).Msg("device opened")

	client := brick.New(dev,
		brick.WithLogger(zlogAdapter{log: log}),
		brick.WithVerbosity(cfg.Verbosity),
		brick.WithReadChunkSize(cfg.ReadChunkSize),
		brick.WithWriteChunkSize(cfg.WriteChunkSize),
		brick.WithTransactionHook(m.observe),
		brick.WithProgressCallback(progressLogger(log, cfg.Verbosity)),
	)

	a := &app{client: client, out: stdout, log: log, metrics: m}
	return a.dispatch(ctx, opts)
}

// progressLogger traces every transferred chunk at verbosity 1 and above.
func progressLogger(log zerolog.Logger, verbosity int) brick.ProgressCallback {
	return func(p brick.Progress) {
		if verbosity < 1 || p.Phase != brick.PhaseTransferring {
			return
		}
		log.Debug().
			Str("file", p.File).
			Int64("transferred", p.Transferred).
			Int64("total", p.Total).
			Int("chunks", p.Chunks).
			Msg("chunk")
	}
}
