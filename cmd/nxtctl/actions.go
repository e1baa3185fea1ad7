package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-nxt/brick"
	"github.com/moffa90/go-nxt/protocol"
)

var errBootDisabled = errors.New("boot support not compiled in; rebuild with -tags nxtboot")

// app runs one action against a connected brick.
type app struct {
	client  *brick.Client
	out     io.Writer
	log     zerolog.Logger
	metrics *metrics
}

func (a *app) dispatch(ctx context.Context, opts options) error {
	switch opts.action {
	case actionBoot:
		return a.boot(ctx)
	case actionBattery:
		return a.battery(ctx)
	case actionDelete:
		return a.delete(ctx, opts.name)
	case actionFirmware:
		return a.firmware(ctx)
	case actionGet:
		return a.get(ctx, opts.name)
	case actionPut:
		return a.put(ctx, opts.name)
	case actionInfo:
		return a.info(ctx)
	case actionList:
		return a.list(ctx, opts.name)
	case actionStart:
		return a.client.StartProgram(ctx, opts.name)
	case actionStop:
		return a.client.StopProgram(ctx)
	}
	return fmt.Errorf("unknown action %q", opts.action)
}

func (a *app) battery(ctx context.Context) error {
	mv, err := a.client.BatteryLevel(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "battery level: %d mV\n", mv)
	return nil
}

func (a *app) firmware(ctx context.Context) error {
	v, err := a.client.FirmwareVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "protocol version: %s\nfirmware version: %s\n", v.Protocol(), v.Firmware())
	return nil
}

func (a *app) info(ctx context.Context) error {
	info, err := a.client.DeviceInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "name: %s\n", info.Name)
	fmt.Fprintf(a.out, "bluetooth address: %s\n", info.AddressString())
	fmt.Fprintf(a.out, "signal strength: %d\n", info.SignalStrength)
	fmt.Fprintf(a.out, "free flash: %d bytes\n", info.FreeFlash)
	return nil
}

func (a *app) delete(ctx context.Context, name string) error {
	if err := a.client.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", name)
	return nil
}

func (a *app) list(ctx context.Context, pattern string) error {
	count := 0
	err := a.client.WalkFiles(ctx, pattern, func(e protocol.FileEntry) error {
		count++
		_, err := fmt.Fprintf(a.out, "%6d %s\n", e.Size, e.Name)
		return err
	})
	a.log.Debug().Str("pattern", pattern).Int("files", count).Msg("listed")
	return err
}

// get downloads name into a new local file of the same name. An existing
// local file is never overwritten; a failed download removes the partial file.
func (a *app) get(ctx context.Context, name string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}

	n, err := a.client.Download(ctx, name, f)
	a.metrics.addBytes("download", n)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close local file: %w", cerr)
	}
	if err != nil {
		if rerr := os.Remove(name); rerr != nil {
			a.log.Warn().Err(rerr).Str("file", name).Msg("remove partial file")
		}
		return err
	}

	fmt.Fprintf(a.out, "%d bytes transferred to %s\n", n, name)
	return nil
}

// put uploads the local file at path under its base name.
func (a *app) put(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat local file: %w", err)
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	name := filepath.Base(path)
	n, err := a.client.Upload(ctx, name, f, st.Size())
	a.metrics.addBytes("upload", n)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d bytes uploaded to %s\n", n, name)
	return nil
}
