package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/moffa90/go-nxt/protocol"
)

// Actions selectable on the command line; exactly one per invocation.
const (
	actionBoot     = "boot"
	actionBattery  = "battery"
	actionDelete   = "delete"
	actionFirmware = "firmware"
	actionGet      = "get"
	actionPut      = "put"
	actionInfo     = "info"
	actionList     = "list"
	actionStart    = "start"
	actionStop     = "stop"
)

var errNoAction = errors.New("exactly one action is required")

// options is the parsed command line.
type options struct {
	action     string
	name       string
	verbosity  int
	configPath string
}

// counter is a repeatable boolean flag: every -v adds one.
type counter int

func (c *counter) String() string { return strconv.Itoa(int(*c)) }

func (c *counter) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if v {
		*c++
	}
	return nil
}

func (c *counter) IsBoolFlag() bool { return true }

func newFlagSet(out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("nxtctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "usage: nxtctl [-v]... [-config file] ACTION\n\nactions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\n-l lists files matching an optional pattern argument (default %q)\n", protocol.DefaultListPattern)
	}
	return fs
}

func parseArgs(args []string, out io.Writer) (options, error) {
	fs := newFlagSet(out)

	var (
		verbosity counter
		opts      options
	)
	boot := fs.Bool("B", false, "reboot into firmware update (SAM-BA) mode")
	battery := fs.Bool("b", false, "print the battery level")
	del := fs.String("d", "", "delete `file` on the brick")
	firmware := fs.Bool("f", false, "print protocol and firmware versions")
	get := fs.String("g", "", "download `file` from the brick")
	put := fs.String("p", "", "upload local `file` to the brick")
	info := fs.Bool("i", false, "print device info")
	list := fs.Bool("l", false, "list files")
	start := fs.String("s", "", "start `program`")
	stop := fs.Bool("S", false, "stop the running program")
	fs.StringVar(&opts.configPath, "config", "", "read settings from TOML `file`")
	fs.Var(&verbosity, "v", "increase verbosity (repeatable)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.verbosity = int(verbosity)

	var selected []string
	pick := func(set bool, action, name string) {
		if set {
			selected = append(selected, action)
			opts.action = action
			opts.name = name
		}
	}
	pick(*boot, actionBoot, "")
	pick(*battery, actionBattery, "")
	pick(*del != "", actionDelete, *del)
	pick(*firmware, actionFirmware, "")
	pick(*get != "", actionGet, *get)
	pick(*put != "", actionPut, *put)
	pick(*info, actionInfo, "")
	pick(*list, actionList, protocol.DefaultListPattern)
	pick(*start != "", actionStart, *start)
	pick(*stop, actionStop, "")

	if len(selected) != 1 {
		return options{}, fmt.Errorf("%w, got %d", errNoAction, len(selected))
	}

	rest := fs.Args()
	switch {
	case opts.action == actionList && len(rest) == 1:
		opts.name = rest[0]
	case len(rest) > 0:
		return options{}, fmt.Errorf("unexpected arguments: %v", rest)
	}

	return opts, nil
}
