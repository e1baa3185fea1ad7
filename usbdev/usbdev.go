// Package usbdev locates an NXT brick on the USB bus and exposes its bulk
// endpoints as an io.ReadWriter suitable for brick.New.
package usbdev

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// USB identity and endpoints of the NXT brick.
const (
	VendorLEGO = 0x0694
	ProductNXT = 0x0002

	DefaultConfiguration = 1
	DefaultInterface     = 0

	// Endpoint numbers; the IN endpoint address is 0x82
	DefaultOutEndpoint = 1
	DefaultInEndpoint  = 2

	DefaultTimeout = time.Second
)

// ErrNotFound is returned by Open when no matching device is attached.
var ErrNotFound = errors.New("usbdev: NXT not found")

// Config selects the device and transfer timeouts.
type Config struct {
	VendorID      uint16
	ProductID     uint16
	Configuration int
	Interface     int
	OutEndpoint   int
	InEndpoint    int

	// ReadTimeout bounds each bulk IN transfer
	ReadTimeout time.Duration

	// WriteTimeout bounds each bulk OUT transfer
	WriteTimeout time.Duration
}

// DefaultConfig returns the configuration for a stock NXT brick.
func DefaultConfig() Config {
	return Config{
		VendorID:      VendorLEGO,
		ProductID:     ProductNXT,
		Configuration: DefaultConfiguration,
		Interface:     DefaultInterface,
		OutEndpoint:   DefaultOutEndpoint,
		InEndpoint:    DefaultInEndpoint,
		ReadTimeout:   DefaultTimeout,
		WriteTimeout:  DefaultTimeout,
	}
}

func (c Config) validate() error {
	if c.VendorID == 0 || c.ProductID == 0 {
		return fmt.Errorf("usbdev: vendor and product id are required")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("usbdev: timeouts must be positive")
	}
	if c.OutEndpoint <= 0 || c.InEndpoint <= 0 {
		return fmt.Errorf("usbdev: endpoint numbers must be positive")
	}
	return nil
}

// Device is a claimed NXT brick. Each Write is one bulk OUT transfer and
// each Read one bulk IN transfer.
type Device struct {
	cfg   Config
	usb   *gousb.Context
	dev   *gousb.Device
	conf  *gousb.Config
	intf  *gousb.Interface
	out   *gousb.OutEndpoint
	in    *gousb.InEndpoint
	ident string
}

// Open finds the first device matching cfg, claims its interface and
// resolves the bulk endpoints.
func Open(cfg Config) (*Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &Device{cfg: cfg, usb: gousb.NewContext()}

	dev, err := d.usb.OpenDeviceWithVIDPID(gousb.ID(cfg.VendorID), gousb.ID(cfg.ProductID))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: open %04x:%04x: %w", cfg.VendorID, cfg.ProductID, err)
	}
	if dev == nil {
		d.Close()
		return nil, fmt.Errorf("%w (%04x:%04x)", ErrNotFound, cfg.VendorID, cfg.ProductID)
	}
	d.dev = dev
	d.ident = fmt.Sprintf("%04x:%04x bus %d addr %d", cfg.VendorID, cfg.ProductID, dev.Desc.Bus, dev.Desc.Address)

	if err := dev.SetAutoDetach(true); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: auto detach: %w", err)
	}

	if d.conf, err = dev.Config(cfg.Configuration); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: set configuration %d: %w", cfg.Configuration, err)
	}
	if d.intf, err = d.conf.Interface(cfg.Interface, 0); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: claim interface %d: %w", cfg.Interface, err)
	}
	if d.out, err = d.intf.OutEndpoint(cfg.OutEndpoint); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: out endpoint %d: %w", cfg.OutEndpoint, err)
	}
	if d.in, err = d.intf.InEndpoint(cfg.InEndpoint); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: in endpoint %d: %w", cfg.InEndpoint, err)
	}

	return d, nil
}

// String identifies the device by id and bus position.
func (d *Device) String() string {
	return d.ident
}

// Write sends p in one bulk OUT transfer.
func (d *Device) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)
	defer cancel()
	return d.out.WriteContext(ctx, p)
}

// Read receives one bulk IN transfer into p.
func (d *Device) Read(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ReadTimeout)
	defer cancel()
	return d.in.ReadContext(ctx, p)
}

// Close releases the interface, configuration, device and USB context.
// It is safe to call on a partially opened Device.
func (d *Device) Close() error {
	var errs []error
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.conf != nil {
		errs = append(errs, d.conf.Close())
		d.conf = nil
	}
	if d.dev != nil {
		errs = append(errs, d.dev.Close())
		d.dev = nil
	}
	if d.usb != nil {
		errs = append(errs, d.usb.Close())
		d.usb = nil
	}
	return errors.Join(errs...)
}
