package usbdev

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint16(0x0694), cfg.VendorID)
	assert.Equal(t, uint16(0x0002), cfg.ProductID)
	assert.Equal(t, 1, cfg.Configuration)
	assert.Equal(t, 0, cfg.Interface)
	assert.Equal(t, 1, cfg.OutEndpoint)
	assert.Equal(t, 2, cfg.InEndpoint)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
	assert.NoError(t, cfg.validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "missing vendor", modify: func(c *Config) { c.VendorID = 0 }},
		{name: "missing product", modify: func(c *Config) { c.ProductID = 0 }},
		{name: "zero read timeout", modify: func(c *Config) { c.ReadTimeout = 0 }},
		{name: "negative write timeout", modify: func(c *Config) { c.WriteTimeout = -time.Second }},
		{name: "zero endpoint", modify: func(c *Config) { c.InEndpoint = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
