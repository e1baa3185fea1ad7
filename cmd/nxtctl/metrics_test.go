package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-nxt/brick"
	"github.com/moffa90/go-nxt/protocol"
)

func TestMetricsStatusLabels(t *testing.T) {
	m := newMetrics()
	m.observe(brick.Transaction{Operation: "open read", Status: protocol.StatusFileNotFound, Duration: time.Millisecond})
	m.observe(brick.Transaction{Operation: "battery level", Status: protocol.StatusSuccess, Err: errors.New("usb: timeout")})
	m.addBytes("upload", 0)

	path := filepath.Join(t.TempDir(), "nxtctl.prom")
	require.NoError(t, m.writeFile(path))

	text, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(text)
	assert.Contains(t, out, `nxtctl_protocol_transactions_total{operation="open read",status="file_not_found"} 1`)
	assert.Contains(t, out, `nxtctl_protocol_transactions_total{operation="battery level",status="error"} 1`)
	assert.Contains(t, out, `nxtctl_protocol_transaction_duration_seconds_count{operation="open read"} 1`)
	assert.NotContains(t, out, "nxtctl_transfer_bytes_total{")
}
