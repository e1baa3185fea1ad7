// Package brick provides a high-level client for LEGO Mindstorms NXT bricks.
//
// # Overview
//
// The Client wraps every NXT system and direct command the host needs:
//   - Querying battery level, firmware version and device info
//   - Starting and stopping programs
//   - Opening, reading, writing, closing and deleting files
//   - Iterating the brick's file system
//   - Switching the brick into firmware update mode
//
// On top of the single commands it implements the multi-step procedures:
// Download, Upload and ListFiles.
//
// # Basic Usage
//
//	// User provides the transport (io.ReadWriter)
//	dev, err := usbdev.Open(usbdev.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	c := brick.New(dev)
//
//	files, err := c.ListFiles(ctx, "*.rxe")
//	for _, f := range files {
//	    fmt.Printf("%6d %s\n", f.Size, f.Name)
//	}
//
// # Progress Tracking
//
// Track transfer progress with a callback:
//
//	c := brick.New(dev,
//	    brick.WithProgressCallback(func(p brick.Progress) {
//	        fmt.Printf("[%s] %s %.1f%%\n", p.Phase, p.File, p.Percentage())
//	    }),
//	)
//
// # Configuration Options
//
//	c := brick.New(dev,
//	    brick.WithLogger(myLogger),
//	    brick.WithVerbosity(2),
//	    brick.WithReadChunkSize(32),
//	    brick.WithWriteChunkSize(48),
//	    brick.WithTransactionHook(func(tx brick.Transaction) { ... }),
//	)
//
// # Handles
//
// Every procedure that obtains a handle closes it on all exit paths. Cleanup
// closes are sent even after ctx has been cancelled, and a failed close never
// hides the error that ended the procedure.
//
// # Error Handling
//
// The package provides structured error types:
//   - TransportError: the device failed to send or receive
//   - IncompleteTransferError: a transfer stopped early; wraps the cause
//   - LocalReadError: the upload source ended before the declared size
//   - protocol.ProtocolError: the brick returned an error status
//   - protocol.EchoMismatchError: the reply disagrees with the request
//
// All of them work with errors.Is and errors.As through wrapping.
//
// # Hardware Independence
//
// The client does not talk to USB itself. Any io.ReadWriter that delivers one
// reply per Read works, including the simulator package for tests.
package brick
