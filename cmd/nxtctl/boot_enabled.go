//go:build nxtboot

package main

import (
	"context"
	"fmt"
)

const bootEnabled = true

// boot resets the brick into SAM-BA mode. The brick erases its firmware
// state, so this is only compiled into builds that ask for it.
func (a *app) boot(ctx context.Context) error {
	if err := a.client.Boot(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "brick switched to firmware update mode")
	return nil
}
