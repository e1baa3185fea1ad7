//go:build !nxtboot

package main

import "context"

const bootEnabled = false

func (a *app) boot(context.Context) error {
	return errBootDisabled
}
