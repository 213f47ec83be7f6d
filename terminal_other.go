//go:build !unix

package main

import (
	"context"
	"errors"
)

type terminalControls struct{}

func newTerminalControls(*session, []string) (*terminalControls, error) {
	return nil, errors.New("terminal controls need a unix terminal")
}

func (*terminalControls) run(context.Context) error { return nil }

func (*terminalControls) Stop() {}
