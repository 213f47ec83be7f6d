//go:build unix

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"
)

// terminalControls reads raw stdin and turns each byte into a session command.
type terminalControls struct {
	s            *session
	presets      []string
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// newTerminalControls puts stdin into raw, non-blocking mode. It fails when
// stdin is not a terminal.
func newTerminalControls(s *session, presets []string) (*terminalControls, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, oldState)
		return nil, fmt.Errorf("nonblocking stdin: %w", err)
	}
	return &terminalControls{
		s:            s,
		presets:      presets,
		fd:           fd,
		nonblockSet:  true,
		oldTermState: oldState,
	}, nil
}

// run dispatches key presses until ctx ends. A quit key returns errQuit.
func (h *terminalControls) run(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := syscall.Read(h.fd, buf)
		if n > 0 {
			if h.s.handleCommand(buf[0], h.presets) {
				return errQuit
			}
			continue
		}
		if err == nil || err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || err == syscall.EINTR {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		return fmt.Errorf("reading stdin: %w", err)
	}
}

// Stop restores stdin to blocking, cooked mode. Call it after run returns.
func (h *terminalControls) Stop() {
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
