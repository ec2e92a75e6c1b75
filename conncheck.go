//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd || solaris || illumos
// +build linux darwin dragonfly freebsd netbsd openbsd solaris illumos

package mysql

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

var errUnexpectedEvent = errors.New("mysql: received unexpected event polling connection liveness")

// connCheck reports whether transport still looks alive, by polling its
// file descriptor for unexpected readable/error events with a zero timeout
// — used by Session.Check so a pool can evict a dead connection without a
// blocking read (§5 Non-goals: pooling itself is out of scope, but a
// liveness probe the pool can call is not).
func connCheck(transport Transport) error {
	sysConn, ok := transport.(syscall.Conn)
	if !ok {
		return nil
	}
	rawConn, err := sysConn.SyscallConn()
	if err != nil {
		return err
	}

	var pollErr error
	err = rawConn.Control(func(fd uintptr) {
		fds := []unix.PollFd{
			{Fd: int32(fd), Events: unix.POLLIN | unix.POLLERR},
		}
		n, err := unix.Poll(fds, 0)
		if err != nil {
			pollErr = fmt.Errorf("poll: %w", err)
		}
		if n > 0 {
			pollErr = errUnexpectedEvent
		}
	})
	if err != nil {
		return err
	}
	return pollErr
}
