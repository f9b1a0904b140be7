//go:build linux

package host

import (
	"context"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// readPTY reads from the PTY master without blocking past ctx
// cancellation. A plain file read on a PTY has nothing to interrupt
// it, so the read is gated on poll with a short timeout.
func readPTY(ctx context.Context, file *os.File, buf []byte) (int, error) {
	if file == nil {
		return 0, io.EOF
	}
	fd := int(file.Fd())
	pollfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		if ctx != nil && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		_, err := unix.Poll(pollfds, int(50*time.Millisecond/time.Millisecond))
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return 0, err
		}
		revents := pollfds[0].Revents
		if revents&(unix.POLLERR|unix.POLLHUP) != 0 {
			return file.Read(buf)
		}
		if revents&unix.POLLIN == 0 {
			continue
		}
		return file.Read(buf)
	}
}

// eofChar reports the hosted terminal's EOF character so a closed
// stdin can be translated into an end-of-input the shell understands.
func eofChar(ttyFile *os.File) byte {
	if ttyFile == nil {
		return 0x04
	}
	termios, err := unix.IoctlGetTermios(int(ttyFile.Fd()), unix.TCGETS)
	if err != nil {
		return 0x04
	}
	if c := termios.Cc[unix.VEOF]; c != 0 {
		return c
	}
	return 0x04
}
