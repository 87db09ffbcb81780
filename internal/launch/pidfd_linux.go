package launch

import "syscall"

// pidfd_open() requires kernel 5.3+; pidfd_send_signal() requires kernel
// 5.1+. Neither is wrapped by golang.org/x/sys/unix on every architecture
// appjail targets, so the raw syscall numbers are used directly.
const (
	sysPidfdOpen       = 434
	sysPidfdSendSignal = 424
)

// pidFd is a race-free handle on a specific process: unlike a bare pid,
// it can't be silently reused by the kernel for a different process
// between the time the jail's supervisor captures it and the time it
// signals or waits on it.
type pidFd int

func openPidFd(pid int) (pidFd, error) {
	fd, _, errno := syscall.Syscall(sysPidfdOpen, uintptr(pid), 0, 0)
	if errno != 0 {
		return -1, errno
	}
	return pidFd(fd), nil
}

func (fd pidFd) sendSignal(sig syscall.Signal) error {
	_, _, errno := syscall.Syscall6(sysPidfdSendSignal, uintptr(fd), uintptr(sig), 0, 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func (fd pidFd) close() error {
	return syscall.Close(int(fd))
}
