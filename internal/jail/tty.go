package jail

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
)

// TTY tracks the controlling terminal captured out of the parent's
// /dev/pts instance before that instance is torn down and rebuilt. A
// bind mount alone would be undone the moment the old devpts instance
// disappears, so the capture step holds the terminal by a private
// placeholder bind until RebuildDevPts has already run, at which point
// Finalize moves -- not binds -- it onto /dev/console. A move preserves
// the underlying mount's identity, so the terminal survives the
// reshape intact.
type TTY struct {
	placeholder string
}

// SnapshotTTY resolves the process's controlling terminal and binds it
// into a scratch placeholder, before anything in the mount shaper touches
// /dev/pts. It must run before RebuildDevPts; once that call returns, the
// pts entry this snapshot resolved through no longer exists.
func (s *ScratchRoot) SnapshotTTY(caps *capset.State) (*TTY, error) {
	// A TCGETS that succeeds is the actual isatty(0)/ttyname(0) check --
	// unlike a readlink+stat, it fails ENOTTY for any non-terminal fd
	// (a regular file, /dev/null, a pipe) that still resolves to a real,
	// stat-able path.
	if _, err := unix.IoctlGetTermios(0, unix.TCGETS); err != nil {
		return nil, fmt.Errorf("fd 0 has no controlling terminal: %w", err)
	}

	console, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return nil, fmt.Errorf("resolve controlling terminal path: %w", err)
	}

	// Unlike the directory placeholders, the console placeholder is a
	// regular file, since a terminal device node can only be bound onto a
	// non-directory. Like them, it's relative to SwapDir.
	path := "console"

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("create console placeholder file: %w", err)
	}
	f.Close()

	if err := caps.Mount(console, path, "", unix.MS_BIND, ""); err != nil {
		return nil, fmt.Errorf("bind controlling terminal onto placeholder: %w", err)
	}
	if err := caps.Mount("", path, "", unix.MS_PRIVATE, ""); err != nil {
		return nil, fmt.Errorf("make-private console placeholder: %w", err)
	}

	return &TTY{placeholder: path}, nil
}

// Finalize moves the captured terminal onto /dev/console and re-homes the
// process's stdin, stdout and stderr onto the freshly reopened device --
// the original pty special file the terminal was bound from is no longer
// reachable once RebuildDevPts has replaced /dev/pts, so anything still
// holding the old fds would be talking to a dead end.
func (t *TTY) Finalize(caps *capset.State) error {
	if err := caps.Mount(t.placeholder, "/dev/console", "", unix.MS_MOVE, ""); err != nil {
		return fmt.Errorf("move console onto /dev/console: %w", err)
	}

	fd, err := unix.Open("/dev/console", unix.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("reopen /dev/console: %w", err)
	}
	defer unix.Close(fd)

	for _, std := range []int{0, 1, 2} {
		if err := unix.Dup2(fd, std); err != nil {
			return fmt.Errorf("dup2 /dev/console onto fd %d: %w", std, err)
		}
	}

	return nil
}
