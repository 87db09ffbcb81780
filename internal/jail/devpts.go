package jail

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
)

// RebuildDevPts tears down whatever /dev/pts the child inherited and
// mounts a fresh devpts instance scoped to this mount namespace, with the
// same newinstance options a login-capable terminal multiplexer would use.
// This must run after the controlling terminal has already been snapshotted
// out of the old instance (see ScratchRoot.SnapshotTTY) -- the old instance is gone
// once this returns, and any pty still resolved against it stops working.
func RebuildDevPts(caps *capset.State) error {
	if err := caps.LazyUmount2("/dev/pts"); err != nil {
		return fmt.Errorf("detach inherited /dev/pts: %w", err)
	}

	opts := "newinstance,gid=5,mode=620,ptmxmode=0666"
	if err := caps.Mount("devpts", "/dev/pts", "devpts", unix.MS_NOSUID|unix.MS_NOEXEC, opts); err != nil {
		return fmt.Errorf("mount fresh /dev/pts: %w", err)
	}

	if err := caps.LazyUmount2("/dev/ptmx"); err != nil {
		return fmt.Errorf("detach inherited /dev/ptmx: %w", err)
	}

	if err := caps.Mount("/dev/pts/ptmx", "/dev/ptmx", "", unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("bind /dev/pts/ptmx -> /dev/ptmx: %w", err)
	}

	return nil
}
