package jail

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
)

// RemountProc replaces whatever /proc the child inherited from its clone
// with a fresh instance scoped to the child's own PID namespace. Without
// this, /proc/[pid] would keep enumerating every process visible to the
// parent's PID namespace, defeating the PID namespace isolation entirely.
func RemountProc(caps *capset.State) error {
	if err := caps.LazyUmount2("/proc"); err != nil {
		return fmt.Errorf("detach inherited /proc: %w", err)
	}

	if err := caps.Mount("proc", "/proc", "proc", unix.MS_NOSUID|unix.MS_NODEV|unix.MS_NOEXEC, ""); err != nil {
		return fmt.Errorf("mount fresh /proc: %w", err)
	}

	return nil
}
