package jail

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
)

// RebuildDevShm tears down whatever /dev/shm the child inherited and
// mounts a fresh tmpfs, optionally capped at tmpfsSize (e.g. "64m"). An
// empty tmpfsSize leaves the tmpfs uncapped, the kernel default of half
// of physical RAM.
func RebuildDevShm(caps *capset.State, tmpfsSize string) error {
	if err := caps.LazyUmount2("/dev/shm"); err != nil {
		return fmt.Errorf("detach inherited /dev/shm: %w", err)
	}

	opts := "mode=1777,uid=0,gid=0"
	if tmpfsSize != "" {
		opts += ",size=" + tmpfsSize
	}

	if err := caps.Mount("tmpfs", "/dev/shm", "tmpfs", unix.MS_NODEV|unix.MS_NOSUID, opts); err != nil {
		return fmt.Errorf("mount fresh /dev/shm: %w", err)
	}

	return nil
}
