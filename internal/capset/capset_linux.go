// Package capset implements the jail's capability gatekeeper: a scoped
// privilege-elevation state machine over the process's capability sets
// (see State in state_linux.go), plus the bounding-set shrink that's the
// only portable way to permanently remove a capability from the process
// tree's reach.
package capset

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DropBoundingExcept reduces the process's bounding capability set to
// keep, using the PR_CAPBSET_DROP loop that's the only portable way to
// shrink the bounding set (there's no single syscall to set it outright).
// Once a capability leaves the bounding set, nothing -- not even a later
// execve of a setuid binary -- can bring it back into the permitted set.
func DropBoundingExcept(keep []uintptr) error {
	last, err := lastCap()
	if err != nil {
		return fmt.Errorf("determine last capability: %w", err)
	}

	for c := uintptr(0); c <= last; c++ {
		if containsCap(keep, c) {
			continue
		}
		if err := unix.Prctl(unix.PR_CAPBSET_DROP, c, 0, 0, 0); err != nil {
			// The running kernel may not know about a capability this new
			// enough to be past its own CAP_LAST_CAP; ignore.
			if err == unix.EINVAL {
				continue
			}
			return fmt.Errorf("prctl(PR_CAPBSET_DROP, %d): %w", c, err)
		}
	}

	return nil
}

func containsCap(keep []uintptr, c uintptr) bool {
	for _, k := range keep {
		if k == c {
			return true
		}
	}
	return false
}

// lastCap reports CAP_LAST_CAP as exposed by /proc/sys/kernel/cap_last_cap,
// falling back to the highest capability known to this package if the
// running kernel is too old to expose it (pre-3.2).
func lastCap() (uintptr, error) {
	n, err := readCapLastCap()
	if err != nil {
		return 40, nil
	}
	return uintptr(n), nil
}
