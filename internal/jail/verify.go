package jail

import (
	"fmt"

	"github.com/sargun/appjail/internal/mount"
)

// p1Paths is the fixed set of paths P1 requires to resolve, after pipeline
// completion, to a mount distinct from whatever the host had resident
// there -- separate mount ids, not just separate content.
var p1Paths = []string{"/tmp", "/var/tmp", "/home", "/dev/shm", "/dev/pts", "/proc", "/dev/console"}

// residentMountIDs records the mount id currently resident at each of
// paths, by path. A path with no mount entry of its own -- because it's
// just a directory on whatever filesystem its parent is mounted on, not a
// mountpoint in its own right -- has no entry here; verifyDistinctMountIDs
// treats that as "nothing to compare against" rather than a failure.
func residentMountIDs(paths []string) (map[string]int, error) {
	mounts, err := mount.GetMounts()
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}

	ids := make(map[string]int, len(paths))
	for _, p := range paths {
		if !mount.FindMount(p, mounts) {
			continue
		}
		info, err := mount.GetMountAt(p, mounts)
		if err != nil {
			return nil, fmt.Errorf("look up resident mount at %s: %w", p, err)
		}
		ids[p] = info.ID
	}
	return ids, nil
}

// verifyDistinctMountIDs checks P1 against the mount table after the
// pipeline has finished reshaping paths: each one must now be a mountpoint
// in its own right, and -- wherever before recorded a prior resident mount
// id at that path -- that id must have changed.
func verifyDistinctMountIDs(before map[string]int, paths []string) error {
	mounts, err := mount.GetMounts()
	if err != nil {
		return fmt.Errorf("read mount table: %w", err)
	}

	for _, p := range paths {
		if !mount.FindMount(p, mounts) {
			return fmt.Errorf("%s is not a mountpoint after pipeline completion", p)
		}
		info, err := mount.GetMountAt(p, mounts)
		if err != nil {
			return fmt.Errorf("look up %s after pipeline completion: %w", p, err)
		}
		if priorID, ok := before[p]; ok && priorID == info.ID {
			return fmt.Errorf("%s still resolves to mount id %d after pipeline completion", p, info.ID)
		}
	}
	return nil
}
