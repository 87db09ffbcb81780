package jail

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
	"github.com/sargun/appjail/internal/idmap"
)

// Home tracks the invoker's home directory, captured out of the host
// before OverlaySensitivePaths replaces /home with an empty directory.
// Like TTY, it's a bind-then-move: binding straight onto the jailed
// /home now would just disappear the instant the overlay lands on top
// of it, so the capture has to happen first and land somewhere the
// overlay step doesn't touch.
type Home struct {
	hostDir     string
	placeholder string
}

// CaptureHome binds hostDir into a scratch placeholder, before
// OverlaySensitivePaths replaces /home. An empty hostDir is a no-op:
// not every launch has a home directory to carry in.
func (s *ScratchRoot) CaptureHome(caps *capset.State, hostDir string) (*Home, error) {
	if hostDir == "" {
		return nil, nil
	}

	path, err := s.placeholder("homedir")
	if err != nil {
		return nil, err
	}

	if err := caps.Mount(hostDir, path, "", unix.MS_BIND, ""); err != nil {
		return nil, fmt.Errorf("bind home directory onto placeholder: %w", err)
	}

	return &Home{hostDir: hostDir, placeholder: path}, nil
}

// Install moves the captured home directory onto its path under the
// jail's freshly overlaid /home, creating that path first, then
// normalizes ownership to root:root unless an ID-mapped mount took the
// plain bind's place (see attachIDMappedHome). Install is a no-op on a nil *Home,
// so callers can always invoke it even when CaptureHome found nothing to
// carry in.
func (h *Home) Install(caps *capset.State) error {
	if h == nil {
		return nil
	}

	target := filepath.Join("/home", filepath.Base(h.hostDir))
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("create home mount point %s: %w", target, err)
	}

	if err := caps.Mount(h.placeholder, target, "", unix.MS_MOVE, ""); err != nil {
		return fmt.Errorf("move home directory onto %s: %w", target, err)
	}

	// Where the kernel and target filesystem support it, attach the home
	// mount through the jail's own user namespace instead of forcing
	// ownership with a blanket chown: an ID-mapped mount lets the invoker's
	// real host uid/gid show through rather than collapsing everything
	// under a single uid-0-in-namespace mapping. Fall back to the chown
	// wrapper whenever the attach isn't available or doesn't take.
	if attached := attachIDMappedHome(target); !attached {
		if err := caps.Chown(target, 0, 0); err != nil {
			return fmt.Errorf("chown %s: %w", target, err)
		}
	}

	return nil
}

// attachIDMappedHome tries to replace the plain bind at target with one
// carrying the MOUNT_ATTR_IDMAP attribute against this process's own user
// namespace. Any failure -- unsupported kernel, unsupported filesystem, a
// build without the idmapped_mnt cgo path -- is treated as "not available"
// rather than propagated, since this is strictly an optional refinement of
// the move-mount that already landed.
func attachIDMappedHome(target string) bool {
	onFs, err := idmap.SupportedOnPath(target)
	if err != nil || !onFs {
		return false
	}

	if ok, err := idmap.Supported(filepath.Dir(target)); err != nil || !ok {
		return false
	}

	if err := idmap.Mount("/proc/self/ns/user", target, true); err != nil {
		return false
	}

	return true
}
