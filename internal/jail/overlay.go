package jail

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
)

// sensitivePath names one of the three host paths the pipeline replaces
// with an empty, jail-private directory before exec: a jailed program must
// never see the host's /tmp, /var/tmp or /home contents, since any of the
// three can carry sockets, lock files or other processes' private state.
type sensitivePath struct {
	target string
	mode   os.FileMode
}

var sensitivePaths = []sensitivePath{
	{target: "/tmp", mode: 01777},
	{target: "/var/tmp", mode: 01777},
	{target: "/home", mode: 0755},
}

// OverlaySensitivePaths replaces /tmp, /var/tmp and /home with fresh,
// empty directories sourced from the scratch root, in that fixed order.
// Each overlay is independent of the others -- a failure partway through
// leaves the remaining paths exactly as the parent handed them down,
// which the pipeline driver treats as fatal rather than attempting to
// unwind the ones that already succeeded.
func (s *ScratchRoot) OverlaySensitivePaths(caps *capset.State) error {
	for _, p := range sensitivePaths {
		if err := s.overlayPath(caps, p.target, p.mode); err != nil {
			return fmt.Errorf("overlay %s: %w", p.target, err)
		}
	}
	return nil
}

func (s *ScratchRoot) overlayPath(caps *capset.State, target string, mode os.FileMode) error {
	name := placeholderName(target)

	src, err := s.placeholder(name)
	if err != nil {
		return err
	}

	if err := os.Chmod(src, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", src, err)
	}

	// The parent namespace may or may not have anything mounted at
	// target; clear it unconditionally so the bind below always lands on
	// bare ground.
	if err := caps.LazyUmount2(target); err != nil {
		return fmt.Errorf("detach existing mount at %s: %w", target, err)
	}

	if err := caps.Mount(src, target, "", unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("bind %s -> %s: %w", src, target, err)
	}

	if err := caps.Mount("", target, "", unix.MS_PRIVATE, ""); err != nil {
		return fmt.Errorf("make-private %s: %w", target, err)
	}

	return nil
}

func placeholderName(target string) string {
	switch target {
	case "/tmp":
		return "tmp"
	case "/var/tmp":
		return "vartmp"
	case "/home":
		return "home"
	default:
		panic("jail: unknown sensitive path " + target)
	}
}
