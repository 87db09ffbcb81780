package jail

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
)

// ScratchRoot is a freshly-created, uniquely-named directory under the
// host's /tmp, bind-mounted onto SwapDir for the lifetime of the
// pipeline. Its placeholder subdirectories serve as bind-mount sources
// for the sensitive-path overlays and the captured home directory, and a
// placeholder file holds the captured controlling terminal;
// each placeholder exclusively owns its backing inode until the bind
// transfers ownership to the kernel's mount table.
type ScratchRoot struct {
	// tmpDir is the real, host-visible directory created under /tmp. It
	// is bind-mounted onto SwapDir and is never referenced again once
	// that bind is up -- all further paths are relative to SwapDir.
	tmpDir string
}

// NewScratchRoot creates a uniquely-named directory under /tmp and
// bind-mounts it onto SwapDir, then changes the working directory to
// SwapDir. The random suffix in the directory name is what guarantees P7:
// N concurrent invocations never collide on the same scratch directory.
func NewScratchRoot(caps *capset.State) (*ScratchRoot, error) {
	tmpDir, err := os.MkdirTemp("/tmp", "appjail-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	if err := os.MkdirAll(SwapDir, 0755); err != nil {
		os.Remove(tmpDir)
		return nil, fmt.Errorf("create swap pivot %s: %w", SwapDir, err)
	}

	if err := caps.Mount(tmpDir, SwapDir, "", unix.MS_BIND, ""); err != nil {
		os.Remove(tmpDir)
		return nil, fmt.Errorf("bind scratch directory onto %s: %w", SwapDir, err)
	}

	if err := os.Chdir(SwapDir); err != nil {
		return nil, fmt.Errorf("chdir %s: %w", SwapDir, err)
	}

	return &ScratchRoot{tmpDir: tmpDir}, nil
}

// placeholder returns the path of (creating, if needed) a named
// subdirectory of the scratch root, relative to the current working
// directory (which NewScratchRoot already set to SwapDir).
func (s *ScratchRoot) placeholder(name string) (string, error) {
	if err := os.Mkdir(name, 0700); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("create placeholder %s: %w", name, err)
	}
	return filepath.Join(".", name), nil
}

// Retract unmounts SwapDir (non-lazily, per §4.2 step 8): once the
// sensitive-path overlays, the TTY and the home directory have all been
// moved onto their final targets, the placeholder directories backing
// them are no longer needed and the scratch bind is torn down.
func (s *ScratchRoot) Retract(caps *capset.State) error {
	if err := caps.Umount2(SwapDir, 0); err != nil {
		return fmt.Errorf("retract swap directory: %w", err)
	}
	return nil
}
