package idmap

import (
	"fmt"
	"os"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/kernelutil"
)

// Supported probes whether the host kernel and the filesystem backing dir
// can support an ID-mapped home mount. dir is used as scratch space for a
// throwaway test mount and is left untouched afterward.
func Supported(dir string) (bool, error) {
	ok, err := kernelutil.AtLeast(5, 12)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	testDir, err := os.MkdirTemp(dir, "appjail-idmap-check")
	if err != nil {
		return false, err
	}
	defer os.RemoveAll(testDir)

	idMap := specs.LinuxIDMapping{ContainerID: 0, HostID: 0, Size: 1}

	pid, kill, err := kernelutil.NewProbeUserns(idMap)
	if err != nil {
		return false, err
	}
	defer kill()

	usernsPath := fmt.Sprintf("/proc/%d/ns/user", pid)

	if err := Mount(usernsPath, testDir, false); err != nil {
		return false, nil
	}
	defer unix.Unmount(testDir, unix.MNT_DETACH)

	return true, nil
}
