// Package kernelutil provides the minimal host feature-detection the jail
// needs to decide whether optional hardening (ID-mapped home mounts) is
// available on the running kernel.
package kernelutil

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"
)

// appFs is the filesystem readIDMapFile and writeIDMapFile go through,
// swappable in tests for a afero.NewMemMapFs() so they don't depend on a
// real /proc/<pid>/{uid,gid}_map being writable by the test process.
var appFs = afero.NewOsFs()

// Release returns the kernel release string (e.g. "6.5.0").
func Release() (string, error) {
	var utsname unix.Utsname

	if err := unix.Uname(&utsname); err != nil {
		return "", fmt.Errorf("uname: %w", err)
	}

	n := bytes.IndexByte(utsname.Release[:], 0)
	if n < 0 {
		n = len(utsname.Release)
	}

	return string(utsname.Release[:n]), nil
}

// ParseRelease splits a kernel release string into its major and minor
// version numbers.
func ParseRelease(rel string) (major, minor int, err error) {
	splits := strings.SplitN(rel, ".", -1)
	if len(splits) < 2 {
		return -1, -1, fmt.Errorf("failed to parse kernel release %q", rel)
	}

	major, err = strconv.Atoi(splits[0])
	if err != nil {
		return -1, -1, fmt.Errorf("failed to parse kernel release %q: %w", rel, err)
	}

	minor, err = strconv.Atoi(splits[1])
	if err != nil {
		return -1, -1, fmt.Errorf("failed to parse kernel release %q: %w", rel, err)
	}

	return major, minor, nil
}

// AtLeast reports whether the running kernel's version is >= wantMajor.wantMinor.
func AtLeast(wantMajor, wantMinor int) (bool, error) {
	rel, err := Release()
	if err != nil {
		return false, err
	}

	major, minor, err := ParseRelease(rel)
	if err != nil {
		return false, err
	}

	if major != wantMajor {
		return major > wantMajor, nil
	}
	return minor >= wantMinor, nil
}

// NewProbeUserns forks a short-lived, throwaway process into a new user
// namespace with the given single ID mapping and has it pause until
// killed. It exists purely so feature-probes (e.g. "does this kernel
// support ID-mapped mounts") have a userns to point at, without assuming
// anything about the real jail's own namespace setup. Returns the child's
// pid and a function that kills it.
func NewProbeUserns(idMap specs.LinuxIDMapping) (pid int, kill func(), err error) {
	flags := unix.CLONE_NEWUSER | uintptr(unix.SIGCHLD)

	p, _, errno := syscall.Syscall6(uintptr(unix.SYS_CLONE), flags, 0, 0, 0, 0, 0)
	if errno != 0 {
		return -1, nil, errno
	}

	if p == 0 {
		unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(unix.SIGKILL), 0, 0, 0)

		for i := 0; i < 30; i++ {
			if mapping, err := readIDMapFile("/proc/self/uid_map"); err == nil && mapping == idMap {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}

		for {
			syscall.Syscall6(uintptr(unix.SYS_PAUSE), 0, 0, 0, 0, 0, 0)
		}
	}

	kill = func() { unix.Kill(int(p), unix.SIGKILL) }

	if err := writeIDMapFile(fmt.Sprintf("/proc/%d/uid_map", p), idMap); err != nil {
		kill()
		return -1, nil, err
	}
	if err := writeIDMapFile(fmt.Sprintf("/proc/%d/gid_map", p), idMap); err != nil {
		kill()
		return -1, nil, err
	}

	return int(p), kill, nil
}

func readIDMapFile(path string) (specs.LinuxIDMapping, error) {
	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		return specs.LinuxIDMapping{}, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return specs.LinuxIDMapping{}, fmt.Errorf("invalid mapping in %s", path)
	}
	containerID, _ := strconv.Atoi(fields[0])
	hostID, _ := strconv.Atoi(fields[1])
	size, _ := strconv.Atoi(fields[2])
	return specs.LinuxIDMapping{
		ContainerID: uint32(containerID),
		HostID:      uint32(hostID),
		Size:        uint32(size),
	}, nil
}

func writeIDMapFile(path string, idMap specs.LinuxIDMapping) error {
	mapping := fmt.Sprintf("%d %d %d\n", idMap.ContainerID, idMap.HostID, idMap.Size)
	return afero.WriteFile(appFs, path, []byte(mapping), 0600)
}
