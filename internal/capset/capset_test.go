package capset

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestContainsCap(t *testing.T) {
	keep := Minimum

	if !containsCap(keep, unix.CAP_SYS_ADMIN) {
		t.Errorf("containsCap(CAP_SYS_ADMIN) = false, want true")
	}
	if containsCap(keep, unix.CAP_SYS_PTRACE) {
		t.Errorf("containsCap(CAP_SYS_PTRACE) = true, want false")
	}
}

func TestReadCapLastCap(t *testing.T) {
	if _, err := os.Stat("/proc/sys/kernel/cap_last_cap"); err != nil {
		t.Skipf("no /proc/sys/kernel/cap_last_cap on this host: %v", err)
	}

	n, err := readCapLastCap()
	if err != nil {
		t.Fatalf("readCapLastCap() failed: %v", err)
	}
	if n < int(unix.CAP_SYS_ADMIN) {
		t.Errorf("readCapLastCap() = %d, want at least %d", n, unix.CAP_SYS_ADMIN)
	}
}

func TestLastCapFallback(t *testing.T) {
	n, err := lastCap()
	if err != nil {
		t.Fatalf("lastCap() failed: %v", err)
	}
	if n == 0 {
		t.Errorf("lastCap() = 0")
	}
}

func TestBit(t *testing.T) {
	w, m := bit(unix.CAP_CHOWN)
	if w != 0 || m != 1 {
		t.Errorf("bit(CAP_CHOWN) = (%d, %#x), want (0, 0x1)", w, m)
	}

	w, m = bit(uintptr(35)) // CAP_WAKE_ALARM, in the upper word
	if w != 1 || m != 1<<3 {
		t.Errorf("bit(35) = (%d, %#x), want (1, 0x8)", w, m)
	}
}

// TestDropBoundingExceptIsDestructive documents that DropBoundingExcept and
// State.Seal are not covered by unit tests: both permanently shrink the
// calling process's own capability sets, which would poison every other
// test running in the same process. No test in this repository calls
// them; they run only inside internal/jail.Run, which performs the drop as
// the very last step before exec in a freshly cloned child.
func TestDropBoundingExceptIsDestructive(t *testing.T) {
	t.Log("DropBoundingExcept/State.Seal are exercised via internal/jail, not here")
}
