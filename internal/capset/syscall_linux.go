package capset

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// capVersion3 is _LINUX_CAPABILITY_VERSION_3, the only header version that
// covers the full 64-bit-wide capability space (two 32-bit words) used since
// Linux 2.6.26. Every capability the jail raises (CAP_SYS_ADMIN,
// CAP_CHOWN, CAP_SETPCAP) sits in the low word anyway,
// but capset(2) requires both words to be supplied.
const capVersion3 = 0x20080522

// capHeader and capData mirror struct __user_cap_header_struct and
// struct __user_cap_data_struct from <linux/capability.h>.
type capHeader struct {
	version uint32
	pid     int32
}

type capData struct {
	effective   uint32
	permitted   uint32
	inheritable uint32
}

// capget wraps the capget(2) syscall.
func capget(hdr *capHeader, data *capData) error {
	_, _, errno := unix.Syscall(unix.SYS_CAPGET, uintptr(unsafe.Pointer(hdr)), uintptr(unsafe.Pointer(data)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// capset wraps the capset(2) syscall. The kernel ABI takes a two-element
// capData array (low and high 32-bit words); data points at the first
// element.
func capset(hdr *capHeader, data *capData) error {
	_, _, errno := unix.Syscall(unix.SYS_CAPSET, uintptr(unsafe.Pointer(hdr)), uintptr(unsafe.Pointer(data)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// readCapLastCap returns the highest capability number the running kernel
// knows about, as reported under /proc/sys/kernel/cap_last_cap.
func readCapLastCap() (int, error) {
	b, err := os.ReadFile("/proc/sys/kernel/cap_last_cap")
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
