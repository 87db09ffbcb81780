// Package jail implements the jail construction pipeline: the ordered
// sequence of mount shaping, controlling-terminal rebinding, home
// directory binding and capability attenuation that turns a freshly
// cloned child -- already living in its own mount, PID and user
// namespaces -- into a sandboxed execution environment for one program.
package jail

// SwapDir is the compile-time-known pivot location the pipeline binds its
// scratch directory onto. It must exist on the host root filesystem,
// owned by root, mode 0755 or tighter.
const SwapDir = "/var/lib/appjail/swap"

// LaunchOptions is the read-only input to the pipeline, assembled by the
// parent collaborator before the child is cloned.
type LaunchOptions struct {
	// Argv is the program and arguments to exec once the jail is built.
	// An empty Argv means "exec /bin/sh -i" (interactive shell fallback).
	Argv []string

	// HomeDir is the absolute path of the invoker's home directory on the
	// host. Inside the jail it's mounted at /home/<final path component>
	// (see Home.Install); a home directory outside /home, or nested
	// deeper than one level under it, is not mounted at its host path.
	HomeDir string

	// PrivateNetwork records whether the parent already placed the child
	// in a private network namespace. The pipeline does not itself set
	// up networking; this flag is informational only (e.g. for
	// diagnostics), since nothing in the mount/TTY/home/capability layers
	// depends on it.
	PrivateNetwork bool

	// TmpfsSize, if non-empty, is passed verbatim as the size= option of
	// the /dev/shm tmpfs mount (e.g. "64m").
	TmpfsSize string

	// AllowNewPrivs records the host policy's PermitAllowNewPrivs setting.
	// The pipeline itself never calls PR_SET_NO_NEW_PRIVS; it's read by
	// internal/launch before the pipeline runs, not by anything in this
	// package. It travels with LaunchOptions only because that's the one
	// value that survives the re-exec across the namespace boundary.
	AllowNewPrivs bool
}

func (o LaunchOptions) interactive() bool {
	return len(o.Argv) == 0
}
