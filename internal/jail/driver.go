package jail

import (
	"fmt"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/capset"
	"github.com/sargun/appjail/internal/mount"
)

// Run drives the entire jail construction pipeline to completion and then
// execs into opts.Argv (or an interactive shell, if Argv is empty). It
// must be called from the freshly cloned child, already living in its
// own mount, PID and user namespaces, before anything else in that child
// touches the filesystem or its own capability sets.
//
// Run is not resumable and not partially invokable: every stage after
// capability arming assumes every earlier stage already committed. A
// caller that needs to exercise an individual stage in isolation (tests)
// reaches the stage's own method directly; Run itself only ever runs the
// stages in this fixed order, and returning early is always fatal to the
// launch attempt as a whole.
func Run(opts LaunchOptions) error {
	// active tracks every mount the pipeline has successfully put in
	// place so far. The pipeline as a whole never unwinds a partial run
	// on its own -- §5's total order has no cancellation -- but a
	// mid-pipeline error still leaves the child in a half-built state
	// that's about to be torn down as a process anyway; best-effort
	// detaching what's already mounted avoids leaking those mounts into
	// whatever inspects the mount namespace after this process exits
	// (e.g. a supervisor walking /proc/[pid]/mountinfo of a sibling).
	active := mount.NewActiveSet()

	caps, err := capset.Load()
	if err != nil {
		return wrapErr(KindSyscall, fmt.Errorf("load capability state: %w", err))
	}
	if err := caps.Arm(); err != nil {
		return wrapErr(KindSyscall, fmt.Errorf("arm capability gatekeeper: %w", err))
	}

	fail := func(err error) error {
		active.Unwind(caps)
		return wrapErr(KindSyscall, err)
	}

	before, err := residentMountIDs(p1Paths)
	if err != nil {
		return wrapErr(KindSyscall, fmt.Errorf("snapshot mount table: %w", err))
	}

	if err := caps.Mount("", "/", "", unix.MS_REC|unix.MS_SLAVE, ""); err != nil {
		return fail(fmt.Errorf("detach mount propagation: %w", err))
	}

	scratch, err := NewScratchRoot(caps)
	if err != nil {
		return fail(fmt.Errorf("materialize scratch root: %w", err))
	}
	active.Add(SwapDir)

	home, err := scratch.CaptureHome(caps, opts.HomeDir)
	if err != nil {
		return fail(fmt.Errorf("capture home directory: %w", err))
	}

	tty, err := scratch.SnapshotTTY(caps)
	if err != nil {
		return fail(fmt.Errorf("snapshot controlling terminal: %w", err))
	}

	if err := RemountProc(caps); err != nil {
		return fail(fmt.Errorf("remount /proc: %w", err))
	}
	active.Add("/proc")

	if err := scratch.OverlaySensitivePaths(caps); err != nil {
		return fail(fmt.Errorf("overlay sensitive paths: %w", err))
	}
	active.Add("/tmp")
	active.Add("/var/tmp")
	active.Add("/home")

	if err := RebuildDevPts(caps); err != nil {
		return fail(fmt.Errorf("rebuild /dev/pts: %w", err))
	}
	active.Add("/dev/pts")
	active.Add("/dev/ptmx")

	if err := RebuildDevShm(caps, opts.TmpfsSize); err != nil {
		return fail(fmt.Errorf("rebuild /dev/shm: %w", err))
	}
	active.Add("/dev/shm")

	if err := tty.Finalize(caps); err != nil {
		return fail(fmt.Errorf("finalize controlling terminal: %w", err))
	}
	active.Add("/dev/console")

	if err := home.Install(caps); err != nil {
		return fail(fmt.Errorf("install home directory: %w", err))
	}
	if home != nil {
		active.Add(filepath.Join("/home", filepath.Base(opts.HomeDir)))
	}

	active.Remove(SwapDir)
	if err := scratch.Retract(caps); err != nil {
		return fail(fmt.Errorf("retract scratch root: %w", err))
	}

	for _, root := range []string{"/tmp", "/var/tmp", "/home"} {
		if err := caps.Chown(root, 0, 0); err != nil {
			return wrapErr(KindSyscall, fmt.Errorf("normalize ownership of %s: %w", root, err))
		}
	}

	if err := verifyDistinctMountIDs(before, p1Paths); err != nil {
		return wrapErr(KindSyscall, fmt.Errorf("verify mount isolation: %w", err))
	}

	// From here on there is no path back to a usable capability set:
	// Seal must run before exec on every remaining line, success or
	// failure, since a jailed program must never inherit a permitted set
	// wider than nothing at all.
	if err := caps.Seal(); err != nil {
		return wrapErr(KindSyscall, fmt.Errorf("seal capability state: %w", err))
	}

	argv := opts.Argv
	if opts.interactive() {
		argv = []string{"/bin/sh", "-i"}
	}

	if err := syscall.Exec(resolveExecPath(argv[0]), argv, environ()); err != nil {
		return wrapErr(KindExec, fmt.Errorf("exec %s: %w", argv[0], err))
	}

	return nil
}
