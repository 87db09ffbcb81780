// Package launch is the parent-side half of the jail: it clones a child
// into fresh mount, PID and user namespaces, re-execs the running binary
// inside that child with a trigger environment variable set, and
// monitors the child for the lifetime of the launch. The child side,
// once it observes the trigger variable, runs internal/jail's pipeline
// and never returns to this package.
package launch

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/sargun/appjail/internal/jail"
)

const (
	// EnvChild is set in the cloned child's environment to signal that
	// the running binary should run the jail pipeline instead of its
	// normal parent-side startup path.
	EnvChild = "APPJAIL_CHILD"
	// EnvOptions carries the JSON-encoded jail.LaunchOptions the parent
	// assembled, so the child doesn't have to re-derive them after losing
	// its original argv/environment context across the re-exec.
	EnvOptions = "APPJAIL_CHILD_OPTIONS"
)

// IsChild reports whether the running process is the re-exec'd child,
// i.e. whether main should hand off to RunChild instead of Launch.
func IsChild() bool {
	return os.Getenv(EnvChild) == "1"
}

// RunChild decodes the options the parent passed down and runs the jail
// pipeline. It only returns on error -- success means jail.Run already
// replaced this process's image via exec.
func RunChild() error {
	// capset.State and the pipeline built on top of it raise and restore
	// capabilities on the calling OS thread, not the process as a whole;
	// without this the Go scheduler is free to move the goroutine to a
	// different thread mid-pipeline and desynchronize which thread actually
	// holds the capability set a later syscall assumes is still raised.
	runtime.LockOSThread()

	raw := os.Getenv(EnvOptions)
	if raw == "" {
		return fmt.Errorf("missing %s in child environment", EnvOptions)
	}

	var opts jail.LaunchOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return fmt.Errorf("decode child options: %w", err)
	}

	if !opts.AllowNewPrivs {
		if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
			return fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", err)
		}
	}

	return jail.Run(opts)
}

// Launch clones a child in fresh mount, PID and user namespaces and
// re-execs the calling binary inside it with EnvChild set, mapping the
// calling user to root inside the new user namespace (the only identity
// the jail pipeline's capability gatekeeper is ever armed for). The
// child inherits this process's stdio, so whatever terminal is attached
// here is the one internal/jail's TTY rebinder captures and moves.
func Launch(opts jail.LaunchOptions) (*exec.Cmd, error) {
	id := uuid.New().String()
	log := logrus.WithField("launch_id", id)

	encoded, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode launch options: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve own executable: %w", err)
	}

	cloneFlags := syscall.CLONE_NEWNS | syscall.CLONE_NEWPID | syscall.CLONE_NEWUSER
	if opts.PrivateNetwork {
		cloneFlags |= syscall.CLONE_NEWNET
	}

	uid := os.Getuid()
	gid := os.Getgid()

	cmd := exec.Command(self)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=1", EnvChild),
		fmt.Sprintf("%s=%s", EnvOptions, string(encoded)),
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: uintptr(cloneFlags),
		UidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: uid, Size: 1},
		},
		GidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: gid, Size: 1},
		},
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start child: %w", err)
	}
	log.WithField("pid", cmd.Process.Pid).Debug("sandbox child started")

	return cmd, nil
}

// Wait blocks until the child exits, translating a signal-terminated
// child into a plain error the caller can log, rather than the raw
// *exec.ExitError type assertion dance.
func Wait(cmd *exec.Cmd) error {
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return fmt.Errorf("child terminated by signal %s", status.Signal())
		}
	}
	return err
}

// ForwardSignals relays SIGINT and SIGTERM delivered to this process
// onto the child's pid, using a pidfd so the signal can never land on a
// reused pid if the child has already exited by the time the signal
// arrives. It returns a stop function that must be called once the
// child has been waited on, to release the pidfd and the signal
// subscription.
func ForwardSignals(pid int) (stop func(), err error) {
	pfd, err := openPidFd(pid)
	if err != nil {
		return nil, fmt.Errorf("open pidfd for %d: %w", pid, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if s, ok := sig.(syscall.Signal); ok {
					pfd.sendSignal(s)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigCh)
		pfd.close()
	}, nil
}
