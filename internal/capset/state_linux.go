package capset

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Minimum is the effective-capability baseline the gatekeeper holds for the
// entire pipeline: just enough to mount/unmount (CAP_SYS_ADMIN) and to
// normalize ownership on the overlays it builds (CAP_CHOWN). Individual
// privileged wrappers only ever need to add capabilities on top of this,
// never capabilities this baseline doesn't already grant a path to via the
// permitted set.
var Minimum = []uintptr{unix.CAP_SYS_ADMIN, unix.CAP_CHOWN}

// State is the gatekeeper's handle on the calling thread's capability sets.
// It implements the three-state machine from the capability gatekeeper's
// contract: armed (effective == Minimum), draining (a wrapper has
// transiently raised something beyond Minimum), and sealed (everything
// dropped for good).
type State struct {
	hdr       capHeader
	permitted [2]uint32
	inherit   [2]uint32
	effective [2]uint32
	sealed    bool
}

// Load reads the calling thread's current capability sets and returns a
// State positioned at whatever the parent handed down -- callers must call
// Arm before relying on Minimum being the effective baseline.
func Load() (*State, error) {
	hdr := capHeader{version: capVersion3}
	var data [2]capData

	if err := capget(&hdr, &data[0]); err != nil {
		return nil, fmt.Errorf("capget: %w", err)
	}

	s := &State{hdr: hdr}
	s.permitted[0], s.permitted[1] = data[0].permitted, data[1].permitted
	s.inherit[0], s.inherit[1] = data[0].inheritable, data[1].inheritable
	s.effective[0], s.effective[1] = data[0].effective, data[1].effective

	return s, nil
}

func bit(c uintptr) (word int, mask uint32) {
	if c > 31 {
		return 1, uint32(1) << (uint(c) - 32)
	}
	return 0, uint32(1) << uint(c)
}

// Arm drops the effective set to exactly Minimum, leaving permitted (and
// therefore the ability to re-raise) untouched. This is the gatekeeper's
// drop_caps(): the pipeline enters the "armed" state from whatever the
// parent left behind.
func (s *State) Arm() error {
	var eff [2]uint32
	for _, c := range Minimum {
		w, m := bit(c)
		eff[w] |= m
	}
	return s.setEffective(eff)
}

func (s *State) setEffective(eff [2]uint32) error {
	data := [2]capData{
		{effective: eff[0], permitted: s.permitted[0], inheritable: s.inherit[0]},
		{effective: eff[1], permitted: s.permitted[1], inheritable: s.inherit[1]},
	}
	if err := capset(&s.hdr, &data[0]); err != nil {
		return fmt.Errorf("capset: %w", err)
	}
	s.effective = eff
	return nil
}

// Raise transiently adds caps to the effective set on top of whatever is
// currently effective, and returns a function that restores the exact
// prior effective set. Callers must defer the restore immediately so it
// runs on every exit path, including a failing syscall:
//
//	restore, err := state.Raise(unix.CAP_SYS_ADMIN)
//	if err != nil { return err }
//	defer restore()
func (s *State) Raise(caps ...uintptr) (restore func(), err error) {
	if s.sealed {
		return nil, fmt.Errorf("capability state is sealed")
	}

	prior := s.effective

	next := s.effective
	for _, c := range caps {
		w, m := bit(c)
		next[w] |= m
	}

	if err := s.setEffective(next); err != nil {
		return nil, err
	}

	return func() {
		// The restore closure has no error return: a failed restore is
		// not reported to the caller and does not end the process, and
		// s.effective then still records the raised set.
		s.setEffective(prior)
	}, nil
}

// Mount is the cap_mount() wrapper: it raises CAP_SYS_ADMIN, performs the
// mount, and unconditionally restores the effective set before returning.
func (s *State) Mount(source, target, fstype string, flags uintptr, data string) error {
	restore, err := s.Raise(unix.CAP_SYS_ADMIN)
	if err != nil {
		return fmt.Errorf("raise CAP_SYS_ADMIN for mount %s: %w", target, err)
	}
	defer restore()

	if err := unix.Mount(source, target, fstype, flags, data); err != nil {
		return fmt.Errorf("mount %s -> %s: %w", source, target, err)
	}
	return nil
}

// Umount2 is the cap_umount2() wrapper.
func (s *State) Umount2(target string, flags int) error {
	restore, err := s.Raise(unix.CAP_SYS_ADMIN)
	if err != nil {
		return fmt.Errorf("raise CAP_SYS_ADMIN for umount2 %s: %w", target, err)
	}
	defer restore()

	if err := unix.Unmount(target, flags); err != nil {
		return fmt.Errorf("umount2 %s: %w", target, err)
	}
	return nil
}

// LazyUmount2 is Umount2 with MNT_DETACH, tolerating the "not currently a
// mount point" condition the pipeline treats as benign.
func (s *State) LazyUmount2(target string) error {
	if err := s.Umount2(target, unix.MNT_DETACH); err != nil {
		if uerr, ok := rootCause(err).(unix.Errno); ok && uerr == unix.EINVAL {
			return nil
		}
		return err
	}
	return nil
}

// Chown is the cap_chown() wrapper.
func (s *State) Chown(path string, uid, gid int) error {
	restore, err := s.Raise(unix.CAP_CHOWN)
	if err != nil {
		return fmt.Errorf("raise CAP_CHOWN for chown %s: %w", path, err)
	}
	defer restore()

	if err := unix.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}

// Seal is drop_caps_forever(): it drops the bounding set to nothing and
// clears permitted, effective and inheritable. After Seal returns
// successfully, no further call on s will succeed, and no syscall in this
// process (or anything it execs) can regain a dropped capability.
func (s *State) Seal() error {
	// PR_CAPBSET_DROP requires CAP_SETPCAP in the calling thread's
	// effective set (capabilities(7)); Minimum never carries it, so it
	// has to be raised here just like any other privileged wrapper.
	restore, err := s.Raise(unix.CAP_SETPCAP)
	if err != nil {
		return fmt.Errorf("raise CAP_SETPCAP to drop bounding set: %w", err)
	}
	defer restore()

	if err := DropBoundingExcept(nil); err != nil {
		return fmt.Errorf("drop bounding set: %w", err)
	}

	data := [2]capData{}
	if err := capset(&s.hdr, &data[0]); err != nil {
		return fmt.Errorf("capset (seal): %w", err)
	}

	s.permitted = [2]uint32{}
	s.inherit = [2]uint32{}
	s.effective = [2]uint32{}
	s.sealed = true

	return nil
}

// Sealed reports whether Seal has already completed.
func (s *State) Sealed() bool {
	return s.sealed
}

func rootCause(err error) error {
	type unwrapper interface{ Unwrap() error }
	for {
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}
