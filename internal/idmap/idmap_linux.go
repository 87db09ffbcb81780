//go:build linux && idmapped_mnt && cgo
// +build linux,idmapped_mnt,cgo

// Package idmap implements an optional hardening of the home directory
// binder: instead of a plain bind mount, the home directory tree can be
// attached through an ID-mapped mount so that files the jailed process
// creates land on the host under the invoker's real uid/gid rather than
// whatever uid/gid the jail's user namespace maps uid 0 to.
//
// Requires a kernel new enough to support the open_tree(2)/move_mount(2)
// ID-mapped mount attribute (5.12+), and is opt-in at build time because it
// needs cgo to reach syscalls golang.org/x/sys/unix doesn't wrap.
package idmap

// #define _GNU_SOURCE
// #include <errno.h>
// #include <fcntl.h>
// #include <linux/mount.h>
// #include <stdlib.h>
// #include <sys/syscall.h>
// #include <unistd.h>
//
// static inline int
// open_tree(int dirfd, const char *filename, unsigned int flags)
// {
//     return syscall(SYS_open_tree, dirfd, filename, flags);
// }
//
// static inline int
// move_mount(int from_dirfd, const char *from_pathname,
//            int to_dirfd, const char *to_pathname, unsigned int flags)
// {
//     return syscall(SYS_move_mount, from_dirfd, from_pathname,
//                    to_dirfd, to_pathname, flags);
// }
import "C"

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// devBlacklist holds host paths that must never be ID-map mounted, even
// when the kernel otherwise supports it.
var devBlacklist = []string{"/dev/null"}

// fsBlacklist holds filesystem magic numbers known to misbehave under
// ID-mapped mounts.
var fsBlacklist = []int64{
	unix.TMPFS_MAGIC,
	unix.BTRFS_SUPER_MAGIC,
	0x65735546, // FUSE_SUPER_MAGIC
}

func openTree(dirFd int, path string, flags uint) (int, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	fd, err := C.open_tree(C.int(dirFd), cPath, C.uint(flags))
	if err != nil {
		return -1, err
	}
	return int(fd), nil
}

func moveMount(fromDirFd int, fromPath string, toDirFd int, toPath string, flags uint) error {
	cFrom := C.CString(fromPath)
	cTo := C.CString(toPath)
	defer C.free(unsafe.Pointer(cFrom))
	defer C.free(unsafe.Pointer(cTo))

	if _, err := C.move_mount(C.int(fromDirFd), cFrom, C.int(toDirFd), cTo, C.uint(flags)); err != nil {
		return err
	}
	return nil
}

// Mount clones the mount at mountPath and re-attaches it with the
// MOUNT_ATTR_IDMAP attribute set to the user namespace at usernsPath, so
// that uid/gid 0 as seen through the mount maps to whatever the user
// namespace maps uid/gid 0 to. If unmountFirst is set, the original
// mountPath mount is detached first to avoid leaving a redundant stacked
// mount behind.
func Mount(usernsPath, mountPath string, unmountFirst bool) error {
	usernsFd, err := os.Open(usernsPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", usernsPath, err)
	}
	defer usernsFd.Close()

	resolved, err := filepath.EvalSymlinks(mountPath)
	if err != nil {
		return fmt.Errorf("eval symlinks on %s: %w", mountPath, err)
	}

	fdTree, err := openTree(-1, resolved,
		uint(C.OPEN_TREE_CLONE|C.OPEN_TREE_CLOEXEC|unix.AT_EMPTY_PATH|unix.AT_RECURSIVE))
	if err != nil {
		return errors.Wrapf(err, "open_tree %s", resolved)
	}
	defer unix.Close(fdTree)

	attr := &unix.MountAttr{
		Attr_set:  unix.MOUNT_ATTR_IDMAP,
		Userns_fd: uint64(usernsFd.Fd()),
	}
	if err := unix.MountSetattr(fdTree, "", unix.AT_EMPTY_PATH|unix.AT_RECURSIVE, attr); err != nil {
		return errors.Wrapf(err, "mount_setattr %s", resolved)
	}

	if unmountFirst {
		if err := unix.Unmount(resolved, unix.MNT_DETACH); err != nil {
			return fmt.Errorf("detach original mount at %s: %w", resolved, err)
		}
	}

	if err := moveMount(fdTree, "", -1, resolved, C.MOVE_MOUNT_F_EMPTY_PATH); err != nil {
		return fmt.Errorf("move_mount onto %s: %w", resolved, err)
	}

	return nil
}

// SupportedOnPath reports whether path's underlying filesystem is known to
// support ID-mapped mounts.
func SupportedOnPath(path string) (bool, error) {
	for _, d := range devBlacklist {
		if path == d {
			return false, nil
		}
	}

	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return false, err
	}

	for _, magic := range fsBlacklist {
		if fs.Type == magic {
			return false, nil
		}
	}

	return true, nil
}
