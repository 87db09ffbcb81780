package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckPermissions walks path and every ancestor up to the filesystem
// root, requiring each to be owned by root and writable only by its
// owner. A configuration file is only as trustworthy as the directories
// that could otherwise be used to replace it out from under a setuid or
// capability-bearing caller, so the check has to cover the whole chain,
// not just the file itself.
func CheckPermissions(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	if err := checkOwnerAndMode(abs); err != nil {
		return err
	}

	dir := filepath.Dir(abs)
	return checkDirectoryPermissions(dir)
}

func checkDirectoryPermissions(dir string) error {
	if err := checkOwnerAndMode(dir); err != nil {
		return err
	}
	if dir == "/" || dir == "." {
		return nil
	}
	return checkDirectoryPermissions(filepath.Dir(dir))
}

func checkOwnerAndMode(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	uid, err := ownerUID(st)
	if err != nil {
		return err
	}
	if uid != 0 {
		return fmt.Errorf("%s is not owned by root", path)
	}

	if st.Mode().Perm()&0022 != 0 {
		return fmt.Errorf("%s must only be writable by its owner", path)
	}

	return nil
}
