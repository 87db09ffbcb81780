package jail

import (
	"os"
	"os/exec"
)

// resolveExecPath mirrors execvp's PATH search: name is returned
// unchanged if it's already a path (contains a slash) or isn't found on
// PATH, so the eventual exec failure reports the name the caller asked
// for rather than a resolution error masking it.
func resolveExecPath(name string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}

func environ() []string {
	return os.Environ()
}
