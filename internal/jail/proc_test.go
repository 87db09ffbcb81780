package jail

import (
	"os"
	"testing"

	"github.com/sargun/appjail/internal/capset"
	"github.com/sargun/appjail/internal/utils"
)

// TestRemountProc needs CAP_SYS_ADMIN to replace /proc; run it inside the
// test binary's own mount namespace would also affect every other test in
// the same process, so it's skipped outside an explicit unshared run.
func TestRemountProc(t *testing.T) {
	if os.Getenv("APPJAIL_TEST_UNSHARED") == "" {
		t.Log("skipping live /proc remount outside an unshared mount namespace")
		return
	}

	caps, err := capset.Load()
	if err != nil {
		t.Fatalf("capset.Load() failed: %v", err)
	}
	if err := caps.Arm(); err != nil {
		t.Fatalf("Arm() failed: %v", err)
	}

	if err := RemountProc(caps); err != nil {
		t.Fatalf("RemountProc() failed: %v", err)
	}

	name, err := utils.GetFsName("/proc")
	if err != nil {
		t.Fatalf("GetFsName(/proc) failed: %v", err)
	}
	if name != "proc" {
		t.Errorf("GetFsName(/proc) = %q, want %q after remount", name, "proc")
	}
}
