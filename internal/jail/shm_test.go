package jail

import (
	"os"
	"testing"

	"github.com/sargun/appjail/internal/capset"
	"github.com/sargun/appjail/internal/utils"
)

func TestRebuildDevShm(t *testing.T) {
	if os.Getenv("APPJAIL_TEST_UNSHARED") == "" {
		t.Log("skipping live /dev/shm rebuild outside an unshared mount namespace")
		return
	}

	caps, err := capset.Load()
	if err != nil {
		t.Fatalf("capset.Load() failed: %v", err)
	}
	if err := caps.Arm(); err != nil {
		t.Fatalf("Arm() failed: %v", err)
	}

	if err := RebuildDevShm(caps, "16m"); err != nil {
		t.Fatalf("RebuildDevShm() failed: %v", err)
	}

	name, err := utils.GetFsName("/dev/shm")
	if err != nil {
		t.Fatalf("GetFsName(/dev/shm) failed: %v", err)
	}
	if name != "tmpfs" {
		t.Errorf("GetFsName(/dev/shm) = %q, want %q after rebuild", name, "tmpfs")
	}
}
