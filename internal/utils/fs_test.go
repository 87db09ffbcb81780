package utils

import "testing"

func TestGetFsNameRoot(t *testing.T) {
	name, err := GetFsName("/")
	if err != nil {
		t.Fatalf("GetFsName(/) failed: %v", err)
	}
	if name == "" {
		t.Errorf("GetFsName(/) returned empty name")
	}
}

func TestGetFsNameProc(t *testing.T) {
	// /proc is always mounted and always procfs, regardless of the
	// underlying root filesystem of the test host.
	name, err := GetFsName("/proc")
	if err != nil {
		t.Fatalf("GetFsName(/proc) failed: %v", err)
	}
	if name != "proc" {
		t.Errorf("GetFsName(/proc) = %q, want %q", name, "proc")
	}
}
