package kernelutil

import (
	"testing"

	"github.com/spf13/afero"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

func TestRelease(t *testing.T) {
	rel, err := Release()
	if err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if rel == "" {
		t.Errorf("Release() returned empty string")
	}
}

func TestParseRelease(t *testing.T) {
	major, minor, err := ParseRelease("6.5.0-rc1")
	if err != nil {
		t.Fatalf("ParseRelease() failed: %v", err)
	}
	if major != 6 || minor != 5 {
		t.Errorf("ParseRelease() = %d.%d, want 6.5", major, minor)
	}

	if _, _, err := ParseRelease("bogus"); err == nil {
		t.Errorf("ParseRelease(bogus) succeeded, want error")
	}
}

func TestAtLeast(t *testing.T) {
	ok, err := AtLeast(2, 6)
	if err != nil {
		t.Fatalf("AtLeast(2, 6) failed: %v", err)
	}
	if !ok {
		t.Errorf("AtLeast(2, 6) = false, want true on any supported host")
	}
}

func TestReadWriteIDMapFileOnMemFs(t *testing.T) {
	orig := appFs
	appFs = afero.NewMemMapFs()
	defer func() { appFs = orig }()

	want := specs.LinuxIDMapping{ContainerID: 0, HostID: 1000, Size: 1}
	if err := writeIDMapFile("/proc/1/uid_map", want); err != nil {
		t.Fatalf("writeIDMapFile() failed: %v", err)
	}

	got, err := readIDMapFile("/proc/1/uid_map")
	if err != nil {
		t.Fatalf("readIDMapFile() failed: %v", err)
	}
	if got != want {
		t.Errorf("readIDMapFile() = %+v, want %+v", got, want)
	}
}
