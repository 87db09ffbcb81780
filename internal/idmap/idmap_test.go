package idmap

import (
	"os"
	"testing"

	"github.com/sargun/appjail/internal/kernelutil"
)

func TestSupported(t *testing.T) {
	ok, err := kernelutil.AtLeast(5, 12)
	if err != nil {
		t.Fatal(err)
	}

	if ok {
		supported, err := Supported(os.TempDir())
		if err != nil {
			t.Fatalf("Supported() failed: %v", err)
		}
		if supported {
			t.Logf("ID-mapped mounts supported on this host.")
		} else {
			t.Logf("ID-mapped mounts not supported on this host.")
		}
	} else {
		t.Logf("kernel older than 5.12, ID-mapped mounts unavailable")
	}
}

func TestSupportedOnPath(t *testing.T) {
	ok, err := SupportedOnPath("/dev/null")
	if err != nil {
		t.Fatalf("SupportedOnPath(/dev/null) failed: %v", err)
	}
	if ok {
		t.Errorf("SupportedOnPath(/dev/null) = true, want false")
	}
}
