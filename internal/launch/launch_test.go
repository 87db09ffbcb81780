package launch

import (
	"os"
	"testing"
)

func TestIsChild(t *testing.T) {
	os.Unsetenv(EnvChild)
	if IsChild() {
		t.Errorf("IsChild() = true with %s unset", EnvChild)
	}

	os.Setenv(EnvChild, "1")
	defer os.Unsetenv(EnvChild)
	if !IsChild() {
		t.Errorf("IsChild() = false with %s=1", EnvChild)
	}
}

func TestRunChildMissingOptions(t *testing.T) {
	os.Unsetenv(EnvOptions)
	if err := RunChild(); err == nil {
		t.Errorf("RunChild() succeeded with no %s set, want error", EnvOptions)
	}
}

func TestRunChildBadOptions(t *testing.T) {
	os.Setenv(EnvOptions, "{not json")
	defer os.Unsetenv(EnvOptions)
	if err := RunChild(); err == nil {
		t.Errorf("RunChild() succeeded with malformed %s, want error", EnvOptions)
	}
}
