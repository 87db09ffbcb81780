package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := defaults()
	if d.AllowNewPrivsPermitted {
		t.Errorf("default AllowNewPrivsPermitted = true, want false")
	}
	if d.RunModeDefault != RunPrivate {
		t.Errorf("default RunModeDefault = %v, want %v", d.RunModeDefault, RunPrivate)
	}
}

func TestParseRunMode(t *testing.T) {
	if m, err := parseRunMode("private"); err != nil || m != RunPrivate {
		t.Errorf("parseRunMode(private) = (%v, %v), want (%v, nil)", m, err, RunPrivate)
	}
	if m, err := parseRunMode("host"); err != nil || m != RunHost {
		t.Errorf("parseRunMode(host) = (%v, %v), want (%v, nil)", m, err, RunHost)
	}
	if _, err := parseRunMode("bogus"); err == nil {
		t.Errorf("parseRunMode(bogus) succeeded, want error")
	}
}

func TestLoadRejectsWorldWritableFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/appjail.conf"
	if err := os.WriteFile(path, []byte("[Defaults]\nRun=private\n"), 0666); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// os.WriteFile's mode is subject to umask; force it explicitly so the
	// test doesn't depend on the umask of whatever runs it.
	if err := os.Chmod(path, 0666); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("Load() on a world-writable file succeeded, want error")
	}
}
