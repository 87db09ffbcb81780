package mount

import "testing"

func TestIsMountPointRoot(t *testing.T) {
	ok, err := IsMountPoint("/")
	if err != nil {
		t.Fatalf("IsMountPoint(/) failed: %v", err)
	}
	if !ok {
		t.Errorf("IsMountPoint(/) = false, want true")
	}
}

func TestGetMounts(t *testing.T) {
	mounts, err := GetMounts()
	if err != nil {
		t.Fatalf("GetMounts() failed: %v", err)
	}
	if len(mounts) == 0 {
		t.Fatalf("GetMounts() returned no mounts")
	}
	if !FindMount("/", mounts) {
		t.Errorf("FindMount(/) = false, want true")
	}
}

func TestParseMountInfoLine(t *testing.T) {
	line := "36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw,errors=continue"
	info, err := parseMountInfoLine(line)
	if err != nil {
		t.Fatalf("parseMountInfoLine failed: %v", err)
	}
	if info.ID != 36 || info.Parent != 35 {
		t.Errorf("unexpected id/parent: %d/%d", info.ID, info.Parent)
	}
	if info.Major != 98 || info.Minor != 0 {
		t.Errorf("unexpected major/minor: %d:%d", info.Major, info.Minor)
	}
	if info.Mountpoint != "/mnt2" {
		t.Errorf("Mountpoint = %q, want /mnt2", info.Mountpoint)
	}
	if info.Fstype != "ext3" || info.Source != "/dev/root" {
		t.Errorf("Fstype/Source = %q/%q, want ext3//dev/root", info.Fstype, info.Source)
	}
	if info.VfsOpts != "rw,errors=continue" {
		t.Errorf("VfsOpts = %q", info.VfsOpts)
	}
	if info.Optional != "master:1" {
		t.Errorf("Optional = %q, want master:1", info.Optional)
	}
}

func TestOptionsToFlags(t *testing.T) {
	flags := OptionsToFlags([]string{"ro", "nosuid", "nodev"})
	if flags == 0 {
		t.Errorf("OptionsToFlags returned 0")
	}
}

func TestActiveSet(t *testing.T) {
	s := NewActiveSet()
	s.Add("/tmp/a")
	s.Add("/tmp/b")
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Contains("/tmp/a") {
		t.Errorf("Contains(/tmp/a) = false, want true")
	}
	s.Remove("/tmp/a")
	if s.Contains("/tmp/a") {
		t.Errorf("Contains(/tmp/a) = true after Remove, want false")
	}
}
