package jail

import "testing"

func TestCaptureHomeEmptyHostDir(t *testing.T) {
	s := &ScratchRoot{}
	h, err := s.CaptureHome(nil, "")
	if err != nil {
		t.Fatalf("CaptureHome(\"\") failed: %v", err)
	}
	if h != nil {
		t.Errorf("CaptureHome(\"\") = %+v, want nil", h)
	}
}

func TestInstallNilHomeIsNoop(t *testing.T) {
	var h *Home
	if err := h.Install(nil); err != nil {
		t.Errorf("(*Home)(nil).Install() = %v, want nil", err)
	}
}
