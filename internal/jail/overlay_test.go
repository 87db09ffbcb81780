package jail

import "testing"

func TestPlaceholderName(t *testing.T) {
	cases := map[string]string{
		"/tmp":     "tmp",
		"/var/tmp": "vartmp",
		"/home":    "home",
	}
	for target, want := range cases {
		if got := placeholderName(target); got != want {
			t.Errorf("placeholderName(%q) = %q, want %q", target, got, want)
		}
	}
}

func TestPlaceholderNamePanicsOnUnknownPath(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("placeholderName(unknown) did not panic")
		}
	}()
	placeholderName("/etc")
}

func TestSensitivePathsOrderAndModes(t *testing.T) {
	want := []sensitivePath{
		{target: "/tmp", mode: 01777},
		{target: "/var/tmp", mode: 01777},
		{target: "/home", mode: 0755},
	}
	if len(sensitivePaths) != len(want) {
		t.Fatalf("len(sensitivePaths) = %d, want %d", len(sensitivePaths), len(want))
	}
	for i, w := range want {
		if sensitivePaths[i] != w {
			t.Errorf("sensitivePaths[%d] = %+v, want %+v", i, sensitivePaths[i], w)
		}
	}
}
