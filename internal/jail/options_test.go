package jail

import "testing"

func TestInteractive(t *testing.T) {
	cases := []struct {
		argv []string
		want bool
	}{
		{nil, true},
		{[]string{}, true},
		{[]string{"/bin/echo", "hi"}, false},
	}

	for _, c := range cases {
		o := LaunchOptions{Argv: c.argv}
		if got := o.interactive(); got != c.want {
			t.Errorf("LaunchOptions{Argv: %v}.interactive() = %v, want %v", c.argv, got, c.want)
		}
	}
}
