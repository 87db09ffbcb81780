package mount

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/sargun/appjail/internal/capset"
)

// ActiveSet tracks the absolute paths the mount shaper has successfully
// mounted onto, so that a failed pipeline run can unwind exactly what it
// put in place and nothing more.
type ActiveSet struct {
	paths mapset.Set
}

func NewActiveSet() *ActiveSet {
	return &ActiveSet{paths: mapset.NewSet()}
}

func (s *ActiveSet) Add(path string) {
	s.paths.Add(path)
}

func (s *ActiveSet) Remove(path string) {
	s.paths.Remove(path)
}

func (s *ActiveSet) Contains(path string) bool {
	return s.paths.Contains(path)
}

// Unwind lazily unmounts every tracked path through the capability
// gatekeeper -- the same audited path every other privileged mount
// operation in the pipeline goes through -- and clears the set. An error
// doesn't abort the loop, since the point of a teardown is to release as
// much as possible even if one mount refuses to go away; only the first
// error is returned.
func (s *ActiveSet) Unwind(caps *capset.State) error {
	var firstErr error
	for _, p := range s.paths.ToSlice() {
		path := p.(string)
		if err := caps.LazyUmount2(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.paths.Clear()
	return firstErr
}

func (s *ActiveSet) Len() int {
	return s.paths.Cardinality()
}
