package config

import (
	"fmt"
	"os"
	"syscall"
)

func ownerUID(st os.FileInfo) (uint32, error) {
	sys, ok := st.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("stat_t unavailable for %s", st.Name())
	}
	return sys.Uid, nil
}
