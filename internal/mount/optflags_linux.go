package mount

import "golang.org/x/sys/unix"

var mountFlagTable = map[string]int{
	"ro":          unix.MS_RDONLY,
	"nosuid":      unix.MS_NOSUID,
	"nodev":       unix.MS_NODEV,
	"noexec":      unix.MS_NOEXEC,
	"noatime":     unix.MS_NOATIME,
	"nodiratime":  unix.MS_NODIRATIME,
	"relatime":    unix.MS_RELATIME,
	"strictatime": unix.MS_STRICTATIME,
	"sync":        unix.MS_SYNCHRONOUS,
	"dirsync":     unix.MS_DIRSYNC,
}

func optToFlag(opts []string) int {
	flags := 0
	for _, opt := range opts {
		if f, ok := mountFlagTable[opt]; ok {
			flags |= f
		}
	}
	return flags
}
