package mount

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Info describes a single line of /proc/<pid>/mountinfo.
type Info struct {
	ID         int
	Parent     int
	Major      int
	Minor      int
	Root       string
	Mountpoint string
	Opts       string
	Optional   string
	Fstype     string
	Source     string
	VfsOpts    string
}

func parseMountTable() ([]*Info, error) {
	return parseMountTableForPid(0)
}

func parseMountTableForPid(pid uint32) ([]*Info, error) {
	path := "/proc/self/mountinfo"
	if pid != 0 {
		path = fmt.Sprintf("/proc/%d/mountinfo", pid)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var infos []*Info

	s := bufio.NewScanner(f)
	for s.Scan() {
		info, err := parseMountInfoLine(s.Text())
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return infos, nil
}

// parseMountInfoLine parses a single line of the following form:
//
//	36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw,errors=continue
//
// The "master:1" entry is the (possibly empty) set of optional fields, which
// is terminated by a literal "-" separator before the filesystem type, mount
// source and per-superblock options.
func parseMountInfoLine(line string) (*Info, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return nil, fmt.Errorf("invalid mountinfo line: %q", line)
	}

	sepIdx := -1
	for i := 6; i < len(fields); i++ {
		if fields[i] == "-" {
			sepIdx = i
			break
		}
	}
	if sepIdx == -1 || len(fields)-sepIdx-1 < 3 {
		return nil, fmt.Errorf("invalid mountinfo line (missing separator): %q", line)
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid mount id in %q: %w", line, err)
	}
	parent, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid parent id in %q: %w", line, err)
	}

	majorMinor := strings.SplitN(fields[2], ":", 2)
	if len(majorMinor) != 2 {
		return nil, fmt.Errorf("invalid major:minor in %q: %w", line, err)
	}
	major, err := strconv.Atoi(majorMinor[0])
	if err != nil {
		return nil, fmt.Errorf("invalid major in %q: %w", line, err)
	}
	minor, err := strconv.Atoi(majorMinor[1])
	if err != nil {
		return nil, fmt.Errorf("invalid minor in %q: %w", line, err)
	}

	info := &Info{
		ID:         id,
		Parent:     parent,
		Major:      major,
		Minor:      minor,
		Root:       fields[3],
		Mountpoint: fields[4],
		Opts:       fields[5],
		Optional:   strings.Join(fields[6:sepIdx], " "),
		Fstype:     fields[sepIdx+1],
		Source:     fields[sepIdx+2],
		VfsOpts:    fields[sepIdx+3],
	}

	return info, nil
}
