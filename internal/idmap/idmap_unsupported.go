//go:build !linux || !idmapped_mnt || !cgo
// +build !linux !idmapped_mnt !cgo

package idmap

import "fmt"

func Mount(usernsPath, mountPath string, unmountFirst bool) error {
	return fmt.Errorf("idmapped home mounts unsupported in this build (requires linux, cgo, and -tags idmapped_mnt)")
}

func SupportedOnPath(path string) (bool, error) {
	return false, nil
}
