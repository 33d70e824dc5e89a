//go:build !windows

package vkrt

import "golang.org/x/sys/unix"

// cString returns a NUL-terminated copy of s.
func cString(s string) (*byte, error) {
	return unix.BytePtrFromString(s)
}
