//go:build linux

package codegen

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile sets the table file size, reserving disk blocks where the
// filesystem supports it so that writes through the map cannot SIGBUS.
func fallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	// NFS and some other filesystems reject fallocate; the size is still set.
	_ = unix.Fallocate(fd, 0, 0, size)
	return unix.Ftruncate(fd, size)
}
