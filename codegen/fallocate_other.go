//go:build !linux && !darwin

package codegen

import "os"

// fallocateFile sets the table file size. Disk blocks may not be reserved.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
