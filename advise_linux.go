//go:build linux

package phf

import "golang.org/x/sys/unix"

// adviseRandom hints that lookups touch the mapped table in random order,
// which disables readahead. Best-effort: errors are silently ignored.
func adviseRandom(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
