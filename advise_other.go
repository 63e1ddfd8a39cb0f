//go:build !linux

package phf

// adviseRandom is a no-op on non-Linux platforms.
func adviseRandom(data []byte) {}
