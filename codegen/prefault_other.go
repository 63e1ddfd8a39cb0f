//go:build !linux

package codegen

// prefaultRegion is a no-op on non-Linux platforms.
func prefaultRegion(data []byte) {}
