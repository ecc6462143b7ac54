//go:build !helperdebug

package shutdown

func maybeDumpMemStats() {}
