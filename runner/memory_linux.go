// Copyright 2017, Kerby Shedden and the Muscato contributors.

//go:build linux

package runner

import (
	"os"

	"golang.org/x/sys/unix"
)

// MemoryUsed returns the percentage of physical memory in use.  Page
// cache is treated as free, so streaming large read files does not
// by itself raise the value.
func MemoryUsed() (float64, error) {

	fid, err := os.Open("/proc/meminfo")
	if err == nil {
		u, err := usedFromMeminfo(fid)
		fid.Close()
		if err == nil {
			return u, nil
		}
	}

	return sysinfoUsed()
}

// sysinfoUsed is the fallback when /proc/meminfo has no MemAvailable.
// Buffers and free memory count as free, page cache does not.
func sysinfoUsed() (float64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	if info.Totalram == 0 {
		return 0, nil
	}
	total := float64(info.Totalram)
	free := float64(info.Freeram) + float64(info.Bufferram)
	return 100 * (total - free) / total, nil
}
