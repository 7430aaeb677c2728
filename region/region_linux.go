//go:build linux

package region

import "golang.org/x/sys/unix"

func mapanon(size int, populate, lock bool) ([]byte, bool, error) {
	flags := unix.MAP_ANON | unix.MAP_PRIVATE
	if populate {
		flags |= unix.MAP_POPULATE
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		return nil, false, err
	}
	if lock {
		if err := unix.Mlock(data); err != nil {
			unix.Munmap(data)
			return nil, false, err
		}
	}
	return data, true, nil
}

func unmap(data []byte) error {
	return unix.Munmap(data)
}
