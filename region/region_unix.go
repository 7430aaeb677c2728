//go:build unix && !linux

package region

import "os"

import "golang.org/x/sys/unix"

func mapanon(size int, populate, lock bool) ([]byte, bool, error) {
	prot, flags := unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE
	data, err := unix.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil, false, err
	}
	if populate { // touch every page.
		for off := 0; off < len(data); off += os.Getpagesize() {
			data[off] = 0
		}
	}
	return data, true, nil
}

func unmap(data []byte) error {
	return unix.Munmap(data)
}
