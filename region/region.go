// Package region acquire page aligned, resident memory regions outside
// golang heap, to be used as malloc arenas. On unix systems regions are
// anonymous private mappings, elsewhere they fall back to golang heap.
package region

import "errors"
import "fmt"
import "os"

import "github.com/bnclabs/mpool/lib"

// ErrorInvalidSize region size shall be greater than zero.
var ErrorInvalidSize = errors.New("region.invalidsize")

// ErrorClosed region is already unmapped.
var ErrorClosed = errors.New("region.closed")

// Region of memory obtained from OS.
type Region struct {
	data   []byte
	mapped bool
}

// Defaultsettings for region.
//
// "populate" (bool, default: true)
//		Pre-fault all pages while mapping, so that allocations from
//		the region do not take page faults.
//
// "lock" (bool, default: false)
//		Lock pages in memory, supported only on linux. Mapping fails
//		if the process is not allowed to lock `size` bytes.
func Defaultsettings() lib.Settings {
	return lib.Settings{
		"populate": true,
		"lock":     false,
	}
}

// Map a new region of atleast `size` bytes, rounded up to OS page size.
func Map(size int64, setts lib.Settings) (*Region, error) {
	if size <= 0 {
		return nil, ErrorInvalidSize
	}
	setts = make(lib.Settings).Mixin(Defaultsettings(), setts)
	pagesize := int64(os.Getpagesize())
	size = ((size + pagesize - 1) / pagesize) * pagesize
	if size > int64(^uint(0)>>1) {
		return nil, ErrorInvalidSize
	}

	data, mapped, err := mapanon(int(size), setts.Bool("populate"), setts.Bool("lock"))
	if err != nil {
		return nil, fmt.Errorf("region.map %v bytes: %w", size, err)
	}
	return &Region{data: data, mapped: mapped}, nil
}

// Bytes return the region's memory, nil once closed.
func (r *Region) Bytes() []byte {
	return r.data
}

// Size of region in bytes.
func (r *Region) Size() int64 {
	return int64(len(r.data))
}

// Mapped return true if region is mapped outside golang heap.
func (r *Region) Mapped() bool {
	return r.mapped
}

// Close unmap the region, memory shall not be accessed after this.
func (r *Region) Close() error {
	if r.data == nil {
		return ErrorClosed
	}
	data := r.data
	r.data = nil
	if !r.mapped {
		return nil
	}
	return unmap(data)
}
