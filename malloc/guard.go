package malloc

import "unsafe"
import "encoding/binary"

import "github.com/bnclabs/mpool/api"

const (
	guardPool = uint16(0x4242) // block from the Mallocer
	guardSys  = uint16(0x5353) // block from golang heap
	guardHdr  = 4              // {guard uint16, length uint16}
	guardMax  = 0xffff
)

// Guarded is a malloc-family front-end over an api.Mallocer. Every block
// is prefixed with a 4-byte header carrying a guard and the requested
// length, so that Free and Realloc need no size from the caller. When
// the Mallocer cannot serve a request the block is allocated from the
// golang heap instead. Like Cache, Guarded shall be used by a single
// goroutine.
type Guarded struct {
	mallocer api.Mallocer

	// stats
	nmalloc, nfree, nrealloc int64
	nsysalloc, nsysfree      int64
	nsysrealloc              int64
}

// NewGuarded return a Guarded front-end for `mallocer`.
func NewGuarded(mallocer api.Mallocer) *Guarded {
	return &Guarded{mallocer: mallocer}
}

// Malloc return a block of `size` bytes, nil if size is negative.
func (g *Guarded) Malloc(size int) []byte {
	if size < 0 {
		return nil
	}
	if buf := g.poolalloc(size); buf != nil {
		g.nmalloc++
		return buf
	}
	g.nsysalloc++
	return g.sysalloc(size)
}

// Calloc return a zeroed block for `n` elements of `size` bytes each.
// Return nil if the total size is zero or overflows.
func (g *Guarded) Calloc(n, size int) []byte {
	if n <= 0 || size <= 0 {
		return nil
	}
	total := n * size
	if total/n != size {
		return nil
	}
	buf := g.Malloc(total)
	clear(buf)
	return buf
}

// Free block returned by Malloc, Calloc or Realloc. Free on nil is a
// no-op. Panic with ErrorBadGuard if the block header is corrupt.
func (g *Guarded) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	hdr, guard, length := header(buf)
	switch guard {
	case guardPool:
		binary.LittleEndian.PutUint16(hdr, 0)
		g.mallocer.Free(unsafe.Pointer(&hdr[0]), int64(length)+guardHdr)
		g.nfree++
	case guardSys:
		binary.LittleEndian.PutUint16(hdr, 0)
		g.nsysfree++
	default:
		panic(ErrorBadGuard)
	}
}

// Realloc block to `size` bytes, preserving content upto the smaller of
// old and new length. A nil block behaves like Malloc. Return nil if
// size is negative, in which case `buf` is left untouched.
func (g *Guarded) Realloc(buf []byte, size int) []byte {
	if cap(buf) == 0 {
		return g.Malloc(size)
	} else if size < 0 {
		return nil
	}

	hdr, guard, length := header(buf)
	switch guard {
	case guardPool:
		if size <= guardMax {
			ptr := unsafe.Pointer(&hdr[0])
			oldsz, newsz := int64(length)+guardHdr, int64(size)+guardHdr
			if newptr := g.mallocer.Realloc(ptr, oldsz, newsz, api.Nilflags); newptr != nil {
				g.nrealloc++
				return setheader(newptr, guardPool, size)
			}
		}
		// pool exhausted, move to heap.
		newbuf := g.sysalloc(size)
		copy(newbuf, buf[:length])
		g.Free(buf)
		g.nsysrealloc++
		return newbuf

	case guardSys:
		newbuf := g.sysalloc(size)
		copy(newbuf, buf)
		binary.LittleEndian.PutUint16(hdr, 0)
		g.nsysrealloc++
		return newbuf
	}
	panic(ErrorBadGuard)
}

// Stats return allocation counters, "mpool.*" for blocks served by the
// Mallocer and "sys.*" for blocks served by golang heap.
func (g *Guarded) Stats() map[string]interface{} {
	return map[string]interface{}{
		"mpool.alloc":   g.nmalloc,
		"mpool.free":    g.nfree,
		"mpool.realloc": g.nrealloc,
		"sys.alloc":     g.nsysalloc,
		"sys.free":      g.nsysfree,
		"sys.realloc":   g.nsysrealloc,
	}
}

func (g *Guarded) poolalloc(size int) []byte {
	if size > guardMax {
		return nil
	}
	ptr := g.mallocer.Alloc(int64(size)+guardHdr, api.Nilflags)
	if ptr == nil {
		return nil
	}
	return setheader(ptr, guardPool, size)
}

func (g *Guarded) sysalloc(size int) []byte {
	block := make([]byte, guardHdr+max(size, 1))
	return setheader(unsafe.Pointer(&block[0]), guardSys, size)
}

// setheader write header at ptr and return the block following it. The
// returned slice has capacity of at least one byte, so that its data
// pointer always locates the header.
func setheader(ptr unsafe.Pointer, guard uint16, size int) []byte {
	full := unsafe.Slice((*byte)(ptr), guardHdr+max(size, 1))
	length := size
	if length > guardMax {
		length = guardMax
	}
	binary.LittleEndian.PutUint16(full[0:], guard)
	binary.LittleEndian.PutUint16(full[2:], uint16(length))
	return full[guardHdr : guardHdr+size : guardHdr+max(size, 1)]
}

func header(buf []byte) (hdr []byte, guard, length uint16) {
	ptr := unsafe.Add(unsafe.Pointer(unsafe.SliceData(buf)), -guardHdr)
	hdr = unsafe.Slice((*byte)(ptr), guardHdr)
	return hdr, binary.LittleEndian.Uint16(hdr[0:]), binary.LittleEndian.Uint16(hdr[2:])
}
