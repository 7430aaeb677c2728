package malloc

import "unsafe"

import "github.com/bnclabs/mpool/lib"

// tcache per size class free chunks owned by a single goroutine.
type tcache struct {
	pool     *pool
	nfree    int
	freelist [2*Batchsize + 1]uint32
}

// Cache front-ends an Mpool for a single goroutine. Alloc and Free are
// served from the cache's own free lists, touching the shared pools
// only to refill an empty list or drain an overflowing one. A Cache
// shall not be used concurrently, but a chunk can be freed into any
// cache of the same Mpool. Close the cache when the goroutine is done
// with it, else its resident chunks are lost to other goroutines.
type Cache struct {
	mpool  *Mpool
	caches [Maxclasses]tcache
}

// Alloc implement api.Mallocer{} interface. Return nil if size is
// beyond the largest class or the class is exhausted.
func (c *Cache) Alloc(size int64, flags int) unsafe.Pointer {
	ptr, _ := c.Tryalloc(size, flags)
	return ptr
}

// Tryalloc is same as Alloc, but return the reason for failure as
// ErrorSizeOverflow or ErrorOutofMemory.
func (c *Cache) Tryalloc(size int64, flags int) (unsafe.Pointer, error) {
	mp := c.mpool
	class := mp.classof(size)
	if class >= mp.nclasses {
		return nil, ErrorSizeOverflow
	}

	tc := &c.caches[class]
	if tc.nfree == 0 && !tc.pool.refill(tc) {
		debugf("%v pool[%v] exhausted\n", mp.logprefix, tc.pool.elemsize)
		return nil, ErrorOutofMemory
	}
	tc.nfree--
	ptr := tc.pool.pointer(tc.freelist[tc.nfree])

	if mp.mcheck != nil {
		elemsize := tc.pool.elemsize
		mp.mcheck.Poolalloc(class, ptr, elemsize)
		mp.mcheck.Makeundefined(ptr, size)
		if size < elemsize {
			mp.mcheck.Makenoaccess(unsafe.Add(ptr, size), elemsize-size)
		}
	}
	return ptr, nil
}

// Free implement api.Mallocer{} interface. Size shall map to the same
// class as the size supplied to Alloc. Panic if size is beyond the
// largest class.
func (c *Cache) Free(ptr unsafe.Pointer, size int64) {
	if ptr == nil {
		return
	}
	mp := c.mpool
	class := mp.classof(size)
	if class >= mp.nclasses {
		panicerr("Free size %v exceeds largest class %v", size, mp.pagesize)
	}

	tc := &c.caches[class]
	slot := tc.pool.slotof(ptr)
	if mp.mcheck != nil {
		mp.mcheck.Poolfree(class, ptr)
		mp.mcheck.Makedefined(ptr, wordsize)
	}
	if debugmode && mp.poison {
		poisonchunk(ptr, tc.pool.elemsize)
	}

	tc.freelist[tc.nfree] = slot
	if tc.nfree++; tc.nfree > 2*Batchsize {
		tc.pool.drain(tc)
	}
}

// Realloc implement api.Mallocer{} interface. If both sizes map to the
// same class the chunk is returned as is, else a new chunk is allocated,
// min(oldsize, newsize) bytes copied and the old chunk freed. Return nil
// if allocation fails, the old chunk is still valid in that case.
func (c *Cache) Realloc(
	ptr unsafe.Pointer, oldsize, newsize int64, flags int) unsafe.Pointer {

	if ptr == nil && oldsize != 0 {
		return nil
	}

	mp := c.mpool
	class := mp.classof(newsize)
	if ptr != nil && class < mp.nclasses && class == mp.classof(oldsize) {
		if mp.mcheck != nil {
			if newsize > oldsize {
				mp.mcheck.Makeundefined(unsafe.Add(ptr, oldsize), newsize-oldsize)
			} else if newsize < oldsize {
				mp.mcheck.Makenoaccess(unsafe.Add(ptr, newsize), oldsize-newsize)
			}
		}
		return ptr
	}

	newptr := c.Alloc(newsize, flags)
	if newptr == nil || ptr == nil {
		return newptr
	}
	lib.Memcpy(newptr, ptr, int(min(oldsize, newsize)))
	c.Free(ptr, oldsize)
	return newptr
}

// Close move every chunk held by this cache back to their pools. The
// cache stays usable after Close.
func (c *Cache) Close() {
	for class := 0; class < c.mpool.nclasses; class++ {
		if tc := &c.caches[class]; tc.nfree > 0 {
			tc.pool.flush(tc)
		}
	}
}

// Available return number of free chunks held by this cache for `class`.
func (c *Cache) Available(class int) int {
	if class < 0 || class >= c.mpool.nclasses {
		return 0
	}
	return c.caches[class].nfree
}

// Cached return number of free chunks held by this cache, across all
// classes.
func (c *Cache) Cached() (n int) {
	for class := 0; class < c.mpool.nclasses; class++ {
		n += c.caches[class].nfree
	}
	return n
}
