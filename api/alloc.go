package api

import "unsafe"

// Mallocer interface for size-classed memory management. Chunks carry no
// header, callers must remember the size passed to Alloc and supply a size
// that maps to the same class on Free and Realloc.
type Mallocer interface {
	// Alloc a chunk that can hold `size` bytes. Return nil if size exceeds
	// the largest class or the class is exhausted. `flags` is reserved.
	Alloc(size int64, flags int) unsafe.Pointer

	// Free chunk allocated for `size` bytes. Free on nil is a no-op.
	Free(ptr unsafe.Pointer, size int64)

	// Realloc chunk from `oldsize` to `newsize`, content upto the smaller
	// of the two sizes is preserved. Return nil on failure, in which case
	// the original chunk is left untouched.
	Realloc(ptr unsafe.Pointer, oldsize, newsize int64, flags int) unsafe.Pointer
}

// Memchecker interface for memory-debugging instrumentation. Allocators
// call these hooks at pool creation, allocation and free; implementations
// may track, poison or simply ignore them.
type Memchecker interface {
	// Createpool registers sub-arena `block` managing chunks of
	// `elemsize` bytes for size class `class`.
	Createpool(class int, block []byte, elemsize int64)

	// Destroypool deregisters size class `class`.
	Destroypool(class int)

	// Poolalloc marks chunk at `ptr` from `class` as allocated.
	Poolalloc(class int, ptr unsafe.Pointer, elemsize int64)

	// Poolfree marks chunk at `ptr` from `class` as free.
	Poolfree(class int, ptr unsafe.Pointer)

	// Makenoaccess marks `n` bytes starting from `ptr` as inaccessible.
	Makenoaccess(ptr unsafe.Pointer, n int64)

	// Makeundefined marks `n` bytes starting from `ptr` as accessible,
	// but with undefined content.
	Makeundefined(ptr unsafe.Pointer, n int64)

	// Makedefined marks `n` bytes starting from `ptr` as accessible and
	// defined.
	Makedefined(ptr unsafe.Pointer, n int64)
}
