package malloc

import "errors"

// ErrorInvalidConfig cacheline or pagesize is not a power of 2, the
// resulting number of size classes exceeds Maxclasses, a weight is too
// large, or a class would exceed Maxchunks.
var ErrorInvalidConfig = errors.New("malloc.invalidconfig")

// ErrorArenaTooSmall arena, after alignment, is smaller than a cacheline.
var ErrorArenaTooSmall = errors.New("malloc.arenatoosmall")

// ErrorTooManyClasses more weights supplied than there are size classes.
var ErrorTooManyClasses = errors.New("malloc.toomanyclasses")

// ErrorZeroWeight all weights are zero, nothing to carve.
var ErrorZeroWeight = errors.New("malloc.zeroweight")

// ErrorOutofMemory size class exhausted, pool does not hold enough free
// chunks to refill a cache.
var ErrorOutofMemory = errors.New("malloc.outofmemory")

// ErrorSizeOverflow requested size is larger than the largest class.
var ErrorSizeOverflow = errors.New("malloc.sizeoverflow")

// ErrorBadGuard guarded block carries a corrupt header.
var ErrorBadGuard = errors.New("malloc.badguard")

// ErrorDoubleAlloc chunk handed out while it is still allocated.
var ErrorDoubleAlloc = errors.New("malloc.doublealloc")

// ErrorDoubleFree chunk freed while it is not allocated.
var ErrorDoubleFree = errors.New("malloc.doublefree")

// ErrorInvalidFree pointer does not address a chunk in any pool.
var ErrorInvalidFree = errors.New("malloc.invalidfree")

// ErrorOverrun bytes beyond the requested size were written.
var ErrorOverrun = errors.New("malloc.overrun")
