package malloc

import "unsafe"

import "github.com/bnclabs/mpool/lib"

// Batchsize number of chunks moved between a goroutine's cache and the
// global pool on every refill and drain. A cache holds at most
// 2*Batchsize chunks after any Alloc or Free returns.
const Batchsize = 10

// Maxclasses maximum number of size classes, log2(pagesize) minus
// log2(cacheline) plus one shall not exceed this.
const Maxclasses = 7

// Maxchunks maximum number of chunks a single size class can manage.
const Maxchunks = int64(1<<32 - 1)

// Defaultcacheline default value for "cacheline" settings.
const Defaultcacheline = int64(64)

// Defaultpagesize default value for "pagesize" settings.
const Defaultpagesize = int64(4096)

const wordsize = int64(unsafe.Sizeof(uintptr(0)))

// Defaultsettings for malloc.
//
// "cacheline" (int64, default: 64)
//		Size of the smallest size class, also the alignment of the arena
//		and of every chunk. Shall be a power of 2.
//
// "pagesize" (int64, default: 4096)
//		Size of the largest size class, allocations beyond this size
//		fail. Shall be a power of 2, not less than cacheline.
//
// "memcheck" (string, default: "none")
//		Memory-debugging instrumentation, "none" disables all hooks,
//		"shadow" installs a Shadow checker. Applications can also supply
//		their own api.Memchecker object as value for this parameter.
//
// "debug.poison" (bool, default: false)
//		Fill freed chunks with 0xff, beyond the first word. Effective
//		only when the package is compiled with `-tags debug`.
func Defaultsettings() lib.Settings {
	return lib.Settings{
		"cacheline":    Defaultcacheline,
		"pagesize":     Defaultpagesize,
		"memcheck":     "none",
		"debug.poison": false,
	}
}
