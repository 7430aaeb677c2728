// Package malloc supplies a fixed-arena, size-classed allocator for
// latency sensitive, allocation heavy workloads, with a limited scope:
//
//   - Memory is supplied by the caller as a single arena, there is no
//     growth and no memory is given back to OS.
//   - Arena is partitioned into size classes, class i manages chunks of
//     cacheline << i bytes, upto pagesize. Share of each class is fixed
//     by weights supplied to NewMpool.
//   - Chunks carry no header, callers shall remember the size passed to
//     Alloc and supply a size from the same class to Free and Realloc.
//   - Every chunk is cacheline aligned.
//
// Each size class is managed by a global pool guarded by a mutex.
// Goroutines allocate through a Cache, which holds a small stack of free
// chunks per class and touches the global pool only in batches of
// Batchsize chunks, when its stack runs empty or grows beyond
// 2*Batchsize. Caches shall be closed when a goroutine exits.
//
// Compile with `-tags debug` to enable internal assertions and poisoning
// of freed chunks. Memory-debugging instrumentation can be enabled with
// the "memcheck" settings, refer to Shadow.
package malloc
