// Package mpool is a fixed-arena, size-classed memory allocator with
// per-goroutine caches, meant for latency sensitive workloads that
// allocate and free small blocks at a high rate.
//
// Packages:
//
//   - api: Mallocer and Memchecker interfaces.
//   - malloc: size classes, global pools, goroutine caches, memory
//     checker and guarded malloc front-end.
//   - region: resident, page aligned memory regions to back an arena.
//   - lib: settings, statistics and raw memory helpers.
//   - log: leveled logging.
//   - tools/mpool: command line harness.
package mpool
