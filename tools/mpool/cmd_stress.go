package main

import "fmt"
import "math/rand"
import "os"
import "sync"
import "time"
import "unsafe"

import "github.com/bnclabs/mpool/api"
import "github.com/bnclabs/mpool/lib"
import "github.com/bnclabs/mpool/malloc"
import "github.com/eapache/queue"
import "github.com/spf13/cobra"
import "golang.org/x/text/language"
import "golang.org/x/text/message"

var stressopts struct {
	routines int
	ops      int
	live     int
}

type liveblock struct {
	ptr  unsafe.Pointer
	size int64
	fill byte
}

type stressresult struct {
	latency *lib.HistogramInt64
	allocs  int64
	fails   int64
	corrupt int64
}

func init() {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Allocate and free from many goroutines concurrently",
		Long: `The stress command runs goroutines, each with its own cache,
allocating random sizes upto pagesize and freeing them in FIFO order.
Every block is filled with a pattern and verified before free.

Example:
  mpool stress --arena 128MB --routines 8 --ops 1000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	cmd.Flags().IntVar(&stressopts.routines, "routines", 8, "number of goroutines")
	cmd.Flags().IntVar(&stressopts.ops, "ops", 100000, "allocations per goroutine")
	cmd.Flags().IntVar(&stressopts.live, "live", 64, "live blocks per goroutine")
	rootCmd.AddCommand(cmd)
}

func runStress() error {
	mp, r, err := newmpool("stress")
	if err != nil {
		return err
	}
	defer r.Close()
	defer mp.Release()

	var wg sync.WaitGroup
	results := make([]stressresult, stressopts.routines)
	caches := make([]*malloc.Cache, stressopts.routines)
	now := time.Now()
	for n := 0; n < stressopts.routines; n++ {
		caches[n] = mp.Newcache()
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = stressworker(mp, caches[n], n)
		}(n)
	}
	wg.Wait()
	elapsed := time.Since(now)

	for _, cache := range caches {
		cache.Close()
	}

	latency := lib.NewhistogramInt64(0, 10000, 250)
	var allocs, fails, corrupt int64
	for _, res := range results {
		latency.Merge(res.latency)
		allocs, fails, corrupt = allocs+res.allocs, fails+res.fails, corrupt+res.corrupt
	}

	p := message.NewPrinter(language.English)
	p.Printf("%d allocations, %d failed, in %v\n", allocs, fails, elapsed)
	if secs := elapsed.Seconds(); secs > 0 {
		p.Printf("%d allocs/sec\n", int64(float64(allocs)/secs))
	}
	fmt.Printf("alloc latency(ns) %v\n", latency.Logstring())
	mp.Dumpstats(os.Stdout)

	if corrupt > 0 {
		return fmt.Errorf("%v blocks corrupted", corrupt)
	} else if allocated := mp.Stats()["allocated"].(int64); allocated != 0 {
		return fmt.Errorf("%v bytes leaked", allocated)
	}
	return nil
}

func stressworker(mp *malloc.Mpool, cache *malloc.Cache, n int) stressresult {
	res := stressresult{latency: lib.NewhistogramInt64(0, 10000, 250)}
	rnd := rand.New(rand.NewSource(options.seed + int64(n)))
	live := queue.New()
	pagesize := mp.Slabs()[len(mp.Slabs())-1]
	fill := byte(n + 1)

	release := func() {
		blk := live.Remove().(liveblock)
		if !verify(blk) {
			res.corrupt++
		}
		cache.Free(blk.ptr, blk.size)
	}

	for i := 0; i < stressopts.ops; i++ {
		if live.Length() >= stressopts.live {
			release()
		}
		size := rnd.Int63n(pagesize + 1)
		start := time.Now()
		ptr := cache.Alloc(size, api.Nilflags)
		res.latency.Add(int64(time.Since(start)))
		if ptr == nil {
			res.fails++
			continue
		}
		res.allocs++
		lib.Memset(ptr, fill, int(size))
		live.Add(liveblock{ptr: ptr, size: size, fill: fill})
	}
	for live.Length() > 0 {
		release()
	}
	return res
}

func verify(blk liveblock) bool {
	for _, b := range malloc.Bytes(blk.ptr, blk.size) {
		if b != blk.fill {
			return false
		}
	}
	return true
}
