package malloc

import "fmt"
import "math/rand"
import "sync"
import "testing"
import "unsafe"

import "github.com/stretchr/testify/require"

type testalloc struct {
	n    byte
	size int64
	ptr  unsafe.Pointer
}

func TestConcurAllocFree(t *testing.T) {
	mp := newtestmpool(t, 16*1024*1024, equalweights, nil)
	defer mp.Release()

	var wg sync.WaitGroup
	nroutines, repeat, maxlive := 8, 20000, 32
	caches := make([]*Cache, nroutines)
	errch := make(chan error, nroutines)
	wg.Add(nroutines)
	for n := 0; n < nroutines; n++ {
		caches[n] = mp.Newcache()
		go func(cache *Cache, n byte) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(int64(n)))
			live := make([]testalloc, 0, maxlive)
			for i := 0; i < repeat; i++ {
				if len(live) == maxlive {
					a := live[0]
					live = live[1:]
					if !checkpattern(a.ptr, a.size, a.n) {
						errch <- errorpattern(a)
						return
					}
					cache.Free(a.ptr, a.size)
				}
				size := rnd.Int63n(Defaultpagesize + 1)
				ptr := cache.Alloc(size, 0)
				if ptr == nil {
					continue
				}
				fillpattern(ptr, size, n)
				live = append(live, testalloc{n: n, size: size, ptr: ptr})
			}
			for _, a := range live {
				if !checkpattern(a.ptr, a.size, a.n) {
					errch <- errorpattern(a)
					return
				}
				cache.Free(a.ptr, a.size)
			}
		}(caches[n], byte(n+1))
	}
	wg.Wait()
	close(errch)
	for err := range errch {
		t.Error(err)
	}

	for _, cache := range caches {
		cache.Close()
		require.Zero(t, cache.Cached())
	}
	for class := 0; class < mp.nclasses; class++ {
		p := mp.pools[class]
		if x, y := p.nchunks, p.available(); x != y {
			t.Errorf("pool[%v] expected %v, got %v", p.elemsize, x, y)
		}
	}
	require.Equal(t, int64(0), mp.Stats()["allocated"])
}

// allocate in one set of goroutines and free in another.
func TestConcurCrossFree(t *testing.T) {
	mp := newtestmpool(t, 16*1024*1024, equalweights, nil)
	defer mp.Release()

	var awg, fwg sync.WaitGroup
	nroutines, repeat := 4, 10000
	chans := make([]chan testalloc, 0, nroutines)
	for n := 0; n < nroutines; n++ {
		chans = append(chans, make(chan testalloc, 100))
	}

	slabs := mp.Slabs()
	allocators, freers := make([]*Cache, nroutines), make([]*Cache, nroutines)
	var nallocs, nfrees [16]int64
	awg.Add(nroutines)
	fwg.Add(nroutines)
	for n := 0; n < nroutines; n++ {
		allocators[n], freers[n] = mp.Newcache(), mp.Newcache()
		go func(cache *Cache, n int) {
			defer awg.Done()
			rnd := rand.New(rand.NewSource(int64(n)))
			for i := 0; i < repeat; i++ {
				size := slabs[rnd.Intn(len(slabs))] - int64(rnd.Intn(32))
				ptr := cache.Alloc(size, 0)
				if ptr == nil {
					continue
				}
				fillpattern(ptr, size, byte(n))
				nallocs[n]++
				chans[rnd.Intn(len(chans))] <- testalloc{n: byte(n), size: size, ptr: ptr}
			}
		}(allocators[n], n)
		go func(cache *Cache, ch chan testalloc, n int) {
			defer fwg.Done()
			for a := range ch {
				if !checkpattern(a.ptr, a.size, a.n) {
					t.Error(errorpattern(a))
				}
				cache.Free(a.ptr, a.size)
				nfrees[n]++
			}
		}(freers[n], chans[n], n)
	}
	awg.Wait()
	for _, ch := range chans {
		close(ch)
	}
	fwg.Wait()

	var allocs, frees int64
	for n := 0; n < nroutines; n++ {
		allocs, frees = allocs+nallocs[n], frees+nfrees[n]
		allocators[n].Close()
		freers[n].Close()
	}
	require.Equal(t, allocs, frees)
	for class := 0; class < mp.nclasses; class++ {
		p := mp.pools[class]
		require.Equal(t, p.nchunks, p.available(), "pool[%v]", p.elemsize)
	}
}

func errorpattern(a testalloc) error {
	return fmt.Errorf("chunk %p size %v corrupted, expected pattern %x", a.ptr, a.size, a.n)
}
