package malloc

import "sync"
import "unsafe"

// pool manage chunks of one size class, shared by all goroutines.
// Free chunks are tracked as a stack of slot indices into block.
type pool struct {
	// 64-bit aligned stats
	nrefills int64
	ndrains  int64
	nflushes int64

	mu       sync.Mutex
	class    int
	elemsize int64
	nchunks  int64
	block    []byte   // sub-arena, nchunks * elemsize bytes
	freelist []uint32 // stack of free slots
}

func newpool(class int, elemsize int64, block []byte) *pool {
	nchunks := int64(len(block)) / elemsize
	p := &pool{
		class:    class,
		elemsize: elemsize,
		nchunks:  nchunks,
		block:    block[:nchunks*elemsize],
		freelist: make([]uint32, nchunks),
	}
	// highest slot on top of the stack, handed out first.
	for i := range p.freelist {
		p.freelist[i] = uint32(i)
	}
	return p
}

func (p *pool) pointer(slot uint32) unsafe.Pointer {
	return unsafe.Pointer(&p.block[int64(slot)*p.elemsize])
}

func (p *pool) slotof(ptr unsafe.Pointer) uint32 {
	if debugmode {
		assertf(p.owns(ptr), "pointer %p not a chunk of pool[%v]", ptr, p.elemsize)
	}
	off := int64(uintptr(ptr) - uintptr(unsafe.Pointer(&p.block[0])))
	return uint32(off / p.elemsize)
}

// owns return true if ptr addresses the start of a chunk in this pool.
func (p *pool) owns(ptr unsafe.Pointer) bool {
	if len(p.block) == 0 {
		return false
	}
	base := uintptr(unsafe.Pointer(&p.block[0]))
	addr := uintptr(ptr)
	if addr < base || addr >= base+uintptr(len(p.block)) {
		return false
	}
	return int64(addr-base)%p.elemsize == 0
}

// refill move Batchsize slots from pool to an empty cache. Either all
// of them are moved or none.
func (p *pool) refill(tc *tcache) bool {
	if debugmode {
		assertf(tc.nfree == 0, "refill on primed cache, nfree:%v", tc.nfree)
	}

	p.mu.Lock()
	n := len(p.freelist)
	if n < Batchsize {
		p.mu.Unlock()
		return false
	}
	copy(tc.freelist[:Batchsize], p.freelist[n-Batchsize:])
	p.freelist = p.freelist[:n-Batchsize]
	p.nrefills++
	p.mu.Unlock()

	tc.nfree = Batchsize
	return true
}

// drain move Batchsize slots from the bottom of an overflowing cache
// back to the pool.
func (p *pool) drain(tc *tcache) {
	p.mu.Lock()
	p.freelist = append(p.freelist, tc.freelist[:Batchsize]...)
	p.ndrains++
	p.mu.Unlock()

	tc.nfree = copy(tc.freelist[:], tc.freelist[Batchsize:tc.nfree])
}

// flush move every slot held by cache back to the pool.
func (p *pool) flush(tc *tcache) {
	p.mu.Lock()
	p.freelist = append(p.freelist, tc.freelist[:tc.nfree]...)
	p.nflushes++
	p.mu.Unlock()

	tc.nfree = 0
}

func (p *pool) available() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(len(p.freelist))
}

func (p *pool) counters() (available, refills, drains, flushes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(len(p.freelist)), p.nrefills, p.ndrains, p.nflushes
}
