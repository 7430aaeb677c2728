package malloc

import "fmt"
import "sync"
import "unsafe"

// Poisonbyte fills the inaccessible tail of allocated chunks, when
// instrumented by Shadow.
const Poisonbyte = byte(0xfd)

// Shadow implements api.Memchecker{}. It tracks allocated chunks per
// size class and poisons bytes marked as no-access, detecting double
// allocation, double free, free of foreign pointers and writes beyond
// the requested size. Violations are logged and remembered, they do
// not panic.
type Shadow struct {
	mu         sync.Mutex
	logprefix  string
	pools      [Maxclasses]*shadowpool
	violations []error
}

type shadowpool struct {
	base      uintptr
	block     []byte
	elemsize  int64
	allocated *slotbits
	limits    []int64 // accessible bytes per allocated chunk
}

// NewShadow return a new memchecker, `name` is used for logging.
func NewShadow(name string) *Shadow {
	return &Shadow{logprefix: fmt.Sprintf("SHADOW [%s]", name)}
}

// Createpool implement api.Memchecker{} interface.
func (sh *Shadow) Createpool(class int, block []byte, elemsize int64) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	nchunks := int64(len(block)) / elemsize
	sp := &shadowpool{
		block:     block,
		elemsize:  elemsize,
		allocated: newslotbits(nchunks),
		limits:    make([]int64, nchunks),
	}
	if len(block) > 0 {
		sp.base = uintptr(unsafe.Pointer(&block[0]))
	}
	sh.pools[class] = sp
}

// Destroypool implement api.Memchecker{} interface.
func (sh *Shadow) Destroypool(class int) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if sp := sh.pools[class]; sp != nil {
		if slots := sp.liveslots(); len(slots) > 0 {
			warnf("%v pool[%v] destroyed with %v live chunks, slots %v\n",
				sh.logprefix, sp.elemsize, len(slots), slots)
		}
	}
	sh.pools[class] = nil
}

// Poolalloc implement api.Memchecker{} interface.
func (sh *Shadow) Poolalloc(class int, ptr unsafe.Pointer, elemsize int64) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sp, slot, ok := sh.lookup(class, ptr)
	if !ok {
		sh.violate(ErrorInvalidFree, "alloc of foreign pointer %p", ptr)
		return
	} else if sp.allocated.isset(slot) {
		sh.violate(ErrorDoubleAlloc, "pool[%v] slot %v", sp.elemsize, slot)
		return
	}
	sp.allocated.setbit(slot)
	sp.limits[slot] = elemsize
}

// Poolfree implement api.Memchecker{} interface.
func (sh *Shadow) Poolfree(class int, ptr unsafe.Pointer) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sp, slot, ok := sh.lookup(class, ptr)
	if !ok {
		sh.violate(ErrorInvalidFree, "pointer %p not in class %v", ptr, class)
		return
	} else if !sp.allocated.isset(slot) {
		sh.violate(ErrorDoubleFree, "pool[%v] slot %v", sp.elemsize, slot)
		return
	}
	chunk := sp.chunk(slot)
	for off := sp.limits[slot]; off < sp.elemsize; off++ {
		if chunk[off] != Poisonbyte {
			sh.violate(ErrorOverrun,
				"pool[%v] slot %v written at offset %v, limit %v",
				sp.elemsize, slot, off, sp.limits[slot])
			break
		}
	}
	sp.allocated.clearbit(slot)
	sp.limits[slot] = 0
}

// Makenoaccess implement api.Memchecker{} interface. Bytes are poisoned
// and the chunk's accessible limit is lowered to ptr.
func (sh *Shadow) Makenoaccess(ptr unsafe.Pointer, n int64) {
	if n <= 0 {
		return
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sp, slot, off, ok := sh.find(ptr)
	if !ok || off+n > sp.elemsize {
		return
	}
	chunk := sp.chunk(slot)
	for i := off; i < off+n; i++ {
		chunk[i] = Poisonbyte
	}
	if sp.allocated.isset(slot) && off < sp.limits[slot] {
		sp.limits[slot] = off
	}
}

// Makeundefined implement api.Memchecker{} interface. The chunk's
// accessible limit is raised to ptr+n.
func (sh *Shadow) Makeundefined(ptr unsafe.Pointer, n int64) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sp, slot, off, ok := sh.find(ptr)
	if !ok || !sp.allocated.isset(slot) {
		return
	}
	if limit := off + n; limit <= sp.elemsize {
		sp.limits[slot] = limit
	}
}

// Makedefined implement api.Memchecker{} interface. Chunks carry no
// allocator metadata, nothing to track.
func (sh *Shadow) Makedefined(ptr unsafe.Pointer, n int64) {}

// Allocated return number of chunks currently allocated in `class`.
func (sh *Shadow) Allocated(class int) int64 {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if class < 0 || class >= Maxclasses || sh.pools[class] == nil {
		return 0
	}
	return sh.pools[class].allocated.ones()
}

// Liveslots return slot index of every chunk currently allocated in
// `class`, in increasing order.
func (sh *Shadow) Liveslots(class int) []int64 {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if class < 0 || class >= Maxclasses || sh.pools[class] == nil {
		return nil
	}
	return sh.pools[class].liveslots()
}

// Violations return errors detected so far, each wrapping one of
// ErrorDoubleAlloc, ErrorDoubleFree, ErrorInvalidFree, ErrorOverrun.
func (sh *Shadow) Violations() []error {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return append([]error(nil), sh.violations...)
}

func (sh *Shadow) violate(sentinel error, fmsg string, args ...interface{}) {
	err := fmt.Errorf("%w: "+fmsg, append([]interface{}{sentinel}, args...)...)
	errorf("%v %v\n", sh.logprefix, err)
	sh.violations = append(sh.violations, err)
}

// lookup ptr as the start of a chunk in `class`.
func (sh *Shadow) lookup(class int, ptr unsafe.Pointer) (*shadowpool, int64, bool) {
	if class < 0 || class >= Maxclasses || sh.pools[class] == nil {
		return nil, 0, false
	}
	sp := sh.pools[class]
	slot, off, ok := sp.locate(uintptr(ptr))
	return sp, slot, ok && off == 0
}

// find the chunk containing ptr, in any class.
func (sh *Shadow) find(ptr unsafe.Pointer) (*shadowpool, int64, int64, bool) {
	for _, sp := range sh.pools {
		if sp == nil {
			continue
		}
		if slot, off, ok := sp.locate(uintptr(ptr)); ok {
			return sp, slot, off, true
		}
	}
	return nil, 0, 0, false
}

func (sp *shadowpool) locate(addr uintptr) (slot, off int64, ok bool) {
	if len(sp.block) == 0 || addr < sp.base {
		return 0, 0, false
	}
	diff := int64(addr - sp.base)
	if diff >= int64(len(sp.block)) {
		return 0, 0, false
	}
	return diff / sp.elemsize, diff % sp.elemsize, true
}

func (sp *shadowpool) liveslots() []int64 {
	slots := make([]int64, 0, sp.allocated.ones())
	sp.allocated.each(func(slot int64) { slots = append(slots, slot) })
	return slots
}

func (sp *shadowpool) chunk(slot int64) []byte {
	return sp.block[slot*sp.elemsize : (slot+1)*sp.elemsize]
}
