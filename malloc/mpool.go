package malloc

import "fmt"
import "unsafe"
import "math/bits"

import "github.com/bnclabs/mpool/api"
import "github.com/bnclabs/mpool/lib"
import humanize "github.com/dustin/go-humanize"

// Mpool manage a caller supplied arena partitioned into size classes,
// each class carved as a pool of equal sized chunks. Goroutines
// allocate and free through their own Cache, obtained via Newcache.
type Mpool struct {
	name      string
	logprefix string
	arena     []byte // aligned arena, also keeps heap arenas alive.
	usable    int64
	cacheline int64
	lgline    int
	pagesize  int64
	nclasses  int
	carved    [Maxclasses]bool
	pools     [Maxclasses]*pool
	mcheck    api.Memchecker
	poison    bool
	setts     lib.Settings
}

// NewMpool partition `arena` into size classes. Class i manages chunks
// of cacheline << i bytes and receives a share of the arena proportional
// to weights[i] * elemsize(i). Classes beyond len(weights) and classes
// with zero weight are not carved, allocations for them always fail.
// Refer to Defaultsettings for `setts`.
func NewMpool(
	name string, arena []byte, weights []uint,
	setts lib.Settings) (*Mpool, error) {

	setts = make(lib.Settings).Mixin(Defaultsettings(), setts)
	mp := &Mpool{
		name:      name,
		logprefix: fmt.Sprintf("MPOOL [%s]", name),
		cacheline: setts.Int64("cacheline"),
		pagesize:  setts.Int64("pagesize"),
		poison:    setts.Bool("debug.poison"),
		setts:     setts,
	}
	if err := mp.validate(); err != nil {
		return nil, err
	}
	mcheck, err := newmemchecker(name, setts["memcheck"])
	if err != nil {
		return nil, err
	}
	mp.mcheck = mcheck

	// align arena start to cacheline.
	if int64(len(arena)) < mp.cacheline {
		return nil, ErrorArenaTooSmall
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(arena)))
	pad := (mp.cacheline - int64(base%uintptr(mp.cacheline))) % mp.cacheline
	if int64(len(arena))-pad < mp.cacheline {
		return nil, ErrorArenaTooSmall
	}
	mp.arena, mp.usable = arena[pad:], int64(len(arena))-pad

	if len(weights) > mp.nclasses {
		return nil, ErrorTooManyClasses
	}
	if err := mp.carve(weights); err != nil {
		return nil, err
	}

	infof("%v created %v classes over %v\n",
		mp.logprefix, mp.nclasses, humanize.Bytes(uint64(mp.usable)))
	return mp, nil
}

func (mp *Mpool) validate() error {
	if !ispow2(mp.cacheline) || !ispow2(mp.pagesize) {
		return ErrorInvalidConfig
	} else if mp.pagesize < mp.cacheline {
		return ErrorInvalidConfig
	}
	mp.lgline = bits.TrailingZeros64(uint64(mp.cacheline))
	lgpage := bits.TrailingZeros64(uint64(mp.pagesize))
	if mp.nclasses = lgpage - mp.lgline + 1; mp.nclasses > Maxclasses {
		return ErrorInvalidConfig
	}
	return nil
}

func newmemchecker(name string, value interface{}) (api.Memchecker, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case api.Memchecker:
		return v, nil
	case string:
		switch v {
		case "none", "":
			return nil, nil
		case "shadow":
			return NewShadow(name), nil
		}
	}
	return nil, ErrorInvalidConfig
}

// carve arena into pools, in increasing order of class.
func (mp *Mpool) carve(weights []uint) error {
	var total, carry uint64
	for class, weight := range weights {
		hi, lo := bits.Mul64(uint64(weight), uint64(mp.elemsize(class)))
		if total, carry = bits.Add64(total, lo, 0); hi != 0 || carry != 0 {
			return ErrorInvalidConfig
		}
	}
	if total == 0 {
		return ErrorZeroWeight
	}

	cursor := int64(0)
	for class := 0; class < mp.nclasses; class++ {
		elemsize := mp.elemsize(class)
		if class >= len(weights) || weights[class] == 0 {
			mp.pools[class] = newpool(class, elemsize, nil)
			continue
		}
		share := uint64(weights[class]) * uint64(elemsize)
		hi, lo := bits.Mul64(share, uint64(mp.usable))
		nbytes, _ := bits.Div64(hi, lo, total)
		nchunks := int64(nbytes) / elemsize
		if nchunks > Maxchunks {
			return ErrorInvalidConfig
		}

		block := mp.arena[cursor : cursor+(nchunks*elemsize)]
		cursor += nchunks * elemsize
		clear(block)
		mp.pools[class], mp.carved[class] = newpool(class, elemsize, block), true
		if mp.mcheck != nil {
			mp.mcheck.Createpool(class, block, elemsize)
		}
		verbosef("%v pool[%v] carved %v chunks\n", mp.logprefix, elemsize, nchunks)
	}
	return nil
}

// Newcache return an empty cache, to be used by a single goroutine.
func (mp *Mpool) Newcache() *Cache {
	c := &Cache{mpool: mp}
	for class := 0; class < mp.nclasses; class++ {
		c.caches[class].pool = mp.pools[class]
	}
	return c
}

// Release the pool, arena memory is left untouched and is owned by the
// caller once again. Mpool and its caches shall not be used after this.
func (mp *Mpool) Release() {
	for class := 0; class < mp.nclasses; class++ {
		if mp.carved[class] && mp.mcheck != nil {
			mp.mcheck.Destroypool(class)
		}
	}
	infof("%v released\n", mp.logprefix)
}

// Name of this mpool instance.
func (mp *Mpool) Name() string {
	return mp.name
}

// Memchecker return the instrumentation installed for this instance,
// nil if disabled.
func (mp *Mpool) Memchecker() api.Memchecker {
	return mp.mcheck
}
