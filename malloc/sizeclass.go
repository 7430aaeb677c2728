package malloc

import "math/bits"

// classof map size to its size class, sizes upto a cacheline, including
// zero, map to class 0. Negative sizes and sizes beyond pagesize map to
// mp.nclasses, meaning no class.
func (mp *Mpool) classof(size int64) int {
	if size < 0 {
		return mp.nclasses
	} else if size <= mp.cacheline {
		return 0
	}
	class := 64 - mp.lgline - bits.LeadingZeros64(uint64(size-1))
	if class < mp.nclasses {
		return class
	}
	return mp.nclasses
}

// elemsize of chunks managed by `class`.
func (mp *Mpool) elemsize(class int) int64 {
	return mp.cacheline << uint(class)
}

// Sizeclass return the size class for an allocation of `size` bytes,
// ok is false if size is negative or larger than the largest class.
func (mp *Mpool) Sizeclass(size int64) (class int, ok bool) {
	class = mp.classof(size)
	return class, class < mp.nclasses
}

// Slabs return element size of every size class, in increasing order.
func (mp *Mpool) Slabs() []int64 {
	slabs := make([]int64, 0, mp.nclasses)
	for class := 0; class < mp.nclasses; class++ {
		slabs = append(slabs, mp.elemsize(class))
	}
	return slabs
}
