package malloc

import "math"
import "strconv"
import "strings"
import "testing"
import "unsafe"

import "github.com/bnclabs/mpool/lib"
import "github.com/bnclabs/mpool/region"
import "github.com/stretchr/testify/require"

var equalweights = []uint{1, 1, 1, 1, 1, 1, 1}

// alignedarena return a cacheline aligned arena of n bytes.
func alignedarena(n int) []byte {
	buf := make([]byte, n+int(Defaultcacheline))
	base := uintptr(unsafe.Pointer(&buf[0]))
	pad := (uintptr(Defaultcacheline) - base%uintptr(Defaultcacheline)) %
		uintptr(Defaultcacheline)
	return buf[pad : pad+uintptr(n)]
}

func newtestmpool(
	t testing.TB, size int, weights []uint, setts lib.Settings) *Mpool {

	mp, err := NewMpool(t.Name(), alignedarena(size), weights, setts)
	require.NoError(t, err)
	return mp
}

func TestNewMpool(t *testing.T) {
	mp := newtestmpool(t, 1024*1024, equalweights, nil)
	defer mp.Release()

	require.Equal(t, []int64{64, 128, 256, 512, 1024, 2048, 4096}, mp.Slabs())
	// 1MB / (64+128+...+4096) chunks in every class.
	stats := mp.Stats()
	for _, elemsize := range mp.Slabs() {
		key := "pool." + strconv.FormatInt(elemsize, 10) + ".capacity"
		if x, y := int64(129), stats[key].(int64); x != y {
			t.Errorf("%v expected %v, got %v", key, x, y)
		}
	}
	require.Equal(t, 7, stats["classes"])
	require.Equal(t, int64(129*8128), stats["capacity"])
	require.Equal(t, int64(0), stats["allocated"])
	require.Equal(t, mp.Name(), t.Name())
	require.Nil(t, mp.Memchecker())
}

func TestMpoolScenario(t *testing.T) {
	mp := newtestmpool(t, 1024*1024, equalweights, nil)
	defer mp.Release()
	cache := mp.Newcache()
	defer cache.Close()

	ptrs := map[unsafe.Pointer]bool{}
	for _, size := range []int64{1, 64, 4096} {
		ptr := cache.Alloc(size, 0)
		require.NotNil(t, ptr, "size %v", size)
		require.False(t, ptrs[ptr], "duplicate pointer for %v", size)
		ptrs[ptr] = true
		require.Zero(t, uintptr(ptr)%uintptr(Defaultcacheline))
	}
	if ptr := cache.Alloc(4097, 0); ptr != nil {
		t.Errorf("expected nil, got %p", ptr)
	}
	ptr := cache.Realloc(nil, 0, 0, 0)
	require.NotNil(t, ptr)
	cache.Free(ptr, 0)
}

func TestMpoolConfig(t *testing.T) {
	testcases := []struct {
		arena   int
		weights []uint
		setts   lib.Settings
		err     error
	}{
		{4096, equalweights, lib.Settings{"cacheline": 48}, ErrorInvalidConfig},
		{4096, equalweights, lib.Settings{"pagesize": 32}, ErrorInvalidConfig},
		{4096, equalweights, lib.Settings{"pagesize": 8192}, ErrorInvalidConfig},
		{4096, equalweights, lib.Settings{"memcheck": "valgrind"}, ErrorInvalidConfig},
		{4096, []uint{math.MaxUint}, nil, ErrorInvalidConfig},
		{32, equalweights, nil, ErrorArenaTooSmall},
		{0, equalweights, nil, ErrorArenaTooSmall},
		{4096, []uint{1, 1, 1, 1, 1, 1, 1, 1}, nil, ErrorTooManyClasses},
		{4096, []uint{0, 0, 0}, nil, ErrorZeroWeight},
		{4096, nil, nil, ErrorZeroWeight},
	}
	for i, tcase := range testcases {
		_, err := NewMpool("config", alignedarena(tcase.arena), tcase.weights, tcase.setts)
		if err != tcase.err {
			t.Errorf("case %v expected %v, got %v", i, tcase.err, err)
		}
	}

	// smaller page, fewer classes.
	setts := lib.Settings{"cacheline": 32, "pagesize": 1024}
	mp := newtestmpool(t, 64*1024, []uint{1, 1, 1, 1, 1, 1}, setts)
	require.Equal(t, []int64{32, 64, 128, 256, 512, 1024}, mp.Slabs())
	mp.Release()
}

func TestMpoolUnaligned(t *testing.T) {
	arena := alignedarena(64 * 1024)
	mp, err := NewMpool("unaligned", arena[3:], []uint{1}, nil)
	require.NoError(t, err)
	defer mp.Release()

	// 3 bytes of lead and 61 bytes of alignment pad are lost.
	require.Equal(t, int64(64*1024-64)/64, mp.Stats()["pool.64.capacity"])
	cache := mp.Newcache()
	defer cache.Close()
	ptr := cache.Alloc(10, 0)
	require.Zero(t, uintptr(ptr)%64)
	cache.Free(ptr, 10)
}

func TestZeroWeight(t *testing.T) {
	mp := newtestmpool(t, 64*1024, []uint{1, 0, 1}, nil)
	defer mp.Release()
	cache := mp.Newcache()
	defer cache.Close()

	require.NotNil(t, cache.Alloc(64, 0))
	require.NotNil(t, cache.Alloc(256, 0))
	if ptr, err := cache.Tryalloc(128, 0); ptr != nil || err != ErrorOutofMemory {
		t.Errorf("expected %v, got %v %p", ErrorOutofMemory, err, ptr)
	}
	// classes beyond weights.
	if ptr, err := cache.Tryalloc(1024, 0); ptr != nil || err != ErrorOutofMemory {
		t.Errorf("expected %v, got %v %p", ErrorOutofMemory, err, ptr)
	}
	if ptr, err := cache.Tryalloc(4097, 0); ptr != nil || err != ErrorSizeOverflow {
		t.Errorf("expected %v, got %v %p", ErrorSizeOverflow, err, ptr)
	}
	if ptr, err := cache.Tryalloc(-1, 0); ptr != nil || err != ErrorSizeOverflow {
		t.Errorf("expected %v, got %v %p", ErrorSizeOverflow, err, ptr)
	}
	require.Equal(t, 2, mp.Stats()["classes"])
}

func TestAllocFreeEverySize(t *testing.T) {
	mp := newtestmpool(t, 1024*1024, equalweights, nil)
	defer mp.Release()
	cache := mp.Newcache()
	defer cache.Close()

	free := func(class int) int64 {
		return mp.pools[class].available() + int64(cache.Available(class))
	}
	for size := int64(0); size <= Defaultpagesize; size++ {
		class, ok := mp.Sizeclass(size)
		require.True(t, ok)
		before := free(class)
		ptr := cache.Alloc(size, 0)
		if ptr == nil {
			t.Fatalf("unexpected nil for size %v", size)
		}
		cache.Free(ptr, size)
		if after := free(class); before != after {
			t.Fatalf("size %v expected %v, got %v", size, before, after)
		}
	}
}

func TestStats(t *testing.T) {
	mp := newtestmpool(t, 1024*1024, equalweights, nil)
	defer mp.Release()
	cache := mp.Newcache()

	ptr := cache.Alloc(10, 0)
	stats := mp.Stats()
	// whole batch is resident in the cache.
	require.Equal(t, int64(Batchsize), stats["pool.64.allocated"])
	require.Equal(t, int64(129-Batchsize), stats["pool.64.available"])
	require.Equal(t, int64(1), stats["pool.64.refills"])
	require.Equal(t, int64(Batchsize*64), stats["allocated"])

	sizes, zs := mp.Utilization()
	require.Equal(t, mp.Slabs(), sizes)
	require.InDelta(t, float64(Batchsize)*100/129, zs[0], 0.001)
	require.Zero(t, zs[1])

	var sb strings.Builder
	mp.Dumpstats(&sb)
	require.Contains(t, sb.String(), "pool[64] 10/129\n")
	require.Contains(t, sb.String(), "pool[4096] 0/129\n")
	LogComponents("malloc")
	mp.Logstats()

	cache.Free(ptr, 10)
	cache.Close()
	stats = mp.Stats()
	require.Equal(t, int64(0), stats["allocated"])
	require.Equal(t, int64(1), stats["pool.64.flushes"])
}

func BenchmarkAllocFree(b *testing.B) {
	mp := newtestmpool(b, 1024*1024, equalweights, nil)
	cache := mp.Newcache()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr := cache.Alloc(100, 0)
		cache.Free(ptr, 100)
	}
}

func BenchmarkAllocBatch(b *testing.B) {
	mp := newtestmpool(b, 1024*1024, equalweights, nil)
	cache := mp.Newcache()
	ptrs := make([]unsafe.Pointer, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range ptrs {
			ptrs[j] = cache.Alloc(64, 0)
		}
		for _, ptr := range ptrs {
			cache.Free(ptr, 64)
		}
	}
}

func TestMpoolOverRegion(t *testing.T) {
	r, err := region.Map(4*1024*1024, nil)
	require.NoError(t, err)
	defer r.Close()

	mp, err := NewMpool("region", r.Bytes(), equalweights, nil)
	require.NoError(t, err)
	defer mp.Release()
	cache := mp.Newcache()
	defer cache.Close()

	ptr := cache.Alloc(4096, 0)
	require.NotNil(t, ptr)
	fillpattern(ptr, 4096, 0x5a)
	require.True(t, checkpattern(ptr, 4096, 0x5a))
	cache.Free(ptr, 4096)
}
