package lib

import "bytes"
import "reflect"
import "testing"
import "unsafe"

import "github.com/stretchr/testify/require"

func TestParsecsv(t *testing.T) {
	res := Parsecsv("a, b, r , x\n, \ty \n")
	ref := []string{"a", "b", "r", "x", "y"}
	if !reflect.DeepEqual(res, ref) {
		t.Errorf("expected %v, got %v", ref, res)
	}
	if res = Parsecsv(""); res != nil {
		t.Errorf("expected nil, got %v", res)
	}
}

func TestMemcpy(t *testing.T) {
	src, dst := []byte("hello world"), make([]byte, 16)
	n := Memcpy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), len(src))
	require.Equal(t, len(src), n)
	require.True(t, bytes.Equal(src, dst[:n]))
	require.Equal(t, byte(0), dst[n])

	require.Equal(t, 0, Memcpy(nil, unsafe.Pointer(&src[0]), 1))
	require.Equal(t, 0, Memcpy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), 0))
}

func TestMemset(t *testing.T) {
	block := make([]byte, 8)
	Memset(unsafe.Pointer(&block[2]), 0xff, 4)
	require.Equal(t, []byte{0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0}, block)
	Memset(nil, 0xff, 4) // no-op
}

func TestPrettystats(t *testing.T) {
	stats := map[string]interface{}{"capacity": 10}
	require.Equal(t, `{"capacity":10}`, Prettystats(stats, false))
	require.Equal(t, "{\n  \"capacity\": 10\n}", Prettystats(stats, true))
}

func BenchmarkMemcpy(b *testing.B) {
	ln := 10 * 1024
	src, dst := make([]byte, ln), make([]byte, ln)
	for i := range src {
		src[i] = 0xAB
	}
	b.SetBytes(int64(ln))
	for i := 0; i < b.N; i++ {
		Memcpy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), ln)
	}
}
