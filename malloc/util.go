package malloc

import "fmt"
import "unsafe"

// Bytes return a byte-slice view of `n` bytes starting at `ptr`, for
// chunks handed out by Alloc. The view is valid until the chunk is freed.
func Bytes(ptr unsafe.Pointer, n int64) []byte {
	if ptr == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), n)
}

func ispow2(n int64) bool {
	return n > 0 && (n&(n-1)) == 0
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
