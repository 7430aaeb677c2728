//go:build debug

package malloc

import "unsafe"

import "github.com/bnclabs/mpool/lib"

const debugmode = true

func assertf(cond bool, fmsg string, args ...interface{}) {
	if !cond {
		panicerr(fmsg, args...)
	}
}

// poisonchunk fill freed chunk with 0xff, first word is left as is.
func poisonchunk(ptr unsafe.Pointer, elemsize int64) {
	lib.Memset(unsafe.Add(ptr, wordsize), 0xff, int(elemsize-wordsize))
}
