package lib

import "strings"
import "unsafe"
import "encoding/json"

// Parsecsv convert a string of comma seperated values into list of
// string values, blank entries are skipped.
func Parsecsv(input string) []string {
	if input == "" {
		return nil
	}
	outs := make([]string, 0)
	for _, s := range strings.Split(input, ",") {
		if s = strings.Trim(s, " \t\r\n"); s != "" {
			outs = append(outs, s)
		}
	}
	return outs
}

// Memcpy copy memory block of length `ln` from `src` to `dst`, useful
// when memory block is obtained outside golang runtime. Return number
// of bytes copied.
func Memcpy(dst, src unsafe.Pointer, ln int) int {
	if ln <= 0 || dst == nil || src == nil {
		return 0
	}
	return copy(unsafe.Slice((*byte)(dst), ln), unsafe.Slice((*byte)(src), ln))
}

// Memset fill `ln` bytes starting from `dst` with `b`.
func Memset(dst unsafe.Pointer, b byte, ln int) {
	if ln <= 0 || dst == nil {
		return
	}
	block := unsafe.Slice((*byte)(dst), ln)
	for i := range block {
		block[i] = b
	}
}

// Prettystats uses json.MarshalIndent, if pretty is true, instead of
// json.Marshal. If Marshal return error Prettystats will panic.
func Prettystats(stats map[string]interface{}, pretty bool) string {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(stats, "", "  ")
	} else {
		data, err = json.Marshal(stats)
	}
	if err != nil {
		panic(err)
	}
	return string(data)
}
