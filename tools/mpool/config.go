package main

import "fmt"
import "strconv"

import "github.com/bnclabs/mpool/lib"
import "github.com/bnclabs/mpool/malloc"
import "github.com/bnclabs/mpool/region"
import "github.com/cloudfoundry/gosigar"
import humanize "github.com/dustin/go-humanize"

const minarena = int64(16 * 1024 * 1024)
const maxarena = int64(1024 * 1024 * 1024)

func mpoolsettings() lib.Settings {
	return lib.Settings{
		"cacheline": options.cacheline,
		"pagesize":  options.pagesize,
		"memcheck":  options.memcheck,
	}
}

// arenasize from --arena, else a sixteenth of free memory bounded
// between minarena and maxarena.
func arenasize() (int64, error) {
	if options.arena != "" {
		n, err := humanize.ParseBytes(options.arena)
		if err != nil {
			return 0, fmt.Errorf("invalid --arena %q: %w", options.arena, err)
		}
		return int64(n), nil
	}
	_, _, free := getsysmem()
	size := int64(free / 16)
	if size < minarena {
		size = minarena
	} else if size > maxarena {
		size = maxarena
	}
	return size, nil
}

func parseweights(input string) ([]uint, error) {
	weights := []uint{}
	for _, s := range lib.Parsecsv(input) {
		w, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", s, err)
		}
		weights = append(weights, uint(w))
	}
	return weights, nil
}

// newmpool over a freshly mapped region, caller shall release the
// mpool and close the region.
func newmpool(name string) (*malloc.Mpool, *region.Region, error) {
	size, err := arenasize()
	if err != nil {
		return nil, nil, err
	}
	weights, err := parseweights(options.weights)
	if err != nil {
		return nil, nil, err
	}
	r, err := region.Map(size, nil)
	if err != nil {
		return nil, nil, err
	}
	mp, err := malloc.NewMpool(name, r.Bytes(), weights, mpoolsettings())
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	return mp, r, nil
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
