package malloc

import "io"
import "fmt"
import "strings"

import humanize "github.com/dustin/go-humanize"

// Stats return statistics for carved classes. Per class keys are
// "pool.<elemsize>.capacity", "pool.<elemsize>.available" and
// "pool.<elemsize>.allocated" counted in chunks, and the refill, drain,
// flush counters as "pool.<elemsize>.refills|drains|flushes". Totals
// "capacity", "allocated", "available" are counted in bytes, "classes"
// is the number of carved classes. Chunks resident in a Cache count as
// allocated.
func (mp *Mpool) Stats() map[string]interface{} {
	stats := make(map[string]interface{})
	var capacity, allocated, available int64
	classes := 0
	for class := 0; class < mp.nclasses; class++ {
		if !mp.carved[class] {
			continue
		}
		p := mp.pools[class]
		free, refills, drains, flushes := p.counters()
		prefix := fmt.Sprintf("pool.%v.", p.elemsize)
		stats[prefix+"capacity"] = p.nchunks
		stats[prefix+"available"] = free
		stats[prefix+"allocated"] = p.nchunks - free
		stats[prefix+"refills"] = refills
		stats[prefix+"drains"] = drains
		stats[prefix+"flushes"] = flushes

		capacity += p.nchunks * p.elemsize
		available += free * p.elemsize
		allocated += (p.nchunks - free) * p.elemsize
		classes++
	}
	stats["capacity"] = capacity
	stats["allocated"] = allocated
	stats["available"] = available
	stats["classes"] = classes
	return stats
}

// Utilization return element size and percentage of chunks in use, for
// every carved class that holds at least one chunk.
func (mp *Mpool) Utilization() ([]int64, []float64) {
	sizes, zs := make([]int64, 0, mp.nclasses), make([]float64, 0, mp.nclasses)
	for class := 0; class < mp.nclasses; class++ {
		p := mp.pools[class]
		if !mp.carved[class] || p.nchunks == 0 {
			continue
		}
		used := p.nchunks - p.available()
		sizes = append(sizes, p.elemsize)
		zs = append(zs, (float64(used)/float64(p.nchunks))*100)
	}
	return sizes, zs
}

// Dumpstats write a human readable report of per class utilization to
// `w`. Format is not stable.
func (mp *Mpool) Dumpstats(w io.Writer) {
	stats := mp.Stats()
	capacity, allocated := stats["capacity"].(int64), stats["allocated"].(int64)
	fmt.Fprintf(w, "%v capacity %v allocated %v\n", mp.logprefix,
		humanize.Bytes(uint64(capacity)), humanize.Bytes(uint64(allocated)))
	for class := 0; class < mp.nclasses; class++ {
		if !mp.carved[class] {
			continue
		}
		p := mp.pools[class]
		used := p.nchunks - p.available()
		fmt.Fprintf(w, "pool[%v] %v/%v\n", p.elemsize, used, p.nchunks)
	}
}

// Logstats log Dumpstats report at info level.
func (mp *Mpool) Logstats() {
	var sb strings.Builder
	mp.Dumpstats(&sb)
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		infof("%v\n", line)
	}
}
