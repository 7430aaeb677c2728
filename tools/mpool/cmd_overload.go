package main

import "fmt"
import "math/rand"

import "github.com/bnclabs/mpool/lib"
import "github.com/bnclabs/mpool/malloc"
import "github.com/spf13/cobra"
import "golang.org/x/text/language"
import "golang.org/x/text/message"

var overloadopts struct {
	ptrs    int
	allocs  int
	maxsize int
}

func init() {
	cmd := &cobra.Command{
		Use:   "overload",
		Short: "Drive random malloc, realloc and free through a guarded front-end",
		Long: `The overload command keeps a table of blocks and, for random
slots, either frees and mallocs or reallocs a random size. Sizes beyond
the largest class, and requests on exhausted classes, fall back to
golang heap. Content preserved by realloc is verified.

Example:
  mpool overload --arena 4MB --allocs 100000 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverload()
		},
	}
	cmd.Flags().IntVar(&overloadopts.ptrs, "ptrs", 1024, "number of live slots")
	cmd.Flags().IntVar(&overloadopts.allocs, "allocs", 1000, "number of operations")
	cmd.Flags().IntVar(&overloadopts.maxsize, "maxsize", 16*1024, "maximum block size")
	rootCmd.AddCommand(cmd)
}

func runOverload() error {
	mp, r, err := newmpool("overload")
	if err != nil {
		return err
	}
	defer r.Close()
	defer mp.Release()

	cache := mp.Newcache()
	defer cache.Close()
	g := malloc.NewGuarded(cache)

	rnd := rand.New(rand.NewSource(options.seed))
	table := make([][]byte, overloadopts.ptrs)
	for i := 0; i < overloadopts.allocs; i++ {
		slot, size := rnd.Intn(len(table)), rnd.Intn(overloadopts.maxsize)
		buf := table[slot]
		if size%17 == 0 {
			g.Free(buf)
			buf = g.Malloc(size)
		} else {
			buf = g.Realloc(buf, size)
			if n := min(len(table[slot]), size); !filled(buf[:n]) {
				return fmt.Errorf("operation %v: realloc lost content", i)
			}
		}
		if buf == nil {
			return fmt.Errorf("operation %v: allocation of %v failed", i, size)
		}
		for j := range buf {
			buf[j] = 'x'
		}
		table[slot] = buf
	}
	for _, buf := range table {
		g.Free(buf)
	}

	p := message.NewPrinter(language.English)
	p.Printf("%d operations over %d slots\n", overloadopts.allocs, overloadopts.ptrs)
	fmt.Println(lib.Prettystats(g.Stats(), true))
	if mc, ok := mp.Memchecker().(*malloc.Shadow); ok {
		if violations := mc.Violations(); len(violations) > 0 {
			return fmt.Errorf("%v memcheck violations, first: %v", len(violations), violations[0])
		}
	}
	return nil
}

func filled(buf []byte) bool {
	for _, b := range buf {
		if b != 'x' {
			return false
		}
	}
	return true
}
