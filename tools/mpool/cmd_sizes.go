package main

import "fmt"
import "os"
import "strconv"

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "sizes [size...]",
		Short: "Show size classes and how the arena is carved",
		Long: `The sizes command carves the arena and prints chunks per class.
Optional size arguments are mapped to their size class.

Example:
  mpool sizes --arena 1MB 1 100 4097`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSizes(args)
		},
	})
}

func runSizes(args []string) error {
	mp, r, err := newmpool("sizes")
	if err != nil {
		return err
	}
	defer r.Close()
	defer mp.Release()

	fmt.Printf("slabs %v\n", mp.Slabs())
	mp.Dumpstats(os.Stdout)
	for _, arg := range args {
		size, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", arg, err)
		}
		if class, ok := mp.Sizeclass(size); ok {
			fmt.Printf("size %v class %v elemsize %v\n", size, class, mp.Slabs()[class])
		} else {
			fmt.Printf("size %v no class\n", size)
		}
	}
	return nil
}
