package main

import "fmt"
import "os"

import "github.com/bnclabs/mpool/log"
import "github.com/bnclabs/mpool/malloc"
import "github.com/spf13/cobra"

var options struct {
	arena     string
	weights   string
	cacheline int64
	pagesize  int64
	memcheck  string
	loglevel  string
	seed      int64
}

var rootCmd = &cobra.Command{
	Use:   "mpool",
	Short: "Exercise the size-classed arena allocator",
	Long: `mpool carves an arena into size classes and drives allocation
workloads against it, reporting per class utilization.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetLogger(nil, map[string]interface{}{"log.level": options.loglevel})
		if options.loglevel != "info" {
			malloc.LogComponents("all")
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.arena, "arena", "",
		"arena size, like 64MB, default derived from free memory")
	flags.StringVar(&options.weights, "weights", "1,1,1,1,1,1,1",
		"comma separated weight for each size class")
	flags.Int64Var(&options.cacheline, "cacheline", malloc.Defaultcacheline,
		"size of smallest class")
	flags.Int64Var(&options.pagesize, "pagesize", malloc.Defaultpagesize,
		"size of largest class")
	flags.StringVar(&options.memcheck, "memcheck", "none",
		"memory checker, none or shadow")
	flags.StringVar(&options.loglevel, "loglevel", "info",
		"ignore, fatal, error, warn, info, verbose, debug, trace")
	flags.Int64Var(&options.seed, "seed", 0, "seed for random workloads")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
