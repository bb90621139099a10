package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/luhtfiimanal/go-runecache"
)

var cmdMain = &cobra.Command{
	Use:               "runecache",
	Short:             "Inspect and verify a game asset cache",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var flagMain struct {
	Cache     string
	Mmap      bool
	LogLevel  string
	LogFormat string
}

var logger = zerolog.Nop()

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.Cache, "cache", "c", ".", "Directory holding main_file_cache.dat2 and its index files")
	cmdMain.PersistentFlags().BoolVar(&flagMain.Mmap, "mmap", true, "Memory-map the cache files instead of using positioned reads")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogFormat, "log-format", "plain", "Log format (plain, json)")

	cmdMain.AddCommand(cmdInfo, cmdRead, cmdMeta, cmdSplit, cmdVerify)
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	l, err := newLogger(cmd.ErrOrStderr(), flagMain.LogFormat, flagMain.LogLevel)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// openCache opens the cache named by --cache. The caller closes it.
func openCache() (*runecache.Cache, error) {
	opts := runecache.DefaultOptions()
	opts.UseMmap = flagMain.Mmap
	opts.Logger = &logger

	c, err := runecache.OpenWithOptions(flagMain.Cache, opts)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", flagMain.Cache, err)
	}
	return c, nil
}
