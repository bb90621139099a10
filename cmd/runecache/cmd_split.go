package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luhtfiimanal/go-runecache"
)

var cmdSplit = &cobra.Command{
	Use:   "split <index> <archive>",
	Short: "Unpack the files of an archive into a directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runSplit,
}

var flagSplit struct {
	Out string
}

func init() {
	cmdSplit.Flags().StringVarP(&flagSplit.Out, "out", "o", "", "Directory to write the files to")
	_ = cmdSplit.MarkFlagRequired("out")
}

func runSplit(cmd *cobra.Command, args []string) error {
	indexID, err := parseIndexID(args[0])
	if err != nil {
		return err
	}
	archiveID, err := parseArchiveID(args[1])
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	meta, err := c.Metadata(indexID)
	if err != nil {
		return fmt.Errorf("metadata of index %d: %w", indexID, err)
	}
	desc, ok := meta.Archive(archiveID)
	if !ok {
		return runecache.ArchiveNotFoundError{IndexID: indexID, ArchiveID: archiveID}
	}

	buf, err := c.ReadDecoded(indexID, archiveID)
	if err != nil {
		return fmt.Errorf("read %d/%d: %w", indexID, archiveID, err)
	}
	files, err := desc.Files(buf)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flagSplit.Out, 0o755); err != nil {
		return err
	}
	for id, data := range files {
		path := filepath.Join(flagSplit.Out, strconv.FormatUint(uint64(id), 10))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files to %s\n", len(files), flagSplit.Out)
	return nil
}
