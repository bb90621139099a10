package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var cmdMeta = &cobra.Command{
	Use:   "meta <index>",
	Short: "Print the reference table entry of an index",
	Args:  cobra.ExactArgs(1),
	RunE:  runMeta,
}

func runMeta(cmd *cobra.Command, args []string) error {
	indexID, err := parseIndexID(args[0])
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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "index %d: protocol %d, revision %d, flags 0x%02x, %d archives\n",
		meta.IndexID, meta.Protocol, meta.Revision, meta.Flags, meta.Len())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARCHIVE\tENTRIES\tCRC\tVERSION\tNAME HASH")
	for _, d := range meta.Archives {
		name := "-"
		if meta.Named() {
			name = fmt.Sprint(d.NameHash)
		}
		fmt.Fprintf(tw, "%d\t%d\t%08x\t%d\t%s\n", d.ID, d.EntryCount, d.CRC, d.Version, name)
	}
	return tw.Flush()
}
