package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/luhtfiimanal/go-runecache"
)

var cmdInfo = &cobra.Command{
	Use:   "info",
	Short: "List the indices of the cache",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, _ []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "cache %s: %s sectors (%s)\n", c.Dir(),
		humanize.Comma(c.SectorCount()),
		humanize.IBytes(uint64(c.SectorCount())*runecache.SectorSize))
	if !c.HasIndex(runecache.ReferenceTableID) {
		logger.Warn().Msg("reference table is missing, revisions are unavailable")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tRECORDS\tARCHIVES\tREVISION\tPROTOCOL")
	for _, id := range c.Indices() {
		records, err := c.ArchiveCount(id)
		if err != nil {
			return err
		}

		meta, err := c.Metadata(id)
		if err != nil {
			logger.Debug().Err(err).Uint8("index", id).Msg("no reference table entry")
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\n", id, humanize.Comma(int64(records)))
			continue
		}
		revision := "-"
		if meta.HasRevision() {
			revision = fmt.Sprint(meta.Revision)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", id,
			humanize.Comma(int64(records)), humanize.Comma(int64(meta.Len())), revision, meta.Protocol)
	}
	return tw.Flush()
}
