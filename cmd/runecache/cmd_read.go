package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cmdRead = &cobra.Command{
	Use:   "read <index> <archive>",
	Short: "Dump the bytes of one archive",
	Args:  cobra.ExactArgs(2),
	RunE:  runRead,
}

var flagRead struct {
	Decode bool
	Out    string
}

func init() {
	cmdRead.Flags().BoolVarP(&flagRead.Decode, "decode", "d", false, "Decompress the container instead of dumping it as stored")
	cmdRead.Flags().StringVarP(&flagRead.Out, "out", "o", "", "Write to this file instead of stdout")
}

func runRead(cmd *cobra.Command, args []string) error {
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

	var buf []byte
	if flagRead.Decode {
		buf, err = c.ReadDecoded(indexID, archiveID)
	} else {
		buf, err = c.Read(indexID, archiveID)
	}
	if err != nil {
		return fmt.Errorf("read %d/%d: %w", indexID, archiveID, err)
	}

	if flagRead.Out == "" {
		_, err = cmd.OutOrStdout().Write(buf)
		return err
	}
	if err := os.WriteFile(flagRead.Out, buf, 0o644); err != nil {
		return err
	}
	logger.Info().
		Uint8("index", indexID).
		Uint32("archive", archiveID).
		Str("size", humanize.IBytes(uint64(len(buf)))).
		Str("file", flagRead.Out).
		Msg("archive written")
	return nil
}
