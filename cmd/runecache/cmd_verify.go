package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luhtfiimanal/go-runecache"
)

var cmdVerify = &cobra.Command{
	Use:   "verify [index...]",
	Short: "Read, check and decode every archive of the given indices (default all)",
	RunE:  runVerify,
}

var flagVerify struct {
	Jobs int
}

func init() {
	cmdVerify.Flags().IntVarP(&flagVerify.Jobs, "jobs", "j", runtime.NumCPU(), "Number of archives verified in parallel")
}

// errVerifyFailed is returned once every index has been checked and at least
// one archive failed.
var errVerifyFailed = errors.New("verification failed")

type verifyFailure struct {
	IndexID   uint8
	ArchiveID uint32
	Err       error
}

type verifyReport struct {
	IndexID  uint8
	Archives int
	Bytes    uint64
	Failures []verifyFailure
}

func runVerify(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	indices := c.Indices()
	if len(args) > 0 {
		indices = indices[:0]
		for _, arg := range args {
			id, err := parseIndexID(arg)
			if err != nil {
				return err
			}
			indices = append(indices, id)
		}
	}

	out := cmd.OutOrStdout()
	byKind := map[runecache.Kind]int{}
	failed := 0
	for _, id := range indices {
		report, err := verifyIndex(cmd.Context(), c, id, flagVerify.Jobs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "index %d: %d archives, %s, %d failures\n",
			id, report.Archives, humanize.IBytes(report.Bytes), len(report.Failures))
		for _, f := range report.Failures {
			byKind[runecache.KindOf(f.Err)]++
			logger.Warn().
				Err(f.Err).
				Uint8("index", f.IndexID).
				Uint32("archive", f.ArchiveID).
				Msg("archive failed verification")
		}
		failed += len(report.Failures)
	}

	if failed == 0 {
		return nil
	}
	kinds := make([]runecache.Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "%s errors: %d\n", kindName(k), byKind[k])
	}
	return errVerifyFailed
}

func kindName(k runecache.Kind) string {
	if k == 0 {
		return "other"
	}
	return k.String()
}

// verifyIndex checks every archive listed in the reference table entry of
// indexID: the stored container must match the recorded CRC, decode to its
// declared length and split into the recorded number of files. A missing or
// unparsable reference table entry is reported as a single failure.
func verifyIndex(ctx context.Context, c *runecache.Cache, indexID uint8, jobs int) (*verifyReport, error) {
	report := &verifyReport{IndexID: indexID}

	meta, err := c.Metadata(indexID)
	if err != nil {
		report.Failures = append(report.Failures, verifyFailure{IndexID: indexID, ArchiveID: uint32(indexID), Err: err})
		return report, nil
	}
	report.Archives = meta.Len()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i := range meta.Archives {
		desc := &meta.Archives[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := verifyArchive(c, indexID, desc)

			mu.Lock()
			defer mu.Unlock()
			report.Bytes += uint64(n)
			if err != nil {
				report.Failures = append(report.Failures, verifyFailure{IndexID: indexID, ArchiveID: desc.ID, Err: err})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(report.Failures, func(a, b verifyFailure) int { return cmp.Compare(a.ArchiveID, b.ArchiveID) })
	return report, nil
}

// verifyArchive returns the stored size of the archive and the first problem
// found with it.
func verifyArchive(c *runecache.Cache, indexID uint8, desc *runecache.ArchiveDescriptor) (int, error) {
	raw, err := c.Read(indexID, desc.ID)
	if err != nil {
		return 0, err
	}
	crc, err := runecache.ContainerCRC(raw)
	if err != nil {
		return len(raw), err
	}
	if crc != desc.CRC {
		return len(raw), runecache.InvalidCRCError{Expected: desc.CRC, Actual: crc, ArchiveID: desc.ID}
	}
	buf, err := runecache.Decode(raw)
	if err != nil {
		return len(raw), err
	}
	if _, err := desc.Split(buf); err != nil {
		return len(raw), err
	}
	return len(raw), nil
}
