package bench_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/luhtfiimanal/go-runecache"
)

const benchIndex = 2

// writeCache lays archives out as sequential sector chains of benchIndex,
// archive i stored under id i.
func writeCache(tb testing.TB, dir string, archives [][]byte) {
	tb.Helper()

	data := make([]byte, runecache.SectorSize) // sector 0 unused
	idx := make([]byte, 0, len(archives)*6)

	for id, payload := range archives {
		first := len(data) / runecache.SectorSize
		idx = append(idx,
			byte(len(payload)>>16), byte(len(payload)>>8), byte(len(payload)),
			byte(first>>16), byte(first>>8), byte(first))

		for chunk := 0; len(payload) > 0; chunk++ {
			sector := len(data) / runecache.SectorSize
			n := min(len(payload), runecache.SectorSize-8)
			next := sector + 1
			if n == len(payload) {
				next = 0
			}
			sec := make([]byte, runecache.SectorSize)
			binary.BigEndian.PutUint16(sec[0:2], uint16(id))
			binary.BigEndian.PutUint16(sec[2:4], uint16(chunk))
			sec[4], sec[5], sec[6] = byte(next>>16), byte(next>>8), byte(next)
			sec[7] = benchIndex
			copy(sec[8:], payload[:n])
			payload = payload[n:]
			data = append(data, sec...)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, runecache.DefaultDataFile), data, 0o644); err != nil {
		tb.Fatalf("write data file: %v", err)
	}
	idxPath := filepath.Join(dir, runecache.DefaultIndexPrefix+strconv.Itoa(benchIndex))
	if err := os.WriteFile(idxPath, idx, 0o644); err != nil {
		tb.Fatalf("write index file: %v", err)
	}
}
